package entity

import (
	"context"
	"time"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
)

// Document is the base type for commercial documents
// (purchase invoice, sales invoice, purchase return).
type Document struct {
	BaseDocument

	// Number is the business document number, sequential within
	// (document type, fiscal year). Zero until the first numbered save.
	Number int64 `db:"number" json:"number"`

	// FiscalYearID scopes numbering and journals to an accounting period.
	FiscalYearID id.ID `db:"fiscal_year_id" json:"fiscalYearId"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// CostSheetPrepared is set when a purchase carries positive overhead charges.
	CostSheetPrepared bool `db:"cost_sheet_prepared" json:"costSheetPrepared"`

	// CostConfirmed marks a purchase whose weighted-average costing is finalized.
	// One-way: cleared only by the out-of-scope reversing-document flow.
	CostConfirmed bool `db:"cost_confirmed" json:"costConfirmed"`

	// Posted marks a document whose journal and stock effects are permanent.
	Posted bool `db:"posted" json:"posted"`

	// Cancelled marks a document withdrawn before confirmation/posting.
	// The allocated number is never released.
	Cancelled bool `db:"cancelled" json:"cancelled"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new draft Document.
func NewDocument(fiscalYearID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		FiscalYearID: fiscalYearID,
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.FiscalYearID) {
		return apperror.NewValidation("fiscal year is required").
			WithDetail("field", "fiscalYearId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// IsNumbered reports whether a business number has been allocated.
func (d *Document) IsNumbered() bool {
	return d.Number > 0
}

// CanModify checks if document can be modified.
// Confirmed or posted documents are immutable; correcting them
// requires a reversing document.
func (d *Document) CanModify() error {
	if d.Posted {
		return apperror.NewAlreadyPosted(d.ID.String())
	}
	if d.CostConfirmed {
		return apperror.NewAlreadyConfirmed(d.ID.String())
	}
	return nil
}

// MarkPosted sets the posted flag.
func (d *Document) MarkPosted() {
	d.Posted = true
	d.Touch()
}

// MarkCostConfirmed sets the cost confirmation flag.
func (d *Document) MarkCostConfirmed() {
	d.CostConfirmed = true
	d.Touch()
}

// MarkCancelled withdraws the document and resets working flags.
func (d *Document) MarkCancelled() {
	d.Cancelled = true
	d.CostSheetPrepared = false
	d.Touch()
}

// ClearCancelled re-enables editing; the number is kept, not reallocated.
func (d *Document) ClearCancelled() {
	d.Cancelled = false
	d.Touch()
}

// --- Postable interface default implementations ---

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetNumber returns the business number (0 while draft).
func (d *Document) GetNumber() int64 {
	return d.Number
}

// SetNumber records the allocated business number.
func (d *Document) SetNumber(n int64) {
	d.Number = n
}

// GetFiscalYearID returns the fiscal year scope.
func (d *Document) GetFiscalYearID() id.ID {
	return d.FiscalYearID
}

// GetDate returns the business date.
func (d *Document) GetDate() time.Time {
	return d.Date
}

// Flags returns the stored lifecycle flags for state derivation.
func (d *Document) Flags() StateFlags {
	return StateFlags{
		Numbered:      d.Number > 0,
		CostConfirmed: d.CostConfirmed,
		Posted:        d.Posted,
		Cancelled:     d.Cancelled,
	}
}

// StateFlags is the raw flag combination a document persists.
// The posting package derives the unambiguous lifecycle state from it.
type StateFlags struct {
	Numbered      bool
	CostConfirmed bool
	Posted        bool
	Cancelled     bool
}
