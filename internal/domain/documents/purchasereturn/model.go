// Package purchasereturn implements the purchase return document.
package purchasereturn

import (
	"context"
	"fmt"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/journal"
)

// DocType identifies purchase returns in sequences and registers.
const DocType = "PurchaseReturn"

// PurchaseReturn is a purchase return header with its lines.
type PurchaseReturn struct {
	entity.Document

	// SupplierID is the party the goods go back to
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// AgainstPurchaseID optionally references the original purchase
	AgainstPurchaseID *id.ID `db:"against_purchase_id" json:"againstPurchaseId,omitempty"`

	// Monetary totals
	Taxable    types.Money `db:"taxable" json:"taxable"`
	CGST       types.Money `db:"cgst" json:"cgst"`
	SGST       types.Money `db:"sgst" json:"sgst"`
	IGST       types.Money `db:"igst" json:"igst"`
	Rounding   types.Money `db:"rounding" json:"rounding"`
	GrandTotal types.Money `db:"grand_total" json:"grandTotal"`

	// Lines are loaded/saved separately (replace-all semantics)
	Lines []Line `db:"-" json:"lines"`
}

// Line is one purchase return line.
type Line struct {
	// LineID is the unique identifier for this line
	LineID id.ID `db:"line_id" json:"lineId"`

	// DocumentID references the owning header
	DocumentID id.ID `db:"document_id" json:"documentId"`

	// LineNo is the user-assigned ordering, unique within the document
	LineNo int `db:"line_no" json:"lineNo"`

	// ItemID is the returned item
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity returned
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Rate is the unit rate the return is valued at
	Rate types.Money `db:"rate" json:"rate"`

	// Line tax amounts
	CGSTAmount types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount types.Money `db:"igst_amount" json:"igstAmount"`

	// Amount is the line total including taxes
	Amount types.Money `db:"amount" json:"amount"`
}

// New creates a new draft purchase return.
func New(fiscalYearID, supplierID id.ID) *PurchaseReturn {
	return &PurchaseReturn{
		Document:   entity.NewDocument(fiscalYearID),
		SupplierID: supplierID,
	}
}

// Validate implements entity.Validatable.
func (pr *PurchaseReturn) Validate(ctx context.Context) error {
	if err := pr.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(pr.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	return validateLines(pr.Lines)
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}
	seen := make(map[int]struct{}, len(lines))
	for i := range lines {
		l := &lines[i]
		if l.LineNo <= 0 {
			return apperror.NewValidation("line number must be positive").
				WithDetail("field", fmt.Sprintf("lines[%d].lineNo", i))
		}
		if _, dup := seen[l.LineNo]; dup {
			return apperror.NewValidation("duplicate line number").
				WithDetail("lineNo", l.LineNo)
		}
		seen[l.LineNo] = struct{}{}
		if id.IsNil(l.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", fmt.Sprintf("lines[%d].itemId", i))
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", fmt.Sprintf("lines[%d].quantity", i))
		}
		if l.Rate.IsNegative() {
			return apperror.NewValidation("rate cannot be negative").
				WithDetail("field", fmt.Sprintf("lines[%d].rate", i))
		}
	}
	return nil
}

// RecalculateTotals derives header totals from lines. The rounding
// adjustment is caller-supplied and preserved.
func (pr *PurchaseReturn) RecalculateTotals() {
	taxable, cgst, sgst, igst := types.Zero(), types.Zero(), types.Zero(), types.Zero()
	for i := range pr.Lines {
		l := &pr.Lines[i]
		lineTaxable := l.Quantity.Decimal().Mul(l.Rate)
		l.Amount = lineTaxable.Add(l.CGSTAmount).Add(l.SGSTAmount).Add(l.IGSTAmount)

		taxable = taxable.Add(lineTaxable)
		cgst = cgst.Add(l.CGSTAmount)
		sgst = sgst.Add(l.SGSTAmount)
		igst = igst.Add(l.IGSTAmount)
	}
	pr.Taxable = taxable
	pr.CGST = cgst
	pr.SGST = sgst
	pr.IGST = igst
	pr.GrandTotal = taxable.Add(cgst).Add(sgst).Add(igst).Add(pr.Rounding)
}

// Totals maps header amounts to the journal generator's input.
func (pr *PurchaseReturn) Totals() journal.Totals {
	return journal.Totals{
		Taxable:    pr.Taxable,
		CGST:       pr.CGST,
		SGST:       pr.SGST,
		IGST:       pr.IGST,
		Rounding:   pr.Rounding,
		GrandTotal: pr.GrandTotal,
	}
}

// ExpenseMovements builds the outward stock ledger rows: returned goods
// leave stock.
func (pr *PurchaseReturn) ExpenseMovements() []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(pr.Lines))
	for i := range pr.Lines {
		l := &pr.Lines[i]
		out = append(out, entity.NewStockMovement(
			pr.ID, DocType, l.LineID, l.ItemID,
			entity.RecordTypeExpense, l.Quantity, pr.Date,
		))
	}
	return out
}
