// Package salesinvoice implements the sales invoice document.
package salesinvoice

import (
	"context"
	"fmt"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/journal"
)

// DocType identifies sales invoices in sequences and registers.
const DocType = "SalesInvoice"

// SalesInvoice is a sales invoice header with its lines.
type SalesInvoice struct {
	entity.Document

	// CustomerID is the buying party
	CustomerID id.ID `db:"customer_id" json:"customerId"`

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

// Line is one sales invoice line.
type Line struct {
	// LineID is the unique identifier for this line
	LineID id.ID `db:"line_id" json:"lineId"`

	// DocumentID references the owning header
	DocumentID id.ID `db:"document_id" json:"documentId"`

	// LineNo is the user-assigned ordering, unique within the document
	LineNo int `db:"line_no" json:"lineNo"`

	// ItemID is the sold item
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity sold
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Rate is the unit selling rate
	Rate types.Money `db:"rate" json:"rate"`

	// Line tax amounts
	CGSTAmount types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount types.Money `db:"igst_amount" json:"igstAmount"`

	// Amount is the line total including taxes
	Amount types.Money `db:"amount" json:"amount"`
}

// New creates a new draft sales invoice.
func New(fiscalYearID, customerID id.ID) *SalesInvoice {
	return &SalesInvoice{
		Document:   entity.NewDocument(fiscalYearID),
		CustomerID: customerID,
	}
}

// Validate implements entity.Validatable.
func (si *SalesInvoice) Validate(ctx context.Context) error {
	if err := si.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(si.CustomerID) {
		return apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	return validateLines(si.Lines)
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
func (si *SalesInvoice) RecalculateTotals() {
	taxable, cgst, sgst, igst := types.Zero(), types.Zero(), types.Zero(), types.Zero()
	for i := range si.Lines {
		l := &si.Lines[i]
		lineTaxable := l.Quantity.Decimal().Mul(l.Rate)
		l.Amount = lineTaxable.Add(l.CGSTAmount).Add(l.SGSTAmount).Add(l.IGSTAmount)

		taxable = taxable.Add(lineTaxable)
		cgst = cgst.Add(l.CGSTAmount)
		sgst = sgst.Add(l.SGSTAmount)
		igst = igst.Add(l.IGSTAmount)
	}
	si.Taxable = taxable
	si.CGST = cgst
	si.SGST = sgst
	si.IGST = igst
	si.GrandTotal = taxable.Add(cgst).Add(sgst).Add(igst).Add(si.Rounding)
}

// Totals maps header amounts to the journal generator's input.
func (si *SalesInvoice) Totals() journal.Totals {
	return journal.Totals{
		Taxable:    si.Taxable,
		CGST:       si.CGST,
		SGST:       si.SGST,
		IGST:       si.IGST,
		Rounding:   si.Rounding,
		GrandTotal: si.GrandTotal,
	}
}

// ExpenseMovements builds the outward stock ledger rows for this invoice.
func (si *SalesInvoice) ExpenseMovements() []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(si.Lines))
	for i := range si.Lines {
		l := &si.Lines[i]
		out = append(out, entity.NewStockMovement(
			si.ID, DocType, l.LineID, l.ItemID,
			entity.RecordTypeExpense, l.Quantity, si.Date,
		))
	}
	return out
}
