// Package purchase implements the purchase invoice document.
package purchase

import (
	"context"
	"fmt"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/costing"
)

// DocType identifies purchase invoices in sequences and registers.
const DocType = "Purchase"

// OverheadCategory classifies landed-cost charges on a purchase.
type OverheadCategory string

const (
	OverheadFreight OverheadCategory = "freight"
	OverheadLabor   OverheadCategory = "labor"
	OverheadOther   OverheadCategory = "other"
)

// OverheadCharge is one landed-cost charge supplied at cost confirmation.
type OverheadCharge struct {
	Category OverheadCategory `json:"category"`
	Amount   types.Money      `json:"amount"`
}

// LineAllocation carries the overhead-loaded net rate for one line.
type LineAllocation struct {
	LineNo  int         `json:"lineNo"`
	NetRate types.Money `json:"netRate"`
}

// Purchase is a purchase invoice header with its lines.
type Purchase struct {
	entity.Document

	// SupplierID is the supplying party
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// SupplierBillNumber is the supplier's own invoice reference
	SupplierBillNumber string `db:"supplier_bill_number" json:"supplierBillNumber,omitempty"`

	// Monetary totals
	Taxable    types.Money `db:"taxable" json:"taxable"`
	CGST       types.Money `db:"cgst" json:"cgst"`
	SGST       types.Money `db:"sgst" json:"sgst"`
	IGST       types.Money `db:"igst" json:"igst"`
	Rounding   types.Money `db:"rounding" json:"rounding"`
	GrandTotal types.Money `db:"grand_total" json:"grandTotal"`

	// Overhead charge sums, written at cost confirmation
	FreightCharges types.Money `db:"freight_charges" json:"freightCharges"`
	LaborCharges   types.Money `db:"labor_charges" json:"laborCharges"`
	OtherCharges   types.Money `db:"other_charges" json:"otherCharges"`

	// Lines are loaded/saved separately (replace-all semantics)
	Lines []Line `db:"-" json:"lines"`
}

// Line is one purchase invoice line.
type Line struct {
	// LineID is the unique identifier for this line
	LineID id.ID `db:"line_id" json:"lineId"`

	// DocumentID references the owning header
	DocumentID id.ID `db:"document_id" json:"documentId"`

	// LineNo is the user-assigned ordering, unique within the document
	LineNo int `db:"line_no" json:"lineNo"`

	// ItemID is the purchased item
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Quantity received
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Rate is the raw unit purchase rate
	Rate types.Money `db:"rate" json:"rate"`

	// NetRate is the overhead-loaded unit rate, set at cost confirmation
	NetRate types.Money `db:"net_rate" json:"netRate"`

	// Line tax amounts
	CGSTAmount types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount types.Money `db:"igst_amount" json:"igstAmount"`

	// Amount is the line total including taxes
	Amount types.Money `db:"amount" json:"amount"`
}

// New creates a new draft purchase invoice.
func New(fiscalYearID, supplierID id.ID) *Purchase {
	return &Purchase{
		Document:   entity.NewDocument(fiscalYearID),
		SupplierID: supplierID,
	}
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	return validateLines(p.Lines)
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
// adjustment is caller-supplied and preserved; the grand total always
// includes it.
func (p *Purchase) RecalculateTotals() {
	taxable, cgst, sgst, igst := types.Zero(), types.Zero(), types.Zero(), types.Zero()
	for i := range p.Lines {
		l := &p.Lines[i]
		lineTaxable := l.Quantity.Decimal().Mul(l.Rate)
		l.Amount = lineTaxable.Add(l.CGSTAmount).Add(l.SGSTAmount).Add(l.IGSTAmount)

		taxable = taxable.Add(lineTaxable)
		cgst = cgst.Add(l.CGSTAmount)
		sgst = sgst.Add(l.SGSTAmount)
		igst = igst.Add(l.IGSTAmount)
	}
	p.Taxable = taxable
	p.CGST = cgst
	p.SGST = sgst
	p.IGST = igst
	p.GrandTotal = taxable.Add(cgst).Add(sgst).Add(igst).Add(p.Rounding)
}

// ApplyOverheads sums charges by category onto the header and marks the
// cost sheet prepared when any charge is positive.
func (p *Purchase) ApplyOverheads(charges []OverheadCharge) error {
	freight, labor, other := types.Zero(), types.Zero(), types.Zero()
	prepared := false
	for _, c := range charges {
		if c.Amount.IsNegative() {
			return apperror.NewValidation("overhead amount cannot be negative").
				WithDetail("category", string(c.Category))
		}
		switch c.Category {
		case OverheadFreight:
			freight = freight.Add(c.Amount)
		case OverheadLabor:
			labor = labor.Add(c.Amount)
		case OverheadOther:
			other = other.Add(c.Amount)
		default:
			return apperror.NewValidation("unknown overhead category").
				WithDetail("category", string(c.Category))
		}
		if c.Amount.IsPositive() {
			prepared = true
		}
	}
	p.FreightCharges = freight
	p.LaborCharges = labor
	p.OtherCharges = other
	p.CostSheetPrepared = prepared
	return nil
}

// ApplyAllocations writes the overhead-loaded net rates onto lines.
// Unallocated lines keep a zero net rate and fall back to the raw rate.
func (p *Purchase) ApplyAllocations(allocations []LineAllocation) error {
	byLineNo := make(map[int]*Line, len(p.Lines))
	for i := range p.Lines {
		byLineNo[p.Lines[i].LineNo] = &p.Lines[i]
	}
	for _, a := range allocations {
		l, ok := byLineNo[a.LineNo]
		if !ok {
			return apperror.NewValidation("allocation references unknown line").
				WithDetail("lineNo", a.LineNo)
		}
		if a.NetRate.IsNegative() {
			return apperror.NewValidation("net rate cannot be negative").
				WithDetail("lineNo", a.LineNo)
		}
		l.NetRate = a.NetRate
	}
	return nil
}

// EffectiveRate is the costing rate for a line: the overhead-loaded
// net rate when the cost sheet is prepared, otherwise the raw rate.
func (p *Purchase) EffectiveRate(l *Line) types.Money {
	if p.CostSheetPrepared && !l.NetRate.IsZero() {
		return l.NetRate
	}
	return l.Rate
}

// CostLines maps document lines to costing inputs.
func (p *Purchase) CostLines() []costing.LineCost {
	out := make([]costing.LineCost, 0, len(p.Lines))
	for i := range p.Lines {
		l := &p.Lines[i]
		out = append(out, costing.LineCost{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			EffectiveRate: p.EffectiveRate(l),
		})
	}
	return out
}

// ReceiptMovements builds the inward stock ledger rows for this purchase.
func (p *Purchase) ReceiptMovements() []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(p.Lines))
	for i := range p.Lines {
		l := &p.Lines[i]
		out = append(out, entity.NewStockMovement(
			p.ID, DocType, l.LineID, l.ItemID,
			entity.RecordTypeReceipt, l.Quantity, p.Date,
		))
	}
	return out
}
