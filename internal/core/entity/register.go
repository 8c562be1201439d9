// Package entity provides core domain entities.
package entity

import (
	"time"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

// RecordType defines movement direction for the stock ledger.
type RecordType string

const (
	// RecordTypeReceipt increases stock (inward movement)
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases stock (outward movement)
	RecordTypeExpense RecordType = "expense"
)

// StockMovement is one immutable row in the stock ledger: a signed
// quantity movement of an item caused by one document line.
// Movements are append-only; they are never updated after creation.
type StockMovement struct {
	// LineID is the unique identifier for this ledger row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g. "Purchase", "SalesInvoice")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// DocumentLineID references the originating document line
	DocumentLineID id.ID `db:"document_line_id" json:"documentLineId"`

	// ItemID is the moved item
	ItemID id.ID `db:"item_id" json:"itemId"`

	// RecordType: receipt (inward) or expense (outward)
	RecordType RecordType `db:"record_type" json:"recordType"`

	// Quantity is always positive; direction comes from RecordType
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a new stock ledger row.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	documentLineID id.ID,
	itemID id.ID,
	recordType RecordType,
	quantity types.Quantity,
	period time.Time,
) StockMovement {
	return StockMovement{
		LineID:         id.New(),
		RecorderID:     recorderID,
		RecorderType:   recorderType,
		DocumentLineID: documentLineID,
		ItemID:         itemID,
		RecordType:     recordType,
		Quantity:       quantity,
		Period:         period,
		CreatedAt:      time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
