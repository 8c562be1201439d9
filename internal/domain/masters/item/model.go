// Package item provides the inventory item master.
package item

import (
	"context"
	"strings"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/types"
)

// Item is an inventory item master record.
// CurrentStock, LastCost and AvgCost are denormalized posting results:
// the stock writer and costing engine maintain them, not the CRUD API.
type Item struct {
	entity.BaseMaster

	// Code is the unique item code
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Unit is the unit of measure label (e.g. "pcs", "kg")
	Unit string `db:"unit" json:"unit"`

	// HSNCode is the tax classification code
	HSNCode string `db:"hsn_code" json:"hsnCode,omitempty"`

	// CurrentStock is the running on-hand quantity, kept in sync with
	// the stock ledger inside every posting transaction.
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`

	// LastCost is the effective unit rate of the most recent confirmed purchase.
	LastCost types.Money `db:"last_cost" json:"lastCost"`

	// AvgCost is the weighted-average unit cost across confirmed purchases.
	AvgCost types.Money `db:"avg_cost" json:"avgCost"`
}

// NewItem creates a new item master record.
func NewItem(code, name, unit string) *Item {
	return &Item{
		BaseMaster: entity.NewBaseMaster(),
		Code:       code,
		Name:       name,
		Unit:       unit,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(_ context.Context) error {
	if strings.TrimSpace(i.Code) == "" {
		return apperror.NewValidation("item code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	return nil
}
