package item

import (
	"context"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

// CostFields is the costing write-back for one item.
type CostFields struct {
	ItemID   id.ID
	LastCost types.Money
	AvgCost  types.Money
}

// StockAdjustment is a signed change to an item's running stock.
type StockAdjustment struct {
	ItemID id.ID
	Delta  types.Quantity
}

// Repository is the persistence contract for items.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]Item, error)
	SetDeletionMark(ctx context.Context, itemID id.ID, mark bool) error

	// GetManyForUpdate loads items by id with FOR UPDATE row locks.
	// IDs are locked in ascending order to keep lock acquisition
	// deterministic across concurrent postings.
	GetManyForUpdate(ctx context.Context, ids []id.ID) ([]Item, error)

	// UpdateCostFields writes costing results back to the item rows.
	UpdateCostFields(ctx context.Context, updates []CostFields) error

	// AdjustStock applies signed deltas to current_stock.
	AdjustStock(ctx context.Context, adjustments []StockAdjustment) error
}

// ListFilter narrows List results.
type ListFilter struct {
	Search         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
