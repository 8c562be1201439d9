// Package stock maintains the append-only stock ledger and keeps the
// item master's running stock in sync with it.
package stock

import (
	"context"
	"time"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

// Repository is the persistence contract for the stock ledger.
type Repository interface {
	// AppendMovements inserts ledger rows. Rows are never updated
	// or deleted; a correction is a new document with its own rows.
	AppendMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetHistory returns movements for an item, newest first.
	GetHistory(ctx context.Context, itemID id.ID, filter HistoryFilter) ([]entity.StockMovement, error)

	// BalanceAt returns the signed movement sum for an item up to
	// and including the given date.
	BalanceAt(ctx context.Context, itemID id.ID, at time.Time) (types.Quantity, error)
}

// HistoryFilter narrows movement history queries.
type HistoryFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
