package purchase

import (
	"context"
	"time"

	"ledgerpost/internal/core/id"
)

// Repository is the persistence contract for purchase invoices.
type Repository interface {
	// Create persists the header and its lines.
	Create(ctx context.Context, p *Purchase) error

	// UpdateHeader persists header changes with an optimistic version
	// check. A stale version fails with a concurrent-modification error.
	UpdateHeader(ctx context.Context, p *Purchase) error

	// ReplaceLines atomically deletes and re-inserts the line set.
	ReplaceLines(ctx context.Context, documentID id.ID, lines []Line) error

	// GetByID loads the header with its lines.
	GetByID(ctx context.Context, documentID id.ID) (*Purchase, error)

	// GetForUpdate loads the header with a FOR UPDATE row lock.
	GetForUpdate(ctx context.Context, documentID id.ID) (*Purchase, error)

	// List returns headers (without lines) matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Purchase, error)

	// SetDeletionMark toggles the soft-delete flag.
	SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error
}

// ListFilter narrows List results.
type ListFilter struct {
	SupplierID     id.ID
	FiscalYearID   id.ID
	DateFrom       time.Time
	DateTo         time.Time
	CostConfirmed  *bool
	Cancelled      *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}
