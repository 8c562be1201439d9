package purchasereturn

import (
	"context"
	"time"

	"ledgerpost/internal/core/id"
)

// Repository is the persistence contract for purchase returns.
type Repository interface {
	Create(ctx context.Context, pr *PurchaseReturn) error
	UpdateHeader(ctx context.Context, pr *PurchaseReturn) error
	ReplaceLines(ctx context.Context, documentID id.ID, lines []Line) error
	GetByID(ctx context.Context, documentID id.ID) (*PurchaseReturn, error)
	GetForUpdate(ctx context.Context, documentID id.ID) (*PurchaseReturn, error)
	List(ctx context.Context, filter ListFilter) ([]PurchaseReturn, error)
	SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error
}

// ListFilter narrows List results.
type ListFilter struct {
	SupplierID     id.ID
	FiscalYearID   id.ID
	DateFrom       time.Time
	DateTo         time.Time
	Posted         *bool
	Cancelled      *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}
