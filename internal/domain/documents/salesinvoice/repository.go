package salesinvoice

import (
	"context"
	"time"

	"ledgerpost/internal/core/id"
)

// Repository is the persistence contract for sales invoices.
type Repository interface {
	Create(ctx context.Context, si *SalesInvoice) error
	UpdateHeader(ctx context.Context, si *SalesInvoice) error
	ReplaceLines(ctx context.Context, documentID id.ID, lines []Line) error
	GetByID(ctx context.Context, documentID id.ID) (*SalesInvoice, error)
	GetForUpdate(ctx context.Context, documentID id.ID) (*SalesInvoice, error)
	List(ctx context.Context, filter ListFilter) ([]SalesInvoice, error)
	SetDeletionMark(ctx context.Context, documentID id.ID, mark bool) error
}

// ListFilter narrows List results.
type ListFilter struct {
	CustomerID     id.ID
	FiscalYearID   id.ID
	DateFrom       time.Time
	DateTo         time.Time
	Posted         *bool
	Cancelled      *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}
