// Package sequence provides the domain contract for business-number allocation.
// Implementations live in the infrastructure layer.
package sequence

import (
	"context"
	"fmt"

	"ledgerpost/internal/core/id"
)

// Document type scopes for number allocation.
const (
	ScopePurchase       = "PUR"
	ScopeSalesInvoice   = "INV"
	ScopePurchaseReturn = "PRN"
	ScopeJournal        = "JRN"
)

// Scope identifies one independent number sequence:
// a document type within a fiscal year.
type Scope struct {
	DocType      string
	FiscalYearID id.ID
}

// Key returns the storage key for the scope.
func (s Scope) Key() string {
	return fmt.Sprintf("%s_%s", s.DocType, s.FiscalYearID)
}

// Allocator hands out the next business number for a scope.
//
// Contract: two concurrent allocations for the same scope never return
// the same value. The implementation must execute on the querier of the
// ambient transaction so that an aborted transaction consumes no number,
// while a committed one retires it permanently.
type Allocator interface {
	// Next reserves and returns the next number for the scope.
	Next(ctx context.Context, scope Scope) (int64, error)
}
