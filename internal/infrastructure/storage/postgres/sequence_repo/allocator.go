// Package sequence_repo implements business-number allocation on PostgreSQL.
package sequence_repo

import (
	"context"
	"fmt"

	"ledgerpost/internal/core/sequence"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

// Allocator allocates document numbers from the doc_sequences table.
//
// The upsert runs on the querier of the ambient transaction: the row
// lock taken by ON CONFLICT DO UPDATE serializes concurrent allocations
// for the same scope, and an aborted transaction releases the number.
type Allocator struct {
	txManager *postgres.TxManager
}

// NewAllocator creates a PostgreSQL-backed number allocator.
func NewAllocator(txManager *postgres.TxManager) *Allocator {
	return &Allocator{txManager: txManager}
}

var _ sequence.Allocator = (*Allocator)(nil)

const allocateSQL = `
INSERT INTO doc_sequences (scope_key, current_val)
VALUES ($1, 1)
ON CONFLICT (scope_key)
DO UPDATE SET current_val = doc_sequences.current_val + 1
RETURNING current_val`

// Next reserves and returns the next number for the scope.
func (a *Allocator) Next(ctx context.Context, scope sequence.Scope) (int64, error) {
	q := a.txManager.GetQuerier(ctx)

	var next int64
	if err := q.QueryRow(ctx, allocateSQL, scope.Key()).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocate number for scope %s: %w", scope.Key(), err)
	}
	return next, nil
}

// Current returns the last allocated number for the scope without
// consuming one. Returns 0 when the scope has never allocated.
func (a *Allocator) Current(ctx context.Context, scope sequence.Scope) (int64, error) {
	q := a.txManager.GetQuerier(ctx)

	var current int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE((SELECT current_val FROM doc_sequences WHERE scope_key = $1), 0)`,
		scope.Key(),
	).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("read sequence for scope %s: %w", scope.Key(), err)
	}
	return current, nil
}
