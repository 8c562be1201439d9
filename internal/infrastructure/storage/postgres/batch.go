package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ledgerpost/internal/core/apperror"
)

// BatchInserter performs bulk inserts using the PostgreSQL COPY protocol.
// COPY is an order of magnitude faster than multi-row INSERT for large
// row sets (document lines, ledger movements).
//
// Requires an active transaction in context.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a batch inserter bound to the transaction manager.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice inserts rows into table using COPY.
// rowFn must return values aligned with columns for index i.
func (b *BatchInserter) CopyFromSlice(
	ctx context.Context,
	table string,
	columns []string,
	rowCount int,
	rowFn func(i int) ([]any, error),
) (int64, error) {
	t := b.txManager.GetTx(ctx)
	if t == nil {
		return 0, apperror.NewInternal(fmt.Errorf("batch insert into %s requires an active transaction", table))
	}

	rows := make([][]any, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		row, err := rowFn(i)
		if err != nil {
			return 0, fmt.Errorf("build row %d for %s: %w", i, table, err)
		}
		rows = append(rows, row)
	}

	copied, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return copied, nil
}

// CopyStructs inserts a slice of db-tagged structs into table using COPY.
// Columns are derived from the first element's `db` tags.
func CopyStructs[T any](ctx context.Context, b *BatchInserter, table string, items []T) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	columns := ExtractDBColumns(items[0])
	return b.CopyFromSlice(ctx, table, columns, len(items), func(i int) ([]any, error) {
		return ColumnValues(items[i], columns)
	})
}

// BatchExecutor runs many independent statements in a single round trip
// using the pgx batch protocol.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a batch executor bound to the transaction manager.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// Statement is one SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Execute sends all statements as one batch and returns the command
// tag of each, in statement order. Callers that target specific rows
// must inspect the tags: a zero-row UPDATE is not an error here.
func (e *BatchExecutor) Execute(ctx context.Context, statements []Statement) ([]pgconn.CommandTag, error) {
	if len(statements) == 0 {
		return nil, nil
	}

	t := e.txManager.GetTx(ctx)
	if t == nil {
		return nil, apperror.NewInternal(fmt.Errorf("batch execute requires an active transaction"))
	}

	batch := &pgx.Batch{}
	for _, stmt := range statements {
		batch.Queue(stmt.SQL, stmt.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	tags := make([]pgconn.CommandTag, 0, len(statements))
	for i := range statements {
		tag, err := results.Exec()
		if err != nil {
			return nil, fmt.Errorf("batch statement %d: %w", i, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
