// Package document_repo persists commercial documents.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

// qb builds queries with PostgreSQL placeholders.
var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// base provides shared persistence mechanics for document repos:
// tag-driven inserts, optimistic updates, replace-all line swaps.
type base struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

func newBase(txManager *postgres.TxManager) base {
	return base{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
	}
}

// insert writes one row built from the struct's db tags.
func (b *base) insert(ctx context.Context, table string, row any) error {
	m, err := postgres.StructToMap(row)
	if err != nil {
		return err
	}

	query, args, err := qb.Insert(table).SetMap(m).ToSql()
	if err != nil {
		return fmt.Errorf("build insert for %s: %w", table, err)
	}

	if _, err := b.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// updateOptimistic writes the full row guarded by the version the
// entity held before its in-memory Touch. Zero rows affected means a
// concurrent writer won.
func (b *base) updateOptimistic(ctx context.Context, table, entityName string, row any) error {
	m, err := postgres.StructToMap(row)
	if err != nil {
		return err
	}

	rowID := m["id"]
	newVersion, ok := m["version"].(int)
	if !ok || newVersion < 2 {
		return apperror.NewInternal(fmt.Errorf("update %s: entity not touched before save", table))
	}

	delete(m, "id")
	delete(m, "created_at")
	delete(m, "created_by")

	query, args, err := qb.Update(table).
		SetMap(m).
		Where(squirrel.Eq{"id": rowID, "version": newVersion - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update for %s: %w", table, err)
	}

	tag, err := b.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(entityName, fmt.Sprint(rowID))
	}
	return nil
}

// getOne scans a single row into dst; missing rows map to NotFound.
func (b *base) getOne(ctx context.Context, dst any, entityName string, entityID any, query string, args ...any) error {
	err := pgxscan.Get(ctx, b.txManager.GetQuerier(ctx), dst, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entityName, entityID)
		}
		return fmt.Errorf("get %s: %w", entityName, err)
	}
	return nil
}

// selectMany scans rows into dst (a pointer to slice).
func (b *base) selectMany(ctx context.Context, dst any, query string, args ...any) error {
	if err := pgxscan.Select(ctx, b.txManager.GetQuerier(ctx), dst, query, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

// replaceLines deletes the document's line set and bulk-inserts the
// replacement via COPY. Requires an active transaction so a failure
// leaves the previous set intact.
func replaceLines[T any](ctx context.Context, b *base, table string, documentID id.ID, lines []T) error {
	query, args, err := qb.Delete(table).Where(squirrel.Eq{"document_id": documentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete for %s: %w", table, err)
	}
	if _, err := b.txManager.GetQuerier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete lines from %s: %w", table, err)
	}

	if len(lines) == 0 {
		return nil
	}
	if _, err := postgres.CopyStructs(ctx, b.batch, table, lines); err != nil {
		return err
	}
	return nil
}

// setDeletionMark toggles the soft-delete flag.
func (b *base) setDeletionMark(ctx context.Context, table string, rowID id.ID, mark bool) error {
	query, args, err := qb.Update(table).
		Set("deletion_mark", mark).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": rowID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deletion mark update for %s: %w", table, err)
	}

	tag, err := b.txManager.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set deletion mark on %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(table, rowID.String())
	}
	return nil
}
