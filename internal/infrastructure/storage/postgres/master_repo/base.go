// Package master_repo persists master-data records.
package master_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type base struct {
	txManager *postgres.TxManager
}

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

func (b *base) selectMany(ctx context.Context, dst any, query string, args ...any) error {
	if err := pgxscan.Select(ctx, b.txManager.GetQuerier(ctx), dst, query, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

func (b *base) setDeletionMark(ctx context.Context, table string, rowID any, mark bool) error {
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
		return apperror.NewNotFound(table, fmt.Sprint(rowID))
	}
	return nil
}
