package master_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/domain/masters/item"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const itemTable = "items"

// ItemRepo persists item master records.
type ItemRepo struct {
	base
	executor *postgres.BatchExecutor
}

// NewItemRepo creates an item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		base:     base{txManager: txManager},
		executor: postgres.NewBatchExecutor(txManager),
	}
}

var _ item.Repository = (*ItemRepo)(nil)

// Create persists a new item.
func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	return r.insert(ctx, itemTable, it)
}

// Update persists item changes with an optimistic version check.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.updateOptimistic(ctx, itemTable, "item", it)
}

// GetByID loads one item.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	query, args, err := qb.Select("*").From(itemTable).Where(squirrel.Eq{"id": itemID}).ToSql()
	if err != nil {
		return nil, err
	}
	var it item.Item
	if err := r.getOne(ctx, &it, "item", itemID.String(), query, args...); err != nil {
		return nil, err
	}
	return &it, nil
}

// GetByCode loads one item by its unique code.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	query, args, err := qb.Select("*").From(itemTable).Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return nil, err
	}
	var it item.Item
	if err := r.getOne(ctx, &it, "item", code, query, args...); err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns items matching the filter.
func (r *ItemRepo) List(ctx context.Context, filter item.ListFilter) ([]item.Item, error) {
	sb := qb.Select("*").From(itemTable).OrderBy("code")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		sb = sb.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
	}
	if !filter.IncludeDeleted {
		sb = sb.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Limit > 0 {
		sb = sb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		sb = sb.Offset(uint64(filter.Offset))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var out []item.Item
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDeletionMark toggles the soft-delete flag.
func (r *ItemRepo) SetDeletionMark(ctx context.Context, itemID id.ID, mark bool) error {
	return r.setDeletionMark(ctx, itemTable, itemID, mark)
}

// GetManyForUpdate loads items by id with FOR UPDATE locks, ordered by
// id ascending for deterministic lock acquisition.
func (r *ItemRepo) GetManyForUpdate(ctx context.Context, ids []id.ID) ([]item.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").
		From(itemTable).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	var out []item.Item
	if err := r.selectMany(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	if len(out) != len(ids) {
		found := make(map[id.ID]struct{}, len(out))
		for i := range out {
			found[out[i].ID] = struct{}{}
		}
		for _, want := range ids {
			if _, ok := found[want]; !ok {
				return nil, apperror.NewNotFound("item", want.String())
			}
		}
	}
	return out, nil
}

// UpdateCostFields writes costing results back to item rows in one
// batch round trip.
func (r *ItemRepo) UpdateCostFields(ctx context.Context, updates []item.CostFields) error {
	if len(updates) == 0 {
		return nil
	}

	stmts := make([]postgres.Statement, 0, len(updates))
	for _, u := range updates {
		query, args, err := qb.Update(itemTable).
			Set("last_cost", u.LastCost).
			Set("avg_cost", u.AvgCost).
			Where(squirrel.Eq{"id": u.ItemID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build cost update: %w", err)
		}
		stmts = append(stmts, postgres.Statement{SQL: query, Args: args})
	}

	tags, err := r.executor.Execute(ctx, stmts)
	if err != nil {
		return err
	}
	for i, tag := range tags {
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("item", updates[i].ItemID.String())
		}
	}
	return nil
}

// AdjustStock applies signed deltas to current_stock. Callers supply
// adjustments in ascending item-id order. Every delta must land on an
// existing row; an unknown item fails the batch.
func (r *ItemRepo) AdjustStock(ctx context.Context, adjustments []item.StockAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	stmts := make([]postgres.Statement, 0, len(adjustments))
	for _, a := range adjustments {
		stmts = append(stmts, postgres.Statement{
			SQL:  `UPDATE items SET current_stock = current_stock + $1 WHERE id = $2`,
			Args: []any{a.Delta.Int64Scaled(), a.ItemID},
		})
	}

	tags, err := r.executor.Execute(ctx, stmts)
	if err != nil {
		return err
	}
	for i, tag := range tags {
		if tag.RowsAffected() == 0 {
			return apperror.NewNotFound("item", adjustments[i].ItemID.String())
		}
	}
	return nil
}
