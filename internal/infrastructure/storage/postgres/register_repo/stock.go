// Package register_repo persists the stock ledger.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/registers/stock"
	"ledgerpost/internal/infrastructure/storage/postgres"
)

const stockMovementTable = "stock_movements"

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// StockRepo persists append-only stock movements.
type StockRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

// NewStockRepo creates a stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
	}
}

var _ stock.Repository = (*StockRepo)(nil)

// AppendMovements bulk-inserts ledger rows via COPY.
func (r *StockRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	_, err := postgres.CopyStructs(ctx, r.batch, stockMovementTable, movements)
	return err
}

// GetHistory returns movements for an item, newest first.
func (r *StockRepo) GetHistory(ctx context.Context, itemID id.ID, filter stock.HistoryFilter) ([]entity.StockMovement, error) {
	sb := qb.Select("*").
		From(stockMovementTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("period DESC", "created_at DESC")

	if !filter.From.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"period": filter.From})
	}
	if !filter.To.IsZero() {
		sb = sb.Where(squirrel.LtOrEq{"period": filter.To})
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

	var out []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("select movement history: %w", err)
	}
	return out, nil
}

// BalanceAt sums signed quantities for an item up to a date.
// Receipts count positive, expenses negative.
func (r *StockRepo) BalanceAt(ctx context.Context, itemID id.ID, at time.Time) (types.Quantity, error) {
	const query = `
SELECT COALESCE(SUM(
  CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END
), 0)
FROM stock_movements
WHERE item_id = $1 AND period <= $2`

	var balance int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, itemID, at).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("sum stock balance: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(balance), nil
}
