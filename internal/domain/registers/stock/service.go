package stock

import (
	"context"
	"sort"
	"time"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/item"
	"ledgerpost/pkg/logger"
)

// Service writes stock movements and synchronizes item running stock.
// All write operations require an ambient transaction owned by the
// posting pipeline.
type Service struct {
	repo     Repository
	itemRepo item.Repository
}

// NewService creates a stock register service.
func NewService(repo Repository, itemRepo item.Repository) *Service {
	return &Service{repo: repo, itemRepo: itemRepo}
}

// RecordMovements appends ledger rows and applies their signed sum to
// each item's running stock, in the same transaction. A movement that
// references an unknown item fails the whole call before any write.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	adjustments := aggregateByItem(movements)

	itemIDs := make([]id.ID, len(adjustments))
	for i := range adjustments {
		itemIDs[i] = adjustments[i].ItemID
	}
	if _, err := s.itemRepo.GetManyForUpdate(ctx, itemIDs); err != nil {
		return err
	}

	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return err
	}
	if err := s.itemRepo.AdjustStock(ctx, adjustments); err != nil {
		return err
	}

	logger.Debug(ctx, "stock movements recorded",
		"recorder_id", movements[0].RecorderID,
		"rows", len(movements),
		"items", len(adjustments),
	)
	return nil
}

// GetHistory returns the movement history for an item.
func (s *Service) GetHistory(ctx context.Context, itemID id.ID, filter HistoryFilter) ([]entity.StockMovement, error) {
	return s.repo.GetHistory(ctx, itemID, filter)
}

// BalanceAt computes the item's stock balance as of a date.
func (s *Service) BalanceAt(ctx context.Context, itemID id.ID, at time.Time) (types.Quantity, error) {
	return s.repo.BalanceAt(ctx, itemID, at)
}

// aggregateByItem sums signed quantities per item, ordered by item id
// ascending so downstream row locking is deterministic.
func aggregateByItem(movements []entity.StockMovement) []item.StockAdjustment {
	deltas := make(map[id.ID]types.Quantity)
	for i := range movements {
		deltas[movements[i].ItemID] += movements[i].SignedQuantity()
	}

	adjustments := make([]item.StockAdjustment, 0, len(deltas))
	for itemID, delta := range deltas {
		adjustments = append(adjustments, item.StockAdjustment{ItemID: itemID, Delta: delta})
	}
	sort.Slice(adjustments, func(a, b int) bool {
		return adjustments[a].ItemID.String() < adjustments[b].ItemID.String()
	})
	return adjustments
}
