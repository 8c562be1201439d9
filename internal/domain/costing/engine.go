// Package costing computes weighted-average item costs for confirmed
// purchases and writes the results back to the item master.
package costing

import (
	"context"
	"sort"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/item"
	"ledgerpost/pkg/logger"
)

// LineCost is one purchase line's contribution to item costing:
// the received quantity at its effective (overhead-loaded) unit rate.
type LineCost struct {
	ItemID        id.ID
	Quantity      types.Quantity
	EffectiveRate types.Money
}

// Result is the cost written back for one item.
type Result struct {
	ItemID   id.ID
	LastCost types.Money
	AvgCost  types.Money
}

// WeightedAverage folds a received quantity at a rate into the current
// average:
//
//	newAvg = (stock*avg + qty*rate) / (stock + qty)
//
// When the denominator is zero the incoming rate becomes the average;
// there is no stock for the old average to weigh against.
func WeightedAverage(stock types.Quantity, avg types.Money, qty types.Quantity, rate types.Money) types.Money {
	denom := stock.Decimal().Add(qty.Decimal())
	if denom.IsZero() {
		return rate
	}
	num := stock.Decimal().Mul(avg).Add(qty.Decimal().Mul(rate))
	return num.Div(denom)
}

// Engine applies purchase costing to the item master.
type Engine struct {
	items item.Repository
}

// NewEngine creates a costing engine.
func NewEngine(items item.Repository) *Engine {
	return &Engine{items: items}
}

// Apply folds the lines into each item's weighted-average cost and
// records the line rate as the item's last cost.
//
// Must run inside the posting transaction. Items are locked in
// ascending id order before any read, so concurrent confirmations
// serialize instead of deadlocking, and every average is computed
// against committed stock.
func (e *Engine) Apply(ctx context.Context, lines []LineCost) ([]Result, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	ids := collectItemIDs(lines)
	locked, err := e.items.GetManyForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[id.ID]*item.Item, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
	}

	// Fold lines in document order; repeated items accumulate.
	for _, line := range lines {
		it, ok := byID[line.ItemID]
		if !ok {
			return nil, apperror.NewNotFound("item", line.ItemID.String())
		}

		it.AvgCost = WeightedAverage(it.CurrentStock, it.AvgCost, line.Quantity, line.EffectiveRate)
		it.LastCost = line.EffectiveRate

		// Later lines of the same item weigh against stock that
		// already includes the earlier lines' quantities.
		it.CurrentStock += line.Quantity
	}

	results := make([]Result, 0, len(byID))
	updates := make([]item.CostFields, 0, len(byID))
	for _, itemID := range ids {
		it := byID[itemID]
		results = append(results, Result{ItemID: it.ID, LastCost: it.LastCost, AvgCost: it.AvgCost})
		updates = append(updates, item.CostFields{ItemID: it.ID, LastCost: it.LastCost, AvgCost: it.AvgCost})
	}

	if err := e.items.UpdateCostFields(ctx, updates); err != nil {
		return nil, err
	}

	logger.Info(ctx, "costing applied", "items", len(updates), "lines", len(lines))
	return results, nil
}

// collectItemIDs dedupes and sorts ascending for deterministic locking.
func collectItemIDs(lines []LineCost) []id.ID {
	seen := make(map[id.ID]struct{}, len(lines))
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids
}
