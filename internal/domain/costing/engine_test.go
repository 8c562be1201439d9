package costing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/item"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name  string
		stock float64
		avg   string
		qty   float64
		rate  string
		want  string
	}{
		{
			name:  "blends existing stock with purchase",
			stock: 10, avg: "100", qty: 5, rate: "130",
			want: "110",
		},
		{
			name:  "zero resulting stock falls back to rate",
			stock: -5, avg: "100", qty: 5, rate: "130",
			want: "130",
		},
		{
			name:  "first purchase into empty stock",
			stock: 0, avg: "0", qty: 8, rate: "42.50",
			want: "42.5",
		},
		{
			name:  "equal quantities average midway",
			stock: 5, avg: "100", qty: 5, rate: "200",
			want: "150",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedAverage(
				types.NewQuantityFromFloat64(tt.stock),
				types.MustMoney(tt.avg),
				types.NewQuantityFromFloat64(tt.qty),
				types.MustMoney(tt.rate),
			)
			assert.True(t, types.MustMoney(tt.want).Equal(got),
				"want %s, got %s", tt.want, got)
		})
	}
}

// mockItemRepo implements item.Repository in memory.
type mockItemRepo struct {
	items map[id.ID]*item.Item

	lockedIDs   []id.ID
	costUpdates []item.CostFields
}

func newMockItemRepo(items ...*item.Item) *mockItemRepo {
	m := &mockItemRepo{items: make(map[id.ID]*item.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockItemRepo) Create(_ context.Context, it *item.Item) error {
	m.items[it.ID] = it
	return nil
}

func (m *mockItemRepo) Update(_ context.Context, it *item.Item) error {
	m.items[it.ID] = it
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, itemID id.ID) (*item.Item, error) {
	return m.items[itemID], nil
}

func (m *mockItemRepo) GetByCode(_ context.Context, _ string) (*item.Item, error) {
	return nil, nil
}

func (m *mockItemRepo) List(_ context.Context, _ item.ListFilter) ([]item.Item, error) {
	return nil, nil
}

func (m *mockItemRepo) SetDeletionMark(_ context.Context, _ id.ID, _ bool) error {
	return nil
}

func (m *mockItemRepo) GetManyForUpdate(_ context.Context, ids []id.ID) ([]item.Item, error) {
	m.lockedIDs = append(m.lockedIDs, ids...)
	out := make([]item.Item, 0, len(ids))
	for _, itemID := range ids {
		if it, ok := m.items[itemID]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockItemRepo) UpdateCostFields(_ context.Context, updates []item.CostFields) error {
	m.costUpdates = append(m.costUpdates, updates...)
	for _, u := range updates {
		if it, ok := m.items[u.ItemID]; ok {
			it.LastCost = u.LastCost
			it.AvgCost = u.AvgCost
		}
	}
	return nil
}

func (m *mockItemRepo) AdjustStock(_ context.Context, adjustments []item.StockAdjustment) error {
	for _, a := range adjustments {
		if it, ok := m.items[a.ItemID]; ok {
			it.CurrentStock += a.Delta
		}
	}
	return nil
}

func TestEngineApply(t *testing.T) {
	ctx := context.Background()

	t.Run("purchase confirm scenario", func(t *testing.T) {
		it := item.NewItem("RM-001", "Raw Material", "pcs")
		it.CurrentStock = types.NewQuantityFromFloat64(10)
		it.AvgCost = types.MustMoney("100")

		repo := newMockItemRepo(it)
		engine := NewEngine(repo)

		results, err := engine.Apply(ctx, []LineCost{
			{ItemID: it.ID, Quantity: types.NewQuantityFromFloat64(5), EffectiveRate: types.MustMoney("130")},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.True(t, types.MustMoney("110").Equal(results[0].AvgCost),
			"avg cost: want 110, got %s", results[0].AvgCost)
		assert.True(t, types.MustMoney("130").Equal(results[0].LastCost))
		assert.True(t, types.MustMoney("110").Equal(repo.items[it.ID].AvgCost))
	})

	t.Run("repeated item folds sequentially", func(t *testing.T) {
		it := item.NewItem("RM-002", "Raw Material", "pcs")
		it.CurrentStock = types.NewQuantityFromFloat64(10)
		it.AvgCost = types.MustMoney("100")

		repo := newMockItemRepo(it)
		engine := NewEngine(repo)

		results, err := engine.Apply(ctx, []LineCost{
			{ItemID: it.ID, Quantity: types.NewQuantityFromFloat64(5), EffectiveRate: types.MustMoney("130")},
			{ItemID: it.ID, Quantity: types.NewQuantityFromFloat64(15), EffectiveRate: types.MustMoney("110")},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		// First line: (10*100 + 5*130)/15 = 110.
		// Second line weighs against 15 on hand: (15*110 + 15*110)/30 = 110.
		assert.True(t, types.MustMoney("110").Equal(results[0].AvgCost))
		assert.True(t, types.MustMoney("110").Equal(results[0].LastCost))
	})

	t.Run("locks items in ascending id order", func(t *testing.T) {
		a := item.NewItem("A", "Item A", "pcs")
		b := item.NewItem("B", "Item B", "pcs")
		c := item.NewItem("C", "Item C", "pcs")

		repo := newMockItemRepo(a, b, c)
		engine := NewEngine(repo)

		// Supply lines in shuffled order; lock order must still sort.
		_, err := engine.Apply(ctx, []LineCost{
			{ItemID: c.ID, Quantity: types.NewQuantityFromFloat64(1), EffectiveRate: types.MustMoney("10")},
			{ItemID: a.ID, Quantity: types.NewQuantityFromFloat64(1), EffectiveRate: types.MustMoney("10")},
			{ItemID: b.ID, Quantity: types.NewQuantityFromFloat64(1), EffectiveRate: types.MustMoney("10")},
		})
		require.NoError(t, err)

		require.Len(t, repo.lockedIDs, 3)
		for i := 1; i < len(repo.lockedIDs); i++ {
			assert.True(t, repo.lockedIDs[i-1].String() < repo.lockedIDs[i].String(),
				"lock order not ascending: %v", repo.lockedIDs)
		}
	})

	t.Run("unknown item fails hard", func(t *testing.T) {
		repo := newMockItemRepo()
		engine := NewEngine(repo)

		_, err := engine.Apply(ctx, []LineCost{
			{ItemID: id.New(), Quantity: types.NewQuantityFromFloat64(1), EffectiveRate: types.MustMoney("10")},
		})
		assert.Error(t, err)
	})

	t.Run("no lines is a no-op", func(t *testing.T) {
		repo := newMockItemRepo()
		engine := NewEngine(repo)

		results, err := engine.Apply(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, repo.costUpdates)
	})
}
