package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryRepo struct {
	items map[id.ID]*Item
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[id.ID]*Item)}
}

func (m *memoryRepo) Create(_ context.Context, it *Item) error {
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *memoryRepo) Update(_ context.Context, it *Item) error {
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, itemID id.ID) (*Item, error) {
	it, ok := m.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	cp := *it
	return &cp, nil
}

func (m *memoryRepo) GetByCode(_ context.Context, code string) (*Item, error) {
	for _, it := range m.items {
		if it.Code == code && !it.DeletionMark {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", code)
}

func (m *memoryRepo) List(_ context.Context, _ ListFilter) ([]Item, error) {
	return nil, nil
}

func (m *memoryRepo) SetDeletionMark(_ context.Context, itemID id.ID, mark bool) error {
	it, ok := m.items[itemID]
	if !ok {
		return apperror.NewNotFound("item", itemID.String())
	}
	it.DeletionMark = mark
	return nil
}

func (m *memoryRepo) GetManyForUpdate(_ context.Context, _ []id.ID) ([]Item, error) {
	return nil, nil
}

func (m *memoryRepo) UpdateCostFields(_ context.Context, _ []CostFields) error {
	return nil
}

func (m *memoryRepo) AdjustStock(_ context.Context, adjustments []StockAdjustment) error {
	for _, a := range adjustments {
		if it, ok := m.items[a.ItemID]; ok {
			it.CurrentStock += a.Delta
		}
	}
	return nil
}

func TestItemCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a valid item", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := NewService(repo, noopTxManager{})

		it := NewItem("RM-1", "Raw Material", "kg")
		require.NoError(t, svc.Create(ctx, it))
		assert.Contains(t, repo.items, it.ID)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := NewService(repo, noopTxManager{})

		require.NoError(t, svc.Create(ctx, NewItem("RM-1", "First", "kg")))
		err := svc.Create(ctx, NewItem("RM-1", "Second", "kg"))
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	})

	t.Run("rejects a blank code", func(t *testing.T) {
		svc := NewService(newMemoryRepo(), noopTxManager{})
		assert.Error(t, svc.Create(ctx, NewItem("  ", "Name", "kg")))
	})
}

func TestItemUpdatePreservesPostingFields(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	it := NewItem("RM-1", "Raw Material", "kg")
	require.NoError(t, svc.Create(ctx, it))

	// Simulate confirmed postings having written the costing fields.
	stored := repo.items[it.ID]
	stored.CurrentStock = types.NewQuantityFromFloat64(15)
	stored.LastCost = types.MustMoney("130")
	stored.AvgCost = types.MustMoney("110")

	// A client update tries to overwrite them alongside the rename.
	patch := *it
	patch.Name = "Raw Material (new)"
	patch.CurrentStock = types.NewQuantityFromFloat64(999)
	patch.AvgCost = types.MustMoney("1")

	require.NoError(t, svc.Update(ctx, &patch))

	updated, err := svc.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Raw Material (new)", updated.Name)
	assert.Equal(t, types.NewQuantityFromFloat64(15), updated.CurrentStock)
	assert.True(t, types.MustMoney("130").Equal(updated.LastCost))
	assert.True(t, types.MustMoney("110").Equal(updated.AvgCost))
	assert.Greater(t, updated.Version, it.Version)
}

func TestItemSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, noopTxManager{})

	it := NewItem("RM-1", "Raw Material", "kg")
	require.NoError(t, svc.Create(ctx, it))

	require.NoError(t, svc.SetDeletionMark(ctx, it.ID, true))
	assert.True(t, repo.items[it.ID].DeletionMark)

	// The code becomes reusable once the holder is soft-deleted.
	require.NoError(t, svc.Create(ctx, NewItem("RM-1", "Replacement", "kg")))
}
