package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
	"ledgerpost/internal/domain/masters/item"
)

type mockStockRepo struct {
	appended []entity.StockMovement
}

func (m *mockStockRepo) AppendMovements(_ context.Context, movements []entity.StockMovement) error {
	m.appended = append(m.appended, movements...)
	return nil
}

func (m *mockStockRepo) GetHistory(_ context.Context, _ id.ID, _ HistoryFilter) ([]entity.StockMovement, error) {
	return nil, nil
}

func (m *mockStockRepo) BalanceAt(_ context.Context, _ id.ID, _ time.Time) (types.Quantity, error) {
	return 0, nil
}

// mockItems serves the item-side contract the stock writer relies on:
// lock-and-verify of referenced items, then stock adjustment.
type mockItems struct {
	item.Repository
	known       map[id.ID]bool
	locked      [][]id.ID
	adjustments [][]item.StockAdjustment
}

func newMockItems(ids ...id.ID) *mockItems {
	m := &mockItems{known: make(map[id.ID]bool)}
	for _, itemID := range ids {
		m.known[itemID] = true
	}
	return m
}

func (m *mockItems) GetManyForUpdate(_ context.Context, ids []id.ID) ([]item.Item, error) {
	m.locked = append(m.locked, ids)
	out := make([]item.Item, 0, len(ids))
	for _, itemID := range ids {
		if !m.known[itemID] {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		it := item.NewItem("", "", "")
		it.ID = itemID
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockItems) AdjustStock(_ context.Context, adjustments []item.StockAdjustment) error {
	m.adjustments = append(m.adjustments, adjustments)
	return nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func receipt(recorderID, itemID id.ID, quantity float64) entity.StockMovement {
	return entity.NewStockMovement(recorderID, "Purchase", id.New(), itemID,
		entity.RecordTypeReceipt, qty(quantity), time.Now().UTC())
}

func expense(recorderID, itemID id.ID, quantity float64) entity.StockMovement {
	return entity.NewStockMovement(recorderID, "SalesInvoice", id.New(), itemID,
		entity.RecordTypeExpense, qty(quantity), time.Now().UTC())
}

func TestRecordMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("appends rows and adjusts running stock", func(t *testing.T) {
		repo := &mockStockRepo{}
		itemID := id.New()
		items := newMockItems(itemID)
		svc := NewService(repo, items)

		err := svc.RecordMovements(ctx, []entity.StockMovement{
			receipt(id.New(), itemID, 5),
		})
		require.NoError(t, err)

		assert.Len(t, repo.appended, 1)
		require.Len(t, items.adjustments, 1)
		require.Len(t, items.adjustments[0], 1)
		assert.Equal(t, itemID, items.adjustments[0][0].ItemID)
		assert.Equal(t, qty(5), items.adjustments[0][0].Delta)
	})

	t.Run("aggregates signed quantities per item", func(t *testing.T) {
		repo := &mockStockRepo{}
		itemA := id.New()
		itemB := id.New()
		items := newMockItems(itemA, itemB)
		svc := NewService(repo, items)

		recorderID := id.New()
		err := svc.RecordMovements(ctx, []entity.StockMovement{
			receipt(recorderID, itemA, 10),
			expense(recorderID, itemA, 3),
			expense(recorderID, itemB, 7),
		})
		require.NoError(t, err)

		assert.Len(t, repo.appended, 3, "every row lands in the ledger")

		require.Len(t, items.adjustments, 1)
		adjustments := items.adjustments[0]
		require.Len(t, adjustments, 2, "deltas collapse per item")

		byItem := make(map[id.ID]types.Quantity)
		for _, a := range adjustments {
			byItem[a.ItemID] = a.Delta
		}
		assert.Equal(t, qty(7), byItem[itemA])
		assert.Equal(t, qty(-7), byItem[itemB])
	})

	t.Run("locks referenced items before writing", func(t *testing.T) {
		repo := &mockStockRepo{}
		itemA := id.New()
		itemB := id.New()
		items := newMockItems(itemA, itemB)
		svc := NewService(repo, items)

		recorderID := id.New()
		require.NoError(t, svc.RecordMovements(ctx, []entity.StockMovement{
			receipt(recorderID, itemA, 1),
			receipt(recorderID, itemB, 2),
		}))

		require.Len(t, items.locked, 1)
		assert.Len(t, items.locked[0], 2, "each referenced item is locked once")
	})

	t.Run("unknown item fails before any ledger write", func(t *testing.T) {
		repo := &mockStockRepo{}
		knownID := id.New()
		items := newMockItems(knownID)
		svc := NewService(repo, items)

		recorderID := id.New()
		err := svc.RecordMovements(ctx, []entity.StockMovement{
			receipt(recorderID, knownID, 5),
			expense(recorderID, id.New(), 2),
		})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))

		assert.Empty(t, repo.appended, "no ledger rows for a failed posting")
		assert.Empty(t, items.adjustments, "no stock effect either")
	})

	t.Run("adjustments are ordered by item id", func(t *testing.T) {
		repo := &mockStockRepo{}
		ids := []id.ID{id.New(), id.New(), id.New(), id.New()}
		items := newMockItems(ids...)
		svc := NewService(repo, items)

		recorderID := id.New()
		movements := make([]entity.StockMovement, 0, len(ids))
		for _, itemID := range ids {
			movements = append(movements, receipt(recorderID, itemID, 1))
		}
		require.NoError(t, svc.RecordMovements(ctx, movements))

		adjustments := items.adjustments[0]
		for i := 1; i < len(adjustments); i++ {
			assert.True(t, adjustments[i-1].ItemID.String() < adjustments[i].ItemID.String())
		}
	})

	t.Run("no movements is a no-op", func(t *testing.T) {
		repo := &mockStockRepo{}
		items := newMockItems()
		svc := NewService(repo, items)

		require.NoError(t, svc.RecordMovements(ctx, nil))
		assert.Empty(t, repo.appended)
		assert.Empty(t, items.locked)
		assert.Empty(t, items.adjustments)
	})
}
