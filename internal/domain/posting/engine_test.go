package posting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/sequence"
)

func TestEnsureNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates on first save", func(t *testing.T) {
		engine := NewEngine(sequence.NewMockAllocator())
		doc := entity.NewDocument(id.New())

		require.NoError(t, engine.EnsureNumber(ctx, &doc, "PUR"))
		assert.Equal(t, int64(1), doc.Number)
	})

	t.Run("re-save keeps the number", func(t *testing.T) {
		engine := NewEngine(sequence.NewMockAllocator())
		doc := entity.NewDocument(id.New())

		require.NoError(t, engine.EnsureNumber(ctx, &doc, "PUR"))
		require.NoError(t, engine.EnsureNumber(ctx, &doc, "PUR"))
		assert.Equal(t, int64(1), doc.Number)
	})

	t.Run("sequences are independent per type and fiscal year", func(t *testing.T) {
		engine := NewEngine(sequence.NewMockAllocator())
		fy1 := id.New()
		fy2 := id.New()

		a := entity.NewDocument(fy1)
		b := entity.NewDocument(fy1)
		c := entity.NewDocument(fy1)
		d := entity.NewDocument(fy2)

		require.NoError(t, engine.EnsureNumber(ctx, &a, "PUR"))
		require.NoError(t, engine.EnsureNumber(ctx, &b, "PUR"))
		require.NoError(t, engine.EnsureNumber(ctx, &c, "INV"))
		require.NoError(t, engine.EnsureNumber(ctx, &d, "PUR"))

		assert.Equal(t, int64(1), a.Number)
		assert.Equal(t, int64(2), b.Number)
		assert.Equal(t, int64(1), c.Number, "different doc type starts fresh")
		assert.Equal(t, int64(1), d.Number, "different fiscal year starts fresh")
	})

	t.Run("cancelled document keeps its number on revival", func(t *testing.T) {
		engine := NewEngine(sequence.NewMockAllocator())
		fy := id.New()

		doc := entity.NewDocument(fy)
		require.NoError(t, engine.EnsureNumber(ctx, &doc, "INV"))
		doc.MarkCancelled()
		doc.ClearCancelled()

		other := entity.NewDocument(fy)
		require.NoError(t, engine.EnsureNumber(ctx, &other, "INV"))

		require.NoError(t, engine.EnsureNumber(ctx, &doc, "INV"))
		assert.Equal(t, int64(1), doc.Number)
		assert.Equal(t, int64(2), other.Number)
	})
}
