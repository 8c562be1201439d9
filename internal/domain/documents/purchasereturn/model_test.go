package purchasereturn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpost/internal/core/entity"
	"ledgerpost/internal/core/id"
	"ledgerpost/internal/core/types"
)

func line(lineNo int, quantity float64, rate string) Line {
	return Line{
		LineID:   id.New(),
		LineNo:   lineNo,
		ItemID:   id.New(),
		Quantity: types.NewQuantityFromFloat64(quantity),
		Rate:     types.MustMoney(rate),
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a well-formed return", func(t *testing.T) {
		pr := New(id.New(), id.New())
		pr.Lines = []Line{line(1, 3, "100")}
		assert.NoError(t, pr.Validate(ctx))
	})

	t.Run("original purchase reference is optional", func(t *testing.T) {
		pr := New(id.New(), id.New())
		pr.Lines = []Line{line(1, 3, "100")}
		against := id.New()
		pr.AgainstPurchaseID = &against
		assert.NoError(t, pr.Validate(ctx))
	})

	t.Run("missing supplier is rejected", func(t *testing.T) {
		pr := New(id.New(), id.Nil())
		pr.Lines = []Line{line(1, 3, "100")}
		assert.Error(t, pr.Validate(ctx))
	})

	t.Run("empty lines are rejected", func(t *testing.T) {
		pr := New(id.New(), id.New())
		assert.Error(t, pr.Validate(ctx))
	})
}

func TestRecalculateTotals(t *testing.T) {
	pr := New(id.New(), id.New())
	l := line(1, 4, "125")
	l.IGSTAmount = types.MustMoney("90")
	pr.Lines = []Line{l}
	pr.Rounding = types.MustMoney("0.50")

	pr.RecalculateTotals()

	assert.True(t, types.MustMoney("500").Equal(pr.Taxable))
	assert.True(t, types.MustMoney("90").Equal(pr.IGST))
	assert.True(t, types.MustMoney("590.50").Equal(pr.GrandTotal))

	totals := pr.Totals()
	assert.True(t, totals.GrandTotal.Equal(pr.GrandTotal))
	assert.True(t, totals.Rounding.Equal(pr.Rounding))
}

func TestExpenseMovements(t *testing.T) {
	pr := New(id.New(), id.New())
	pr.Lines = []Line{line(1, 3, "100"), line(2, 2, "50")}

	movements := pr.ExpenseMovements()
	require.Len(t, movements, 2)

	for i, m := range movements {
		assert.Equal(t, pr.ID, m.RecorderID)
		assert.Equal(t, DocType, m.RecorderType)
		assert.Equal(t, entity.RecordTypeExpense, m.RecordType)
		assert.Equal(t, pr.Lines[i].Quantity, m.Quantity)
		assert.Equal(t, pr.Lines[i].Quantity.Neg(), m.SignedQuantity(),
			"returned goods leave stock")
	}
}
