package purchase

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

	valid := func() *Purchase {
		p := New(id.New(), id.New())
		p.Lines = []Line{line(1, 10, "100")}
		return p
	}

	t.Run("accepts a well-formed draft", func(t *testing.T) {
		assert.NoError(t, valid().Validate(ctx))
	})

	tests := []struct {
		name   string
		mutate func(*Purchase)
	}{
		{"missing supplier", func(p *Purchase) { p.SupplierID = id.Nil() }},
		{"no lines", func(p *Purchase) { p.Lines = nil }},
		{"zero line number", func(p *Purchase) { p.Lines[0].LineNo = 0 }},
		{"duplicate line number", func(p *Purchase) {
			p.Lines = append(p.Lines, line(1, 5, "50"))
		}},
		{"missing item", func(p *Purchase) { p.Lines[0].ItemID = id.Nil() }},
		{"zero quantity", func(p *Purchase) { p.Lines[0].Quantity = 0 }},
		{"negative quantity", func(p *Purchase) {
			p.Lines[0].Quantity = types.NewQuantityFromFloat64(-1)
		}},
		{"negative rate", func(p *Purchase) {
			p.Lines[0].Rate = types.MustMoney("-1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			assert.Error(t, p.Validate(ctx))
		})
	}
}

func TestRecalculateTotals(t *testing.T) {
	t.Run("sums lines and taxes", func(t *testing.T) {
		p := New(id.New(), id.New())
		l1 := line(1, 10, "100")
		l1.CGSTAmount = types.MustMoney("90")
		l1.SGSTAmount = types.MustMoney("90")
		l2 := line(2, 2, "50.50")
		p.Lines = []Line{l1, l2}
		p.Rounding = types.MustMoney("-0.80")

		p.RecalculateTotals()

		assert.True(t, types.MustMoney("1101").Equal(p.Taxable))
		assert.True(t, types.MustMoney("90").Equal(p.CGST))
		assert.True(t, types.MustMoney("90").Equal(p.SGST))
		assert.True(t, p.IGST.IsZero())
		// 1101 + 90 + 90 - 0.80
		assert.True(t, types.MustMoney("1280.20").Equal(p.GrandTotal))

		assert.True(t, types.MustMoney("1180").Equal(p.Lines[0].Amount))
		assert.True(t, types.MustMoney("101").Equal(p.Lines[1].Amount))
	})

	t.Run("fractional quantity stays exact", func(t *testing.T) {
		p := New(id.New(), id.New())
		p.Lines = []Line{line(1, 2.5, "10.10")}

		p.RecalculateTotals()

		assert.True(t, types.MustMoney("25.25").Equal(p.Taxable))
		assert.True(t, types.MustMoney("25.25").Equal(p.GrandTotal))
	})
}

func TestApplyOverheads(t *testing.T) {
	t.Run("sums by category and prepares the cost sheet", func(t *testing.T) {
		p := New(id.New(), id.New())
		err := p.ApplyOverheads([]OverheadCharge{
			{Category: OverheadFreight, Amount: types.MustMoney("100")},
			{Category: OverheadFreight, Amount: types.MustMoney("50")},
			{Category: OverheadLabor, Amount: types.MustMoney("25")},
		})
		require.NoError(t, err)

		assert.True(t, types.MustMoney("150").Equal(p.FreightCharges))
		assert.True(t, types.MustMoney("25").Equal(p.LaborCharges))
		assert.True(t, p.OtherCharges.IsZero())
		assert.True(t, p.CostSheetPrepared)
	})

	t.Run("no charges leaves the cost sheet unprepared", func(t *testing.T) {
		p := New(id.New(), id.New())
		require.NoError(t, p.ApplyOverheads(nil))
		assert.False(t, p.CostSheetPrepared)
	})

	t.Run("zero charges leave the cost sheet unprepared", func(t *testing.T) {
		p := New(id.New(), id.New())
		require.NoError(t, p.ApplyOverheads([]OverheadCharge{
			{Category: OverheadOther, Amount: types.Zero()},
		}))
		assert.False(t, p.CostSheetPrepared)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		p := New(id.New(), id.New())
		err := p.ApplyOverheads([]OverheadCharge{
			{Category: OverheadFreight, Amount: types.MustMoney("-1")},
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		p := New(id.New(), id.New())
		err := p.ApplyOverheads([]OverheadCharge{
			{Category: "customs", Amount: types.MustMoney("10")},
		})
		assert.Error(t, err)
	})
}

func TestApplyAllocations(t *testing.T) {
	t.Run("writes net rates by line number", func(t *testing.T) {
		p := New(id.New(), id.New())
		p.Lines = []Line{line(1, 10, "100"), line(2, 5, "200")}

		err := p.ApplyAllocations([]LineAllocation{
			{LineNo: 2, NetRate: types.MustMoney("210")},
		})
		require.NoError(t, err)

		assert.True(t, p.Lines[0].NetRate.IsZero())
		assert.True(t, types.MustMoney("210").Equal(p.Lines[1].NetRate))
	})

	t.Run("rejects unknown line numbers", func(t *testing.T) {
		p := New(id.New(), id.New())
		p.Lines = []Line{line(1, 10, "100")}

		err := p.ApplyAllocations([]LineAllocation{
			{LineNo: 9, NetRate: types.MustMoney("10")},
		})
		assert.Error(t, err)
	})

	t.Run("rejects negative net rates", func(t *testing.T) {
		p := New(id.New(), id.New())
		p.Lines = []Line{line(1, 10, "100")}

		err := p.ApplyAllocations([]LineAllocation{
			{LineNo: 1, NetRate: types.MustMoney("-5")},
		})
		assert.Error(t, err)
	})
}

func TestEffectiveRate(t *testing.T) {
	p := New(id.New(), id.New())
	p.Lines = []Line{line(1, 10, "100"), line(2, 5, "200")}
	p.Lines[0].NetRate = types.MustMoney("110")

	t.Run("raw rate while the cost sheet is unprepared", func(t *testing.T) {
		p.CostSheetPrepared = false
		assert.True(t, types.MustMoney("100").Equal(p.EffectiveRate(&p.Lines[0])))
	})

	t.Run("net rate once prepared", func(t *testing.T) {
		p.CostSheetPrepared = true
		assert.True(t, types.MustMoney("110").Equal(p.EffectiveRate(&p.Lines[0])))
	})

	t.Run("unallocated line falls back to the raw rate", func(t *testing.T) {
		p.CostSheetPrepared = true
		assert.True(t, types.MustMoney("200").Equal(p.EffectiveRate(&p.Lines[1])))
	})
}

func TestReceiptMovements(t *testing.T) {
	p := New(id.New(), id.New())
	p.Lines = []Line{line(1, 10, "100"), line(2, 5, "200")}

	movements := p.ReceiptMovements()
	require.Len(t, movements, 2)

	for i, m := range movements {
		assert.Equal(t, p.ID, m.RecorderID)
		assert.Equal(t, DocType, m.RecorderType)
		assert.Equal(t, entity.RecordTypeReceipt, m.RecordType)
		assert.Equal(t, p.Lines[i].LineID, m.DocumentLineID)
		assert.Equal(t, p.Lines[i].ItemID, m.ItemID)
		assert.Equal(t, p.Lines[i].Quantity, m.Quantity)
		assert.Equal(t, p.Date, m.Period)
	}
}

func TestCostLines(t *testing.T) {
	p := New(id.New(), id.New())
	p.Lines = []Line{line(1, 10, "100")}
	p.Lines[0].NetRate = types.MustMoney("108")
	p.CostSheetPrepared = true

	costs := p.CostLines()
	require.Len(t, costs, 1)
	assert.Equal(t, p.Lines[0].ItemID, costs[0].ItemID)
	assert.Equal(t, p.Lines[0].Quantity, costs[0].Quantity)
	assert.True(t, types.MustMoney("108").Equal(costs[0].EffectiveRate))
}
