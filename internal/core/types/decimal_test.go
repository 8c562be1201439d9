package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityParsing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"integer", `5`, 50_000},
		{"decimal", `2.5`, 25_000},
		{"four places", `0.0001`, 1},
		{"extra places truncated", `1.23456`, 12_345},
		{"negative", `-3.25`, -32_500},
		{"quoted string", `"7.5"`, 75_000},
		{"exponent form", `1e2`, 1_000_000},
		{"null resets to zero", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}

	t.Run("garbage is rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
	})
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "2.5000", NewQuantityFromFloat64(2.5).String())
	assert.Equal(t, "-0.2500", NewQuantityFromFloat64(-0.25).String())
	assert.Equal(t, "0.0000", Quantity(0).String())
}

func TestQuantityDecimal(t *testing.T) {
	// Quantity participates in Money math without float drift.
	q := NewQuantityFromFloat64(2.5)
	got := q.Decimal().Mul(MustMoney("10.10"))
	assert.True(t, MustMoney("25.25").Equal(got))
}

func TestQuantityArithmetic(t *testing.T) {
	q := NewQuantityFromFloat64(3)
	assert.True(t, q.IsPositive())
	assert.True(t, q.Neg().IsNegative())
	assert.Equal(t, q, q.Neg().Abs())
	assert.True(t, Quantity(0).IsZero())

	// Fixed-point values add exactly via the underlying integer.
	sum := NewQuantityFromFloat64(0.1) + NewQuantityFromFloat64(0.2)
	assert.Equal(t, NewQuantityFromFloat64(0.3), sum)
}
