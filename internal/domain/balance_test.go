package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), append([]any{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func TestParseBucket(t *testing.T) {
	testCases := []struct {
		name     string
		expected Bucket
		wantErr  bool
	}{
		{"pre_tax", PreTax, false},
		{"traditional", PreTax, false},
		{"post_tax", PostTax, false},
		{"brokerage", PostTax, false},
		{"cash", Cash, false},
		{"crypto", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBucket(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, b)
		})
	}
	assert.Equal(t, "post_tax", PostTax.String())
}

func TestStockBondBalance_Reset(t *testing.T) {
	b := NewStockBondBalance(d("100000"), d("0.6"))
	assertDecimal(t, "60000", b.Stock())
	assertDecimal(t, "40000", b.Bond())
	assertDecimal(t, "0.6", b.CurrentAllocation())
	assert.True(t, b.Drift().IsZero())

	assert.Panics(t, func() { b.Reset(d("-1"), d("0.5")) }, "negative amount")
	assert.Panics(t, func() { b.Reset(d("100"), d("1.2")) }, "allocation above one")
	assert.Panics(t, func() { NewCashBalance(d("-0.01")) })
}

func TestStockBondBalance_Rebalance(t *testing.T) {
	t.Run("drift above threshold trades to target", func(t *testing.T) {
		b := &StockBondBalance{stock: d("80000"), bond: d("20000"), target: d("0.6")}
		assertDecimal(t, "0.2", b.Drift())

		assert.True(t, b.Rebalance(d("0.1")))
		assertDecimal(t, "60000", b.Stock())
		assertDecimal(t, "40000", b.Bond())
		assert.True(t, b.Drift().IsZero())
	})

	t.Run("drift within threshold is a no-op", func(t *testing.T) {
		b := &StockBondBalance{stock: d("65000"), bond: d("35000"), target: d("0.6")}
		assert.False(t, b.Rebalance(d("0.1")))
		assertDecimal(t, "65000", b.Stock())
		assertDecimal(t, "35000", b.Bond())
	})

	t.Run("empty balance reports target allocation", func(t *testing.T) {
		b := NewStockBondBalance(decimal.Zero, d("0.7"))
		assertDecimal(t, "0.7", b.CurrentAllocation())
		assert.False(t, b.Rebalance(decimal.Zero))
	})
}

func TestStockBondBalance_Reallocate(t *testing.T) {
	b := NewStockBondBalance(d("100000"), d("0.8"))

	assert.True(t, b.Reallocate(d("0.6"), d("0.1")), "drift 0.2 exceeds 0.1")
	assertDecimal(t, "60000", b.Stock())
	assertDecimal(t, "40000", b.Bond())
	assertDecimal(t, "0.6", b.TargetAllocation())

	assert.False(t, b.Reallocate(d("0.55"), d("0.1")), "drift 0.05 is immaterial")
	assertDecimal(t, "55000", b.Stock(), "reallocate always trades")
	assertDecimal(t, "45000", b.Bond())
}

func TestStockBondBalance_Post(t *testing.T) {
	t.Run("deposit splits by target", func(t *testing.T) {
		b := NewStockBondBalance(d("100000"), d("0.6"))
		b.Post(d("10000"))
		assertDecimal(t, "66000", b.Stock())
		assertDecimal(t, "44000", b.Bond())
	})

	t.Run("withdrawal draws from both sleeves", func(t *testing.T) {
		b := NewStockBondBalance(d("100000"), d("0.6"))
		b.Post(d("-10000"))
		assertDecimal(t, "54000", b.Stock())
		assertDecimal(t, "36000", b.Bond())
	})

	t.Run("withdrawal is capped at total", func(t *testing.T) {
		b := NewStockBondBalance(d("1000"), d("0.5"))
		b.Post(d("-5000"))
		assert.True(t, b.Total().IsZero())
		assert.False(t, b.Stock().IsNegative())
		assert.False(t, b.Bond().IsNegative())
	})

	t.Run("one empty sleeve", func(t *testing.T) {
		b := &StockBondBalance{stock: decimal.Zero, bond: d("500"), target: d("0.6")}
		b.Post(d("-200"))
		assert.True(t, b.Stock().IsZero())
		assertDecimal(t, "300", b.Bond())
	})

	t.Run("residual noise snaps to zero", func(t *testing.T) {
		b := NewCashBalance(d("100"))
		b.Post(d("-99.9999999"))
		assert.True(t, b.Total().IsZero())
	})
}

func TestBalance_Grow(t *testing.T) {
	t.Run("sleeves grow independently", func(t *testing.T) {
		b := NewStockBondBalance(d("100000"), d("0.6"))
		change := b.Grow(GrowthRates{Stock: d("0.1"), Bond: d("-0.05")})
		assertDecimal(t, "66000", b.Stock())
		assertDecimal(t, "38000", b.Bond())
		assertDecimal(t, "4000", change)
	})

	t.Run("negative growth clamps at zero", func(t *testing.T) {
		b := NewCashBalance(d("1000"))
		change := b.Grow(GrowthRates{Cash: d("-1.5")})
		assert.True(t, b.Total().IsZero())
		assertDecimal(t, "-1000", change, "realized change limited to the balance")
	})

	t.Run("cash ignores stock and bond rates", func(t *testing.T) {
		b := NewCashBalance(d("1000"))
		change := b.Grow(GrowthRates{Stock: d("0.5"), Bond: d("0.5"), Cash: d("0.02")})
		assertDecimal(t, "1020", b.Total())
		assertDecimal(t, "20", change)
	})
}

func TestCashBalance_Contract(t *testing.T) {
	var b Balance = NewCashBalance(d("250"))
	assertDecimal(t, "1", b.TargetAllocation())
	assert.False(t, b.Rebalance(decimal.Zero))
	assert.False(t, b.Reallocate(d("0.5"), decimal.Zero))

	snap := b.Snapshot()
	assertDecimal(t, "250", snap.Amount)
	assertDecimal(t, "1", snap.Allocation)
}
