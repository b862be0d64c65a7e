package calculation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticalSource_Deterministic(t *testing.T) {
	src := DefaultStatisticalSource(2024)
	assert.Equal(t, Unlimited, src.MaxSupportedIterations(30))

	a, err := src.SequenceFor(3, 30)
	require.NoError(t, err)
	b, err := src.SequenceFor(3, 30)
	require.NoError(t, err)
	require.Len(t, a, 30)
	assert.Equal(t, a, b)

	other, err := src.SequenceFor(4, 30)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestStatisticalSource_Bounds(t *testing.T) {
	src := DefaultStatisticalSource(7)
	src.Stock.StdDev = d("5")
	src.Inflation.StdDev = d("1")

	seq, err := src.SequenceFor(0, 500)
	require.NoError(t, err)
	for _, r := range seq {
		assert.True(t, r.Stock.GreaterThanOrEqual(d("-1")), "stock return below -100%%: %s", r.Stock)
		assert.True(t, r.Inflation.GreaterThanOrEqual(d("-0.05")))
		assert.True(t, r.Inflation.LessThanOrEqual(d("0.2")))
	}
}

func TestStatisticalSource_SampleMean(t *testing.T) {
	src := DefaultStatisticalSource(11)
	seq, err := src.SequenceFor(0, 5000)
	require.NoError(t, err)

	sum := d("0")
	for _, r := range seq {
		sum = sum.Add(r.Bond)
	}
	mean := sum.Div(d("5000"))
	assert.True(t, mean.Sub(d("0.05")).Abs().LessThan(d("0.005")), "bond sample mean %s", mean)
}

func TestBoxMullerTransform(t *testing.T) {
	assert.InDelta(t, 0.0, boxMullerTransform(1, 0.25), 1e-12)
	z := boxMullerTransform(0, 0)
	assert.False(t, math.IsInf(z, 0), "zero input stays finite")
	assert.Greater(t, z, 30.0)
}
