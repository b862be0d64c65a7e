package domain

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func yearsOf(n int, success bool, ending string) []YearSnapshot {
	years := make([]YearSnapshot, n)
	for i := range years {
		years[i].Success = true
		years[i].Dec.PostTax.Amount = d(ending)
	}
	if !success && n > 0 {
		years[n-1].Success = false
		years[n-1].Dec = Accounts{}
		years[n-1].Jan = Accounts{Cash: BalanceSnapshot{Amount: d(ending)}}
	}
	return years
}

func TestIterationResult_SurvivedYearsAndEnding(t *testing.T) {
	ok := IterationResult{Index: 0, Success: true, Years: yearsOf(30, true, "5000")}
	assert.Equal(t, 30, ok.SurvivedYears())
	assertDecimal(t, "5000", ok.EndingBalance())

	failed := IterationResult{Index: 1, Years: yearsOf(12, false, "5000")}
	assert.Equal(t, 11, failed.SurvivedYears())
	assertDecimal(t, "5000", failed.EndingBalance())

	empty := IterationResult{}
	assert.Equal(t, 0, empty.SurvivedYears())
}

func TestIterationResult_Ordering(t *testing.T) {
	results := []IterationResult{
		{Index: 0, Success: true, Years: yearsOf(30, true, "900000")},
		{Index: 1, Years: yearsOf(20, false, "0")},
		{Index: 2, Success: true, Years: yearsOf(30, true, "10")},
		{Index: 3, Years: yearsOf(8, false, "0")},
		{Index: 4, Success: true, Years: yearsOf(30, true, "10")},
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Less(&results[j]) })

	var order []int
	for _, r := range results {
		order = append(order, r.Index)
	}
	assert.Equal(t, []int{3, 1, 2, 4, 0}, order)
}

func TestIterationResult_OrderingSeparatesFailedPaths(t *testing.T) {
	results := []IterationResult{
		{Index: 0, Years: yearsOf(12, false, "30000")},
		{Index: 1, Years: yearsOf(12, false, "2500")},
		{Index: 2, Years: yearsOf(12, false, "18000")},
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Less(&results[j]) })

	var order []int
	for _, r := range results {
		order = append(order, r.Index)
	}
	assert.Equal(t, []int{1, 2, 0}, order, "equal survival falls back to the last recorded balance")
}

func TestSimulationResult_SuccessRate(t *testing.T) {
	sr := SimulationResult{Iterations: []IterationResult{{Success: true}, {Success: false}, {Success: true}, {Success: true}}}
	assertDecimal(t, "0.75", sr.SuccessRate())
	assert.True(t, (&SimulationResult{}).SuccessRate().Equal(decimal.Zero))
}

func TestBucketAmounts(t *testing.T) {
	var a BucketAmounts
	a.Set(PreTax, d("10"))
	a.Add(PreTax, d("5"))
	a.Add(Cash, d("1"))
	assertDecimal(t, "15", a.Get(PreTax))
	assertDecimal(t, "16", a.Total())
}

func TestConfiguration_GenerateAssumptions(t *testing.T) {
	cfg := Configuration{
		Simulation: SimulationSettings{Years: 30, StartAge: 65},
		Market:     MarketSettings{Source: "historical", Mode: "rolling"},
	}
	assumptions := cfg.GenerateAssumptions()
	assert.Contains(t, assumptions[0], "30 years starting at age 65")
	assert.Contains(t, assumptions[2], "rolling")
}
