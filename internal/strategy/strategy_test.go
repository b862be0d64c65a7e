package strategy

import (
	"context"
	"testing"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !d(expected).Round(6).Equal(actual.Round(6)) {
		assert.Fail(t, "decimal mismatch", append([]any{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
	}
}

// pathSource replays the same path for every iteration.
type pathSource []domain.ROI

func (p pathSource) MaxSupportedIterations(int) int { return calculation.Unlimited }

func (p pathSource) SequenceFor(_, years int) ([]domain.ROI, error) {
	seq := make([]domain.ROI, years)
	for i := range seq {
		seq[i] = p[i%len(p)]
	}
	return seq, nil
}

var flat = pathSource{{Label: "flat"}}

var testEnv = Environment{Seed: 1, StartAge: 65, StartYear: 2025, BirthYear: 1960}

func build(t *testing.T, settings ...domain.StrategySettings) []calculation.Strategy {
	t.Helper()
	strategies, err := Build(settings, testEnv)
	require.NoError(t, err)
	return strategies
}

func runYears(t *testing.T, accounts domain.AccountSettings, years int, source calculation.ROISource, strategies []calculation.Strategy) domain.IterationResult {
	t.Helper()
	result, err := calculation.NewSimulator().Run(context.Background(), calculation.SimulationConfig{
		Accounts:   accounts,
		Iterations: 1,
		Years:      years,
		StartAge:   testEnv.StartAge,
		StartYear:  testEnv.StartYear,
		Source:     source,
		Strategies: strategies,
	})
	require.NoError(t, err)
	require.Len(t, result.Iterations, 1)
	return result.Iterations[0]
}

func accounts(pre, post, cash string) domain.AccountSettings {
	return domain.AccountSettings{
		PreTax:  domain.AccountBalance{Amount: d(pre), Allocation: d("0.6")},
		PostTax: domain.AccountBalance{Amount: d(post), Allocation: d("0.6")},
		Cash:    domain.AccountBalance{Amount: d(cash)},
	}
}

func TestBuild(t *testing.T) {
	order := 5
	strategies, err := Build([]domain.StrategySettings{
		{Type: "expenses", Amount: d("40000")},
		{Type: "rebalance", Name: "annual", Order: &order},
	}, testEnv)
	require.NoError(t, err)
	require.Len(t, strategies, 2)
	assert.Equal(t, OrderExpenses, strategies[0].Order())
	assert.Equal(t, 5, strategies[1].Order())
	assert.Contains(t, strategies[1].Description(), "annual: Rebalance")

	_, err = Build([]domain.StrategySettings{{Type: "lottery"}}, testEnv)
	assert.ErrorContains(t, err, `unknown type "lottery"`)

	_, err = Build([]domain.StrategySettings{{Type: "expenses", Name: "rent"}}, testEnv)
	assert.ErrorContains(t, err, "rent")
}

func TestTypes(t *testing.T) {
	types := Types()
	assert.Len(t, types, 10)
	assert.Equal(t, "cash_reserve", types[0])
	assert.True(t, Known("income_tax"))
	assert.False(t, Known("annuity"))
}

func TestExpenses(t *testing.T) {
	source := pathSource{{Inflation: d("0.10")}}
	it := runYears(t, accounts("0", "1000000", "0"), 3, source, build(t,
		domain.StrategySettings{Type: "expenses", Amount: d("10000"), InflationAdjusted: true},
		domain.StrategySettings{Type: "expenses", Amount: d("500"), StartAge: 66, EndAge: 66},
	))
	require.Len(t, it.Years, 3)
	assertDecimal(t, "10000", it.Years[0].Expenses)
	assertDecimal(t, "11500", it.Years[1].Expenses)
	assertDecimal(t, "12100", it.Years[2].Expenses)
}

func TestIncome(t *testing.T) {
	it := runYears(t, accounts("0", "0", "0"), 4, flat, build(t,
		domain.StrategySettings{Type: "income", Amount: d("20000"), Rate: d("0.02"), StartAge: 66, Taxable: true},
		domain.StrategySettings{Type: "income", Amount: d("1000")},
	))
	require.Len(t, it.Years, 4)
	assertDecimal(t, "1000", it.Years[0].Incomes)
	assert.True(t, it.Years[0].Taxable.IsZero())
	assertDecimal(t, "21000", it.Years[1].Incomes)
	assertDecimal(t, "20000", it.Years[1].Taxable)
	assertDecimal(t, "21400", it.Years[2].Incomes, "COLA starts with the first payment")
	assertDecimal(t, "1000", it.Years[0].Deposits.PostTax, "unspent income is saved")
}

func TestIncome_StartAtFRA(t *testing.T) {
	strategies, err := Build([]domain.StrategySettings{{Type: "income", Amount: d("30000"), StartAtFRA: true}}, testEnv)
	require.NoError(t, err)
	assert.Contains(t, strategies[0].Description(), "from age 67")

	_, err = Build([]domain.StrategySettings{{Type: "income", Amount: d("30000"), StartAtFRA: true}}, Environment{})
	assert.Error(t, err)
}

func TestFees(t *testing.T) {
	it := runYears(t, accounts("100000", "50000", "10000"), 1, flat, build(t,
		domain.StrategySettings{Type: "fees", Rate: d("0.01")},
		domain.StrategySettings{Type: "fees", Rate: d("0.005"), Bucket: "pre_tax"},
	))
	year := it.Years[0]
	assertDecimal(t, "1500", year.Fees.PreTax)
	assertDecimal(t, "500", year.Fees.PostTax)
	assertDecimal(t, "100", year.Fees.Cash)
	assertDecimal(t, "98500", year.Dec.PreTax.Amount)

	_, err := Build([]domain.StrategySettings{{Type: "fees", Rate: d("1.5")}}, testEnv)
	assert.Error(t, err)
}

func TestFourPercentRule(t *testing.T) {
	source := pathSource{{Inflation: d("0.03")}}
	it := runYears(t, accounts("800000", "150000", "50000"), 3, source, build(t,
		domain.StrategySettings{Type: "four_percent_rule"},
	))
	assertDecimal(t, "40000", it.Years[0].Withdrawals.PreTax)
	assertDecimal(t, "41200", it.Years[1].Withdrawals.PreTax)
	assertDecimal(t, "42436", it.Years[2].Withdrawals.PreTax)
	assertDecimal(t, "40000", it.Years[0].Deposits.PostTax, "nothing spends it, so it is reinvested")
}

func TestVariablePercentage(t *testing.T) {
	it := runYears(t, accounts("100000", "0", "0"), 2, flat, build(t,
		domain.StrategySettings{Type: "variable_percentage", Rate: d("0.05"), Floor: d("6000"), Ceiling: d("10000")},
	))
	assertDecimal(t, "6000", it.Years[0].Withdrawals.PreTax, "floor applies")

	_, err := Build([]domain.StrategySettings{{Type: "variable_percentage", Rate: d("0.05"), Floor: d("10"), Ceiling: d("5")}}, testEnv)
	assert.ErrorContains(t, err, "exceeds ceiling")
}

func TestRequiredMinimumDistribution(t *testing.T) {
	assert.True(t, RequiredMinimumDistribution(d("100000"), 74, 75).IsZero())
	assertDecimal(t, "4065.04065", RequiredMinimumDistribution(d("100000"), 75, 75).Round(5))
	assertDecimal(t, "16666.666667", RequiredMinimumDistribution(d("100000"), 102, 75).Round(6))
	assert.True(t, RequiredMinimumDistribution(decimal.Zero, 80, 75).IsZero())
}

func TestRMD(t *testing.T) {
	env := testEnv
	env.StartAge = 75
	env.BirthYear = 1950
	strategies, err := Build([]domain.StrategySettings{
		{Type: "variable_percentage", Rate: d("0.01")},
		{Type: "rmd"},
	}, env)
	require.NoError(t, err)

	result, err := calculation.NewSimulator().Run(context.Background(), calculation.SimulationConfig{
		Accounts:   accounts("246000", "0", "0"),
		Iterations: 1,
		Years:      1,
		StartAge:   75,
		Source:     flat,
		Strategies: strategies,
	})
	require.NoError(t, err)
	assertDecimal(t, "10000", result.Iterations[0].Years[0].Withdrawals.PreTax, "RMD at 75 is balance / 24.6")
	assert.Contains(t, strategies[1].Description(), "age 72")
}

func TestRebalanceAndGlidePath(t *testing.T) {
	source := pathSource{{Stock: d("0.5")}}
	it := runYears(t, accounts("100000", "0", "0"), 3, source, build(t,
		domain.StrategySettings{Type: "rebalance", MaxDrift: d("0.1")},
	))
	require.Len(t, it.Years, 3)
	assertDecimal(t, "90000", it.Years[0].Dec.PreTax.Stock)
	// 90000/130000 drifts less than 10 points, so year 1 does not trade
	assertDecimal(t, "90000", it.Years[1].Jan.PreTax.Stock)
	assertDecimal(t, "135000", it.Years[1].Dec.PreTax.Stock)
	assertDecimal(t, "105000", it.Years[2].Jan.PreTax.Stock)
	assertDecimal(t, "70000", it.Years[2].Jan.PreTax.Bond)

	g := &GlidePath{start: d("0.8"), end: d("0.4"), years: 4}
	assertDecimal(t, "0.8", g.AllocationAt(0))
	assertDecimal(t, "0.6", g.AllocationAt(2))
	assertDecimal(t, "0.4", g.AllocationAt(4))
	assertDecimal(t, "0.4", g.AllocationAt(10))

	it = runYears(t, accounts("100000", "0", "0"), 3, flat, build(t,
		domain.StrategySettings{Type: "glide_path", Allocation: d("0.8"), EndAllocation: d("0.4"), Years: 2},
	))
	assertDecimal(t, "0.8", it.Years[0].Dec.PreTax.Allocation)
	assertDecimal(t, "0.6", it.Years[1].Dec.PreTax.Allocation)
	assertDecimal(t, "0.4", it.Years[2].Dec.PreTax.Allocation)

	_, err := Build([]domain.StrategySettings{{Type: "glide_path", Allocation: d("0.8"), EndAllocation: d("0.4")}}, testEnv)
	assert.ErrorContains(t, err, "years must be positive")
}

func TestCashReserve(t *testing.T) {
	source := pathSource{{Stock: d("-0.2")}, {Stock: d("0")}, {Stock: d("0")}}
	it := runYears(t, accounts("0", "200000", "5000"), 3, source, build(t,
		domain.StrategySettings{Type: "expenses", Amount: d("10000")},
		domain.StrategySettings{Type: "cash_reserve", Amount: d("20000")},
	))
	require.Len(t, it.Years, 3)

	first := it.Years[0]
	assertDecimal(t, "15000", first.Deposits.Cash, "topped up to the target")
	assertDecimal(t, "25000", first.Withdrawals.PostTax, "spending plus refill from post-tax")
	assertDecimal(t, "20000", first.Dec.Cash.Amount)

	second := it.Years[1]
	assertDecimal(t, "10000", second.Withdrawals.Cash, "after a down year spending comes from cash")
	assert.True(t, second.Withdrawals.PostTax.IsZero())
	assertDecimal(t, "10000", second.Dec.Cash.Amount)

	third := it.Years[2]
	assertDecimal(t, "10000", third.Deposits.Cash, "refilled once markets recover")
}
