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

func TestTaxCalculator(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.TaxSettings
		prev     domain.YearSnapshot
		federal  string
		state    string
	}{
		{
			name: "joint seniors",
			prev: domain.YearSnapshot{
				Age:         66,
				Taxable:     d("60000"),
				Withdrawals: domain.BucketAmounts{PreTax: d("40000"), PostTax: d("99999")},
			},
			federal: "7564",
			state:   "0",
		},
		{
			name:     "single under 65 with state tax",
			settings: domain.TaxSettings{FilingStatus: FilingSingle, StateRate: d("0.05")},
			prev:     domain.YearSnapshot{Age: 60, Taxable: d("50000")},
			federal:  "3968",
			state:    "2500",
		},
		{
			name:    "below the deduction",
			prev:    domain.YearSnapshot{Age: 70, Taxable: d("20000")},
			federal: "0",
			state:   "0",
		},
		{
			name: "custom brackets",
			settings: domain.TaxSettings{
				StandardDeduction: d("10000"),
				Brackets: []domain.TaxBracket{
					{Min: decimal.Zero, Max: d("10000"), Rate: d("0.1")},
					{Min: d("10000"), Max: d("1000000"), Rate: d("0.2")},
				},
			},
			prev:    domain.YearSnapshot{Age: 50, Taxable: d("30000")},
			federal: "3000",
			state:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := NewTaxCalculator(tt.settings)
			require.NoError(t, err)
			got := calc.Calculate(tt.prev)
			assertDecimal(t, tt.federal, got.Federal)
			assertDecimal(t, tt.state, got.State)
			assertDecimal(t, d(tt.federal).Add(d(tt.state)).String(), got.Total)
		})
	}
}

func TestTaxCalculator_Indexed(t *testing.T) {
	calc, err := NewTaxCalculator(domain.TaxSettings{})
	require.NoError(t, err)

	indexed := calc.Indexed(d("2"))
	assertDecimal(t, "60000", indexed.StandardDeduction)
	assertDecimal(t, "46400", indexed.Brackets[0].Max)
	assertDecimal(t, "30000", calc.StandardDeduction, "original is untouched")
	assertDecimal(t, "23200", calc.Brackets[0].Max)
}

func TestNewTaxCalculator_Invalid(t *testing.T) {
	_, err := NewTaxCalculator(domain.TaxSettings{FilingStatus: "head_of_household"})
	assert.ErrorContains(t, err, "unknown filing status")

	_, err = NewTaxCalculator(domain.TaxSettings{Brackets: []domain.TaxBracket{{Min: d("10"), Max: d("5"), Rate: d("0.1")}}})
	assert.ErrorContains(t, err, "below min")

	_, err = NewTaxCalculator(domain.TaxSettings{StateRate: d("1.5")})
	assert.Error(t, err)
}

func TestIncomeTax_PaidTheFollowingYear(t *testing.T) {
	env := testEnv
	env.StartAge = 60
	env.Taxes = domain.TaxSettings{FilingStatus: FilingSingle, StateRate: d("0.05")}
	strategies, err := Build([]domain.StrategySettings{
		{Type: "income", Amount: d("50000"), Taxable: true},
		{Type: "income_tax"},
	}, env)
	require.NoError(t, err)
	assert.Contains(t, strategies[1].Description(), "single")

	result, err := calculation.NewSimulator().Run(context.Background(), calculation.SimulationConfig{
		Accounts:   accounts("0", "100000", "0"),
		Iterations: 1,
		Years:      2,
		StartAge:   60,
		Source:     flat,
		Strategies: strategies,
	})
	require.NoError(t, err)
	years := result.Iterations[0].Years
	require.Len(t, years, 2)
	assert.True(t, years[0].Taxes.IsZero())
	assertDecimal(t, "6468", years[1].Taxes)
}
