package strategy

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Ordinary income is taxable income plus pre-tax withdrawals of the
//    previous year; taxes are paid the year after the income is realized.
// 2. Federal brackets default to 2025 levels and are only grown with
//    inflation when index_brackets is set.
// 3. Additional standard deduction applies per household member once the
//    household reaches 65.
// 4. State tax is a flat rate on ordinary income.

// FilingSingle and FilingJoint are the supported filing statuses.
const (
	FilingSingle = "single"
	FilingJoint  = "married_filing_jointly"
)

// TaxBreakdown is the liability computed for one year of income
type TaxBreakdown struct {
	Ordinary      decimal.Decimal `json:"ordinary"`
	Deduction     decimal.Decimal `json:"deduction"`
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	Federal       decimal.Decimal `json:"federal"`
	State         decimal.Decimal `json:"state"`
	Total         decimal.Decimal `json:"total"`
}

// TaxCalculator handles federal and state income tax calculations
type TaxCalculator struct {
	StandardDeduction   decimal.Decimal
	AdditionalDeduction decimal.Decimal // Per person 65+
	Seniors             int
	Brackets            []domain.TaxBracket
	StateRate           decimal.Decimal
}

func defaultBrackets() []domain.TaxBracket {
	return []domain.TaxBracket{
		{Min: decimal.Zero, Max: decimal.NewFromInt(23200), Rate: decimal.NewFromFloat(0.10)},
		{Min: decimal.NewFromInt(23200), Max: decimal.NewFromInt(94300), Rate: decimal.NewFromFloat(0.12)},
		{Min: decimal.NewFromInt(94300), Max: decimal.NewFromInt(201050), Rate: decimal.NewFromFloat(0.22)},
		{Min: decimal.NewFromInt(201050), Max: decimal.NewFromInt(383900), Rate: decimal.NewFromFloat(0.24)},
		{Min: decimal.NewFromInt(383900), Max: decimal.NewFromInt(487450), Rate: decimal.NewFromFloat(0.32)},
		{Min: decimal.NewFromInt(487450), Max: decimal.NewFromInt(731200), Rate: decimal.NewFromFloat(0.35)},
		{Min: decimal.NewFromInt(731200), Max: decimal.NewFromInt(999999999), Rate: decimal.NewFromFloat(0.37)},
	}
}

// NewTaxCalculator creates a calculator from configuration, falling back to
// 2025 married-filing-jointly values. Single filers get halved defaults.
func NewTaxCalculator(cfg domain.TaxSettings) (*TaxCalculator, error) {
	tc := &TaxCalculator{
		StandardDeduction:   cfg.StandardDeduction,
		AdditionalDeduction: decimal.NewFromInt(1550),
		Seniors:             2,
		Brackets:            cfg.Brackets,
		StateRate:           cfg.StateRate,
	}

	switch cfg.FilingStatus {
	case "", FilingJoint:
		if tc.StandardDeduction.IsZero() {
			tc.StandardDeduction = decimal.NewFromInt(30000)
		}
		if len(tc.Brackets) == 0 {
			tc.Brackets = defaultBrackets()
		}
	case FilingSingle:
		tc.Seniors = 1
		tc.AdditionalDeduction = decimal.NewFromInt(2000)
		if tc.StandardDeduction.IsZero() {
			tc.StandardDeduction = decimal.NewFromInt(15000)
		}
		if len(tc.Brackets) == 0 {
			two := decimal.NewFromInt(2)
			for _, b := range defaultBrackets() {
				tc.Brackets = append(tc.Brackets, domain.TaxBracket{Min: b.Min.Div(two), Max: b.Max.Div(two), Rate: b.Rate})
			}
		}
	default:
		return nil, fmt.Errorf("unknown filing status %q", cfg.FilingStatus)
	}

	for i, b := range tc.Brackets {
		if b.Max.LessThan(b.Min) {
			return nil, fmt.Errorf("bracket %d: max %s below min %s", i, b.Max, b.Min)
		}
		if err := requireRate("bracket rate", b.Rate); err != nil {
			return nil, fmt.Errorf("bracket %d: %w", i, err)
		}
	}
	if err := requireRate("state rate", tc.StateRate); err != nil {
		return nil, err
	}
	return tc, nil
}

// Indexed returns a copy with deductions and bracket thresholds scaled by factor.
func (tc *TaxCalculator) Indexed(factor decimal.Decimal) *TaxCalculator {
	scaled := *tc
	scaled.StandardDeduction = tc.StandardDeduction.Mul(factor)
	scaled.AdditionalDeduction = tc.AdditionalDeduction.Mul(factor)
	scaled.Brackets = make([]domain.TaxBracket, len(tc.Brackets))
	for i, b := range tc.Brackets {
		scaled.Brackets[i] = domain.TaxBracket{Min: b.Min.Mul(factor), Max: b.Max.Mul(factor), Rate: b.Rate}
	}
	return &scaled
}

// Calculate returns the taxes owed on the income realized in prev.
func (tc *TaxCalculator) Calculate(prev domain.YearSnapshot) TaxBreakdown {
	ordinary := prev.Taxable.Add(prev.Withdrawals.PreTax)

	deduction := tc.StandardDeduction
	if prev.Age >= 65 {
		deduction = deduction.Add(tc.AdditionalDeduction.Mul(decimal.NewFromInt(int64(tc.Seniors))))
	}

	taxable := money.NonNegative(ordinary.Sub(deduction))
	federal := tc.federalTax(taxable)
	state := ordinary.Mul(tc.StateRate)

	return TaxBreakdown{
		Ordinary:      ordinary,
		Deduction:     deduction,
		TaxableIncome: taxable,
		Federal:       federal,
		State:         state,
		Total:         federal.Add(state),
	}
}

func (tc *TaxCalculator) federalTax(taxableIncome decimal.Decimal) decimal.Decimal {
	var totalTax decimal.Decimal
	for _, bracket := range tc.Brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		incomeInBracket := decimal.Min(taxableIncome, bracket.Max).Sub(bracket.Min)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
		}
	}
	return totalTax
}

// IncomeTax adds last year's income tax to this year's expenses.
type IncomeTax struct {
	base
	calc  *TaxCalculator
	index bool
}

func newIncomeTax(s domain.StrategySettings, env Environment) (calculation.Strategy, error) {
	calc, err := NewTaxCalculator(env.Taxes)
	if err != nil {
		return nil, err
	}
	status := env.Taxes.FilingStatus
	if status == "" {
		status = FilingJoint
	}
	desc := fmt.Sprintf("Income tax (%s, standard deduction %s)", status, money.Format(calc.StandardDeduction))
	if env.Taxes.IndexBrackets {
		desc += ", indexed"
	}
	return &IncomeTax{base: newBase(s, OrderTaxes, desc), calc: calc, index: env.Taxes.IndexBrackets}, nil
}

func (it *IncomeTax) NewInstance(int) calculation.Mutator {
	index := newInflationIndex()
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		factor := index.advance(s)
		prev, ok := s.LastYear()
		if !ok {
			return nil
		}
		calc := it.calc
		if it.index {
			calc = calc.Indexed(factor)
		}
		s.Taxes = s.Taxes.Add(calc.Calculate(prev).Total)
		return nil
	})
}
