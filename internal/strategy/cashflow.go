package strategy

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Expenses adds a fixed annual spending need, optionally indexed to inflation.
type Expenses struct {
	base
	settings domain.StrategySettings
}

func newExpenses(s domain.StrategySettings, _ Environment) (calculation.Strategy, error) {
	if !s.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	desc := fmt.Sprintf("Expenses %s/yr", money.Format(s.Amount))
	if s.InflationAdjusted {
		desc += " (inflation adjusted)"
	}
	desc += describeAges(s)
	return &Expenses{base: newBase(s, OrderExpenses, desc), settings: s}, nil
}

func (e *Expenses) NewInstance(int) calculation.Mutator {
	index := newInflationIndex()
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		factor := index.advance(s)
		if !ageWindow(e.settings, s.Age()) {
			return nil
		}
		amount := e.settings.Amount
		if e.settings.InflationAdjusted {
			amount = amount.Mul(factor)
		}
		s.Expenses = s.Expenses.Add(amount)
		return nil
	})
}

// Income adds a recurring income such as a pension, annuity or Social
// Security. Inflation-adjusted income tracks realized inflation from the
// first simulated year; otherwise Rate is a fixed COLA compounding from the
// first payment.
type Income struct {
	base
	settings domain.StrategySettings
}

func newIncome(s domain.StrategySettings, env Environment) (calculation.Strategy, error) {
	if s.StartAtFRA {
		birthYear := s.BirthYear
		if birthYear == 0 {
			birthYear = env.BirthYear
		}
		if birthYear == 0 {
			return nil, fmt.Errorf("start_at_fra needs a birth year")
		}
		s.StartAge = dateutil.FullRetirementAge(birthYear)
	}
	if !s.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if s.Rate.IsNegative() {
		return nil, fmt.Errorf("cola rate %s must not be negative", s.Rate)
	}
	desc := fmt.Sprintf("Income %s/yr", money.Format(s.Amount))
	switch {
	case s.InflationAdjusted:
		desc += " (inflation adjusted)"
	case s.Rate.IsPositive():
		desc += fmt.Sprintf(" (%s COLA)", percent(s.Rate))
	}
	if s.Taxable {
		desc += ", taxable"
	}
	desc += describeAges(s)
	return &Income{base: newBase(s, OrderIncome, desc), settings: s}, nil
}

func (in *Income) NewInstance(int) calculation.Mutator {
	index := newInflationIndex()
	paid := 0
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		factor := index.advance(s)
		if !ageWindow(in.settings, s.Age()) {
			return nil
		}
		amount := in.settings.Amount
		switch {
		case in.settings.InflationAdjusted:
			amount = amount.Mul(factor)
		case in.settings.Rate.IsPositive():
			amount = amount.Mul(money.One.Add(in.settings.Rate).Pow(decimal.NewFromInt(int64(paid))))
		}
		paid++

		s.Incomes = s.Incomes.Add(amount)
		if in.settings.Taxable {
			s.Taxable = s.Taxable.Add(amount)
		}
		return nil
	})
}

// Fees charges an annual percentage of each bucket's opening balance.
type Fees struct {
	base
	rate    decimal.Decimal
	buckets []domain.Bucket
}

func newFees(s domain.StrategySettings, _ Environment) (calculation.Strategy, error) {
	if err := requireRate("fee rate", s.Rate); err != nil {
		return nil, err
	}
	buckets := domain.Buckets
	if s.Bucket != "" {
		b, err := domain.ParseBucket(s.Bucket)
		if err != nil {
			return nil, err
		}
		buckets = []domain.Bucket{b}
	}
	desc := fmt.Sprintf("Fees %s of balance", percent(s.Rate))
	return &Fees{base: newBase(s, OrderFees, desc), rate: s.Rate, buckets: buckets}, nil
}

func (f *Fees) NewInstance(int) calculation.Mutator {
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		for _, b := range f.buckets {
			s.Fees.Add(b, s.Balance(b).Amount.Mul(f.rate))
		}
		return nil
	})
}
