package strategy

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

var defaultMaxDrift = decimal.NewFromFloat(0.05)

func maxDriftOr(s domain.StrategySettings) (decimal.Decimal, error) {
	if s.MaxDrift.IsZero() {
		return defaultMaxDrift, nil
	}
	if err := requireRate("max drift", s.MaxDrift); err != nil {
		return decimal.Zero, err
	}
	return s.MaxDrift, nil
}

// Rebalance trades investable buckets back to target once drift exceeds a threshold.
type Rebalance struct {
	base
	maxDrift decimal.Decimal
	buckets  []domain.Bucket
}

func newRebalance(s domain.StrategySettings, _ Environment) (calculation.Strategy, error) {
	maxDrift, err := maxDriftOr(s)
	if err != nil {
		return nil, err
	}
	buckets, err := bucketsFor(s.Bucket)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Rebalance when drift exceeds %s", percent(maxDrift))
	return &Rebalance{base: newBase(s, OrderRebalance, desc), maxDrift: maxDrift, buckets: buckets}, nil
}

func (r *Rebalance) NewInstance(int) calculation.Mutator {
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		for _, b := range r.buckets {
			s.Rebalance(b, r.maxDrift)
		}
		return nil
	})
}

// GlidePath moves the stock allocation linearly from Allocation to
// EndAllocation over Years, then holds it.
type GlidePath struct {
	base
	start    decimal.Decimal
	end      decimal.Decimal
	years    int
	maxDrift decimal.Decimal
	buckets  []domain.Bucket
}

func newGlidePath(s domain.StrategySettings, _ Environment) (calculation.Strategy, error) {
	if err := requireRate("allocation", s.Allocation); err != nil {
		return nil, err
	}
	if err := requireRate("end allocation", s.EndAllocation); err != nil {
		return nil, err
	}
	if s.Years <= 0 {
		return nil, fmt.Errorf("years must be positive")
	}
	maxDrift, err := maxDriftOr(s)
	if err != nil {
		return nil, err
	}
	buckets, err := bucketsFor(s.Bucket)
	if err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Glide path %s to %s stocks over %d years", percent(s.Allocation), percent(s.EndAllocation), s.Years)
	return &GlidePath{
		base:     newBase(s, OrderGlidePath, desc),
		start:    s.Allocation,
		end:      s.EndAllocation,
		years:    s.Years,
		maxDrift: maxDrift,
		buckets:  buckets,
	}, nil
}

// AllocationAt returns the target allocation for a zero-based year index.
func (g *GlidePath) AllocationAt(yearIndex int) decimal.Decimal {
	if yearIndex >= g.years {
		return g.end
	}
	progress := decimal.NewFromInt(int64(yearIndex)).Div(decimal.NewFromInt(int64(g.years)))
	return g.start.Add(g.end.Sub(g.start).Mul(progress))
}

func (g *GlidePath) NewInstance(int) calculation.Mutator {
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		target := g.AllocationAt(s.YearIndex())
		for _, b := range g.buckets {
			s.Reallocate(b, target, g.maxDrift)
		}
		return nil
	})
}

// CashReserve keeps a cash buffer of Amount (optionally inflation adjusted).
// After a year of negative stock returns it covers the year's spending gap
// from cash instead of selling investments; otherwise it tops the buffer up.
type CashReserve struct {
	base
	settings domain.StrategySettings
}

func newCashReserve(s domain.StrategySettings, _ Environment) (calculation.Strategy, error) {
	if !s.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	desc := fmt.Sprintf("Cash reserve of %s", money.Format(s.Amount))
	if s.InflationAdjusted {
		desc += " (inflation adjusted)"
	}
	return &CashReserve{base: newBase(s, OrderCashReserve, desc), settings: s}, nil
}

func (c *CashReserve) NewInstance(int) calculation.Mutator {
	index := newInflationIndex()
	return calculation.MutatorFunc(func(s *calculation.YearState) error {
		factor := index.advance(s)
		target := c.settings.Amount
		if c.settings.InflationAdjusted {
			target = target.Mul(factor)
		}
		cash := s.Balance(domain.Cash).Amount

		if prev, ok := s.LastYear(); ok && prev.Market.Stock.IsNegative() {
			need := s.Expenses.Add(s.Taxes).Sub(s.Incomes).Sub(s.Withdrawals.Total())
			if need.IsPositive() {
				s.Withdrawals.Cash = s.Withdrawals.Cash.Add(money.Min(need, cash))
			}
			return nil
		}

		if shortfall := target.Sub(cash); shortfall.IsPositive() {
			s.Deposits.Cash = s.Deposits.Cash.Add(shortfall)
		}
		return nil
	})
}
