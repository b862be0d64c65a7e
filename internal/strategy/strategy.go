// Package strategy holds the concrete policies that drive the simulation:
// spending, income, fees, withdrawals, taxes and allocation. Policies are
// built from configuration through an explicit registration table.
package strategy

import (
	"fmt"
	"sort"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Default pipeline positions. Flows are proposed before taxes and the cash
// reserve look at them; allocation changes come last.
const (
	OrderIncome      = 10
	OrderExpenses    = 20
	OrderFees        = 30
	OrderWithdrawals = calculation.DefaultOrder
	OrderRMD         = 55
	OrderTaxes       = 70
	OrderCashReserve = 75
	OrderRebalance   = 80
	OrderGlidePath   = 85
)

// Environment is the run-level context a factory may need.
type Environment struct {
	Seed      int64
	StartAge  int
	StartYear int
	BirthYear int
	Accounts  domain.AccountSettings
	Taxes     domain.TaxSettings
}

// Factory builds one strategy from its settings.
type Factory func(settings domain.StrategySettings, env Environment) (calculation.Strategy, error)

var registry = map[string]Factory{
	"expenses":            newExpenses,
	"income":              newIncome,
	"fees":                newFees,
	"four_percent_rule":   newFourPercentRule,
	"variable_percentage": newVariablePercentage,
	"rmd":                 newRMD,
	"income_tax":          newIncomeTax,
	"rebalance":           newRebalance,
	"glide_path":          newGlidePath,
	"cash_reserve":        newCashReserve,
}

// Types lists the registered strategy types in sorted order.
func Types() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Known reports whether a strategy type is registered.
func Known(strategyType string) bool {
	_, ok := registry[strategyType]
	return ok
}

// Build creates the strategies described by settings, in the given order.
func Build(settings []domain.StrategySettings, env Environment) ([]calculation.Strategy, error) {
	strategies := make([]calculation.Strategy, 0, len(settings))
	for i, s := range settings {
		factory, ok := registry[s.Type]
		if !ok {
			return nil, fmt.Errorf("strategy %d: unknown type %q", i, s.Type)
		}
		strategy, err := factory(s, env)
		if err != nil {
			return nil, fmt.Errorf("strategy %d (%s): %w", i, s.Label(), err)
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}

// base carries the order and description shared by every policy.
type base struct {
	order       int
	description string
}

func (b base) Order() int          { return b.order }
func (b base) Description() string { return b.description }

func newBase(s domain.StrategySettings, defaultOrder int, description string) base {
	order := defaultOrder
	if s.Order != nil {
		order = *s.Order
	}
	if s.Name != "" {
		description = s.Name + ": " + description
	}
	return base{order: order, description: description}
}

// ageWindow reports whether age falls inside [start, end]; zero bounds are open.
func ageWindow(s domain.StrategySettings, age int) bool {
	if s.StartAge > 0 && age < s.StartAge {
		return false
	}
	if s.EndAge > 0 && age > s.EndAge {
		return false
	}
	return true
}

func describeAges(s domain.StrategySettings) string {
	switch {
	case s.StartAge > 0 && s.EndAge > 0:
		return fmt.Sprintf(", ages %d-%d", s.StartAge, s.EndAge)
	case s.StartAge > 0:
		return fmt.Sprintf(", from age %d", s.StartAge)
	case s.EndAge > 0:
		return fmt.Sprintf(", until age %d", s.EndAge)
	}
	return ""
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// inflationIndex compounds the realized inflation of completed years.
// advance must be called once per simulated year.
type inflationIndex struct {
	factor decimal.Decimal
}

func newInflationIndex() *inflationIndex {
	return &inflationIndex{factor: money.One}
}

func (ix *inflationIndex) advance(s *calculation.YearState) decimal.Decimal {
	if prev, ok := s.LastYear(); ok {
		ix.factor = ix.factor.Mul(money.One.Add(prev.Market.Inflation))
	}
	return ix.factor
}

// bucketsFor resolves an optional bucket name; empty means every investable bucket.
func bucketsFor(name string) ([]domain.Bucket, error) {
	if name == "" {
		return []domain.Bucket{domain.PreTax, domain.PostTax}, nil
	}
	b, err := domain.ParseBucket(name)
	if err != nil {
		return nil, err
	}
	return []domain.Bucket{b}, nil
}

func bucketOr(name string, fallback domain.Bucket) (domain.Bucket, error) {
	if name == "" {
		return fallback, nil
	}
	return domain.ParseBucket(name)
}

func requireRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(money.One) {
		return fmt.Errorf("%s %s must be between 0 and 1", name, rate)
	}
	return nil
}
