package calculation

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// YearState is the mutable context of one in-flight iteration. Strategies
// mutate the exported proposed fields; balances are reachable only through
// Balance, Rebalance and Reallocate. A YearState is owned by exactly one
// iteration at a time.
type YearState struct {
	Fees        domain.BucketAmounts
	Incomes     decimal.Decimal
	Taxable     decimal.Decimal
	Expenses    decimal.Decimal
	Taxes       decimal.Decimal
	Withdrawals domain.BucketAmounts
	Deposits    domain.DepositAmounts
	Growth      domain.GrowthRates

	iteration int
	startAge  int
	startYear int
	balances  [3]domain.Balance
	history   []domain.YearSnapshot
	market    []domain.ROI
}

// NewYearState allocates the balances once; reset reuses them per iteration.
func NewYearState(startAge, startYear int) *YearState {
	return &YearState{
		startAge:  startAge,
		startYear: startYear,
		balances: [3]domain.Balance{
			domain.PreTax:  domain.NewStockBondBalance(decimal.Zero, decimal.Zero),
			domain.PostTax: domain.NewStockBondBalance(decimal.Zero, decimal.Zero),
			domain.Cash:    domain.NewCashBalance(decimal.Zero),
		},
	}
}

// reset prepares the state for a new iteration. history must have zero length
// and enough capacity for the horizon; market must cover every year.
func (s *YearState) reset(iteration int, accounts domain.AccountSettings, history []domain.YearSnapshot, market []domain.ROI) error {
	if len(market) < cap(history) {
		return fmt.Errorf("iteration %d: %w: got %d years of returns, need %d", iteration, ErrMissingSequence, len(market), cap(history))
	}
	for _, b := range domain.Buckets {
		acct := accounts.Get(b)
		if acct.Amount.IsNegative() {
			return fmt.Errorf("iteration %d: negative opening %s balance %s", iteration, b, acct.Amount)
		}
		s.balances[b].Reset(acct.Amount, acct.Allocation)
	}
	s.iteration = iteration
	s.history = history[:0]
	s.market = market
	s.clearProposed()
	return nil
}

func (s *YearState) clearProposed() {
	s.Fees = domain.BucketAmounts{}
	s.Incomes = decimal.Zero
	s.Taxable = decimal.Zero
	s.Expenses = decimal.Zero
	s.Taxes = decimal.Zero
	s.Withdrawals = domain.BucketAmounts{}
	s.Deposits = domain.DepositAmounts{}
	s.Growth = domain.GrowthRates{}
}

// beginYear clears the proposed fields and seeds growth from the market path.
func (s *YearState) beginYear() {
	s.clearProposed()
	roi := s.Market()
	s.Growth = domain.GrowthRates{Stock: roi.Stock, Bond: roi.Bond}
}

// Iteration returns the index of the iteration this state is running.
func (s *YearState) Iteration() int { return s.iteration }

// YearIndex is the zero-based index of the current year.
func (s *YearState) YearIndex() int { return len(s.history) }

// Age is the household age in the current year.
func (s *YearState) Age() int { return s.startAge + s.YearIndex() }

// Year is the calendar year of the current year.
func (s *YearState) Year() int { return s.startYear + s.YearIndex() }

// Market returns the returns supplied for the current year.
func (s *YearState) Market() domain.ROI {
	return s.market[s.YearIndex()]
}

// History returns the completed years of this iteration. Callers must not
// modify the returned snapshots.
func (s *YearState) History() []domain.YearSnapshot { return s.history }

// LastYear returns the previous year's snapshot, if any.
func (s *YearState) LastYear() (domain.YearSnapshot, bool) {
	if len(s.history) == 0 {
		return domain.YearSnapshot{}, false
	}
	return s.history[len(s.history)-1], true
}

// Balance returns a read-only view of bucket b.
func (s *YearState) Balance(b domain.Bucket) domain.BalanceSnapshot {
	return s.balances[b].Snapshot()
}

// Rebalance trades bucket b back to its target when drift exceeds maxDrift.
func (s *YearState) Rebalance(b domain.Bucket, maxDrift decimal.Decimal) bool {
	return s.balances[b].Rebalance(maxDrift)
}

// Reallocate sets a new target allocation on bucket b and rebalances.
func (s *YearState) Reallocate(b domain.Bucket, allocation, maxDrift decimal.Decimal) bool {
	return s.balances[b].Reallocate(allocation, maxDrift)
}

func (s *YearState) accounts() domain.Accounts {
	return domain.Accounts{
		PreTax:  s.balances[domain.PreTax].Snapshot(),
		PostTax: s.balances[domain.PostTax].Snapshot(),
		Cash:    s.balances[domain.Cash].Snapshot(),
	}
}

func (s *YearState) openingAmounts() domain.BucketAmounts {
	var amounts domain.BucketAmounts
	for _, b := range domain.Buckets {
		amounts.Set(b, s.balances[b].Total())
	}
	return amounts
}
