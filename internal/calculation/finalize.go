package calculation

import (
	"errors"
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// ErrReconciliationInvariant reports that Finalize produced flows that do not
// close. It indicates a defect, never a financial outcome.
var ErrReconciliationInvariant = errors.New("cash-flow reconciliation invariant violated")

// Funding priorities. These are fixed policy: liquidate post-tax before
// pre-tax, and keep cash as the last resort.
var (
	gapPriority         = []domain.Bucket{domain.PostTax, domain.PreTax, domain.Cash}
	cashRefillSources   = []domain.Bucket{domain.PostTax, domain.PreTax}
	postTaxRefillSource = []domain.Bucket{domain.PreTax}
)

// FinalizeInput carries one year's opening balances and proposed flows.
// Expenses include taxes.
type FinalizeInput struct {
	Opening     domain.BucketAmounts
	Fees        domain.BucketAmounts
	Incomes     decimal.Decimal
	Expenses    decimal.Decimal
	Withdrawals domain.BucketAmounts
	Deposits    domain.DepositAmounts
}

// FinalizeResult carries the feasible flows. When Feasible is false the year
// cannot be funded and Shortfall holds the unclosed gap.
type FinalizeResult struct {
	Feasible    bool
	Shortfall   decimal.Decimal
	Fees        domain.BucketAmounts // realized, never more than the opening balance
	Withdrawals domain.BucketAmounts
	Deposits    domain.DepositAmounts
	Remaining   domain.BucketAmounts // opening - fees - withdrawals
}

// Finalize turns proposed withdrawals and deposits into feasible ones. It is a
// pure function of its input.
func Finalize(in FinalizeInput) (FinalizeResult, error) {
	for _, b := range domain.Buckets {
		if in.Opening.Get(b).IsNegative() {
			return FinalizeResult{}, fmt.Errorf("%w: negative opening %s balance %s", ErrReconciliationInvariant, b, in.Opening.Get(b))
		}
	}

	incomes := money.NonNegative(in.Incomes)
	expenses := money.NonNegative(in.Expenses)
	withdrawals := nonNegativeAmounts(in.Withdrawals)
	deposits := domain.DepositAmounts{
		PostTax: money.NonNegative(in.Deposits.PostTax),
		Cash:    money.NonNegative(in.Deposits.Cash),
	}

	// Withdrawing from and depositing into the same pool is a no-op.
	netTransfers(&withdrawals, &deposits)

	var fees, remaining domain.BucketAmounts
	for _, b := range domain.Buckets {
		opening := in.Opening.Get(b)
		fee := money.Min(money.NonNegative(in.Fees.Get(b)), opening)
		fees.Set(b, fee)
		available := opening.Sub(fee)

		w := money.Min(withdrawals.Get(b), available)
		withdrawals.Set(b, w)
		remaining.Set(b, available.Sub(w))
	}

	draw := func(b domain.Bucket, want decimal.Decimal) decimal.Decimal {
		take := money.Min(want, remaining.Get(b))
		if !take.IsPositive() {
			return decimal.Zero
		}
		withdrawals.Add(b, take)
		remaining.Set(b, remaining.Get(b).Sub(take))
		return take
	}

	gap := expenses.Sub(incomes).Sub(withdrawals.Total())
	if gap.IsPositive() {
		for _, b := range gapPriority {
			gap = gap.Sub(draw(b, gap))
		}
		if gap.GreaterThan(money.Epsilon) {
			return FinalizeResult{
				Shortfall:   gap,
				Fees:        fees,
				Withdrawals: withdrawals,
				Remaining:   remaining,
			}, nil
		}
	}

	surplus := money.NonNegative(incomes.Add(withdrawals.Total()).Sub(expenses))

	// fund satisfies want from the surplus first, then from sources in order.
	fund := func(want decimal.Decimal, sources []domain.Bucket) decimal.Decimal {
		funded := money.Min(want, surplus)
		surplus = surplus.Sub(funded)
		for _, b := range sources {
			funded = funded.Add(draw(b, want.Sub(funded)))
		}
		return funded
	}

	funded := domain.DepositAmounts{}
	funded.Cash = fund(deposits.Cash, cashRefillSources)
	funded.PostTax = fund(deposits.PostTax, postTaxRefillSource)
	funded.PostTax = funded.PostTax.Add(surplus)

	// Refills can draw on a bucket that also receives a deposit.
	for _, b := range []domain.Bucket{domain.PostTax, domain.Cash} {
		n := netBucket(&withdrawals, &funded, b)
		remaining.Add(b, n)
	}

	result := FinalizeResult{
		Feasible:    true,
		Fees:        fees,
		Withdrawals: withdrawals,
		Deposits:    funded,
		Remaining:   remaining,
	}
	if err := verify(in, incomes, expenses, result); err != nil {
		return FinalizeResult{}, err
	}
	return result, nil
}

func nonNegativeAmounts(a domain.BucketAmounts) domain.BucketAmounts {
	return domain.BucketAmounts{
		PreTax:  money.NonNegative(a.PreTax),
		PostTax: money.NonNegative(a.PostTax),
		Cash:    money.NonNegative(a.Cash),
	}
}

func netTransfers(w *domain.BucketAmounts, d *domain.DepositAmounts) {
	netBucket(w, d, domain.PostTax)
	netBucket(w, d, domain.Cash)
}

// netBucket cancels the overlap between a bucket's withdrawal and deposit and
// returns the amount cancelled.
func netBucket(w *domain.BucketAmounts, d *domain.DepositAmounts, b domain.Bucket) decimal.Decimal {
	dep := &d.Cash
	if b == domain.PostTax {
		dep = &d.PostTax
	}
	n := money.Min(w.Get(b), *dep)
	if !n.IsPositive() {
		return decimal.Zero
	}
	w.Set(b, money.Snap(w.Get(b).Sub(n)))
	*dep = money.Snap(dep.Sub(n))
	return n
}

// verify re-derives closure and the per-bucket identity from the result.
func verify(in FinalizeInput, incomes, expenses decimal.Decimal, r FinalizeResult) error {
	inflow := incomes.Add(r.Withdrawals.Total())
	outflow := expenses.Add(r.Deposits.Total())
	if !money.NearlyEqual(inflow, outflow) {
		return fmt.Errorf("%w: incomes+withdrawals %s != expenses+deposits %s", ErrReconciliationInvariant, inflow, outflow)
	}

	for _, b := range domain.Buckets {
		w := r.Withdrawals.Get(b)
		left := in.Opening.Get(b).Sub(r.Fees.Get(b)).Sub(w)
		if !money.NearlyEqual(left, r.Remaining.Get(b)) {
			return fmt.Errorf("%w: %s remaining %s, expected %s", ErrReconciliationInvariant, b, r.Remaining.Get(b), left)
		}
		if left.LessThan(money.Epsilon.Neg()) || w.IsNegative() {
			return fmt.Errorf("%w: %s overdrawn (withdrawal %s, remaining %s)", ErrReconciliationInvariant, b, w, left)
		}
	}

	if r.Deposits.PostTax.IsNegative() || r.Deposits.Cash.IsNegative() {
		return fmt.Errorf("%w: negative deposit", ErrReconciliationInvariant)
	}
	if r.Withdrawals.PostTax.IsPositive() && r.Deposits.PostTax.IsPositive() {
		return fmt.Errorf("%w: post_tax both withdrawn and deposited", ErrReconciliationInvariant)
	}
	if r.Withdrawals.Cash.IsPositive() && r.Deposits.Cash.IsPositive() {
		return fmt.Errorf("%w: cash both withdrawn and deposited", ErrReconciliationInvariant)
	}
	return nil
}
