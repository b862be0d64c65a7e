package calculation

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// runIteration drives a reset YearState through every year of its horizon.
// It stops at the first year that cannot be funded; that year is recorded
// with only its opening balances and Success=false.
func runIteration(state *YearState, mutators []Mutator) (domain.IterationResult, error) {
	horizon := cap(state.history)
	for state.YearIndex() < horizon {
		state.beginYear()
		for _, m := range mutators {
			if err := m.Apply(state); err != nil {
				return domain.IterationResult{}, fmt.Errorf("iteration %d year %d: %w", state.iteration, state.YearIndex(), err)
			}
		}

		snap := domain.YearSnapshot{
			Year:     state.Year(),
			Age:      state.Age(),
			Label:    state.Market().Label,
			Jan:      state.accounts(),
			Incomes:  state.Incomes,
			Taxable:  state.Taxable,
			Expenses: state.Expenses,
			Taxes:    state.Taxes,
			Market:   state.Market(),
		}

		result, err := Finalize(FinalizeInput{
			Opening:     state.openingAmounts(),
			Fees:        state.Fees,
			Incomes:     state.Incomes,
			Expenses:    state.Expenses.Add(state.Taxes),
			Withdrawals: state.Withdrawals,
			Deposits:    state.Deposits,
		})
		if err != nil {
			return domain.IterationResult{}, fmt.Errorf("iteration %d year %d: %w", state.iteration, state.YearIndex(), err)
		}

		if !result.Feasible {
			snap.Shortfall = result.Shortfall
			state.history = append(state.history, snap)
			return domain.IterationResult{Index: state.iteration, Years: state.history}, nil
		}

		for _, b := range domain.Buckets {
			bal := state.balances[b]
			bal.Post(result.Fees.Get(b).Neg())
			bal.Post(result.Withdrawals.Get(b).Neg())
			switch b {
			case domain.PostTax:
				bal.Post(result.Deposits.PostTax)
			case domain.Cash:
				bal.Post(result.Deposits.Cash)
			}
		}

		var growth domain.BucketAmounts
		rates := state.Growth
		for _, b := range domain.Buckets {
			growth.Set(b, state.balances[b].Grow(rates))
		}

		snap.Dec = state.accounts()
		snap.Fees = result.Fees
		snap.Withdrawals = result.Withdrawals
		snap.Deposits = result.Deposits
		snap.Growth = growth
		snap.Shortfall = decimal.Zero
		snap.Success = true
		state.history = append(state.history, snap)
	}

	return domain.IterationResult{Index: state.iteration, Success: true, Years: state.history}, nil
}
