package calculation

import (
	"sort"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary aggregates a simulation result
type Summary struct {
	Iterations          int                     `json:"iterations"`
	RequestedIterations int                     `json:"requested_iterations"`
	Years               int                     `json:"years"`
	SuccessRate         decimal.Decimal         `json:"success_rate"`
	MedianEndingBalance decimal.Decimal         `json:"median_ending_balance"`
	EndingBalances      domain.PercentileRanges `json:"ending_balances"`
	MedianSurvivedYears int                     `json:"median_survived_years"`
	WorstSurvivedYears  int                     `json:"worst_survived_years"`
	Strategies          []string                `json:"strategies"`
}

// Summarize computes the summary statistics of result.
func Summarize(result *domain.SimulationResult) Summary {
	summary := Summary{
		Iterations:          len(result.Iterations),
		RequestedIterations: result.RequestedIterations,
		Years:               result.Years,
		SuccessRate:         result.SuccessRate(),
		Strategies:          result.Strategies,
	}
	if len(result.Iterations) == 0 {
		return summary
	}

	balances := make([]decimal.Decimal, len(result.Iterations))
	survived := make([]int, len(result.Iterations))
	for i := range result.Iterations {
		balances[i] = result.Iterations[i].EndingBalance()
		survived[i] = result.Iterations[i].SurvivedYears()
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].LessThan(balances[j]) })
	sort.Ints(survived)

	summary.EndingBalances = calculatePercentileRanges(balances)
	summary.MedianEndingBalance = summary.EndingBalances.P50
	summary.MedianSurvivedYears = survived[len(survived)/2]
	summary.WorstSurvivedYears = survived[0]
	return summary
}

// calculatePercentileRanges picks percentiles from sorted balances
func calculatePercentileRanges(balances []decimal.Decimal) domain.PercentileRanges {
	n := len(balances)
	return domain.PercentileRanges{
		P10: balances[n/10],
		P25: balances[n/4],
		P50: balances[n/2],
		P75: balances[3*n/4],
		P90: balances[9*n/10],
	}
}

// NamedIteration labels one iteration picked for reporting.
type NamedIteration struct {
	Name      string
	Iteration *domain.IterationResult
}

// Representative returns the worst, median and best iterations of a sorted result.
func Representative(result *domain.SimulationResult) []NamedIteration {
	n := len(result.Iterations)
	if n == 0 {
		return nil
	}
	return []NamedIteration{
		{Name: "worst", Iteration: &result.Iterations[0]},
		{Name: "median", Iteration: &result.Iterations[n/2]},
		{Name: "best", Iteration: &result.Iterations[n-1]},
	}
}
