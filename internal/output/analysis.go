package output

import (
	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/shopspring/decimal"
)

// Assessment is the qualitative reading of a run's summary.
type Assessment struct {
	RiskLevel         string
	PrimaryConcerns   string
	MarketSensitivity string
	Recommendations   []string
}

// AnalyzeSummary grades the success rate and the spread of ending balances.
// Extracted from the console report for testability.
func AnalyzeSummary(summary calculation.Summary) Assessment {
	rate := summary.SuccessRate.Mul(decimalHundred).InexactFloat64()

	var a Assessment
	switch {
	case rate >= 90:
		a.RiskLevel = "Low"
		a.PrimaryConcerns = "Minimal concerns. The plan appears robust."
	case rate >= 70:
		a.RiskLevel = "Moderate"
		a.PrimaryConcerns = "Market volatility could exhaust the portfolio. Consider conservative strategies."
	default:
		a.RiskLevel = "High"
		a.PrimaryConcerns = "Significant risk of running out of money. Immediate action recommended."
	}

	a.MarketSensitivity = "Unable to determine"
	if median := summary.EndingBalances.P50; median.IsPositive() {
		// the 10th-90th percentile range as a proxy for variability
		cv := summary.EndingBalances.P90.Sub(summary.EndingBalances.P10).Div(median).InexactFloat64()
		switch {
		case cv < 0.5:
			a.MarketSensitivity = "Low - Ending balances are stable across market paths"
		case cv < 1.0:
			a.MarketSensitivity = "Moderate - Ending balances vary with market performance"
		default:
			a.MarketSensitivity = "High - Ending balances are highly sensitive to market paths"
		}
	}

	if rate < 90 {
		a.Recommendations = append(a.Recommendations,
			"Review withdrawal strategies to improve sustainability",
			"Consider a cash reserve to avoid selling after market declines")
	}
	if rate < 70 {
		a.Recommendations = append(a.Recommendations,
			"Reduce planned spending or delay withdrawals",
			"Explore additional income sources")
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = append(a.Recommendations,
			"Maintain current strategy",
			"Regularly review and adjust the plan as circumstances change")
	}
	return a
}

// shortfallYear returns the first failed year of an iteration, if any.
func shortfallYear(it *calculation.NamedIteration) (year int, shortfall decimal.Decimal, ok bool) {
	for _, y := range it.Iteration.Years {
		if !y.Success {
			return y.Year, y.Shortfall, true
		}
	}
	return 0, decimal.Zero, false
}
