package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/retirement-simulator/internal/calculation"
)

// ConsoleVerboseFormatter renders the detailed console report with the
// year-by-year path of the worst, median and best iterations.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	s := report.Summary

	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION REPORT")
	fmt.Fprintln(&buf, "=================================================================================")
	if report.RunID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", report.RunID)
	}
	fmt.Fprintf(&buf, "Seed: %d\n", report.Seed)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range assumptionsOf(report) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "STRATEGIES (in pipeline order):")
	for i, desc := range s.Strategies {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, desc)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "==================")
	fmt.Fprintf(&buf, "Iterations:            %d", s.Iterations)
	if s.RequestedIterations != s.Iterations {
		fmt.Fprintf(&buf, " (requested %d, limited by market data or strategies)", s.RequestedIterations)
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Horizon:               %d years\n", s.Years)
	fmt.Fprintf(&buf, "Success Rate:          %s\n", FormatRate(s.SuccessRate))
	fmt.Fprintf(&buf, "Median Survived Years: %d\n", s.MedianSurvivedYears)
	fmt.Fprintf(&buf, "Worst Survived Years:  %d\n", s.WorstSurvivedYears)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "ENDING BALANCE PERCENTILES:")
	for _, p := range []struct {
		label string
		value string
	}{
		{"10th", FormatCurrency(s.EndingBalances.P10)},
		{"25th", FormatCurrency(s.EndingBalances.P25)},
		{"50th", FormatCurrency(s.EndingBalances.P50)},
		{"75th", FormatCurrency(s.EndingBalances.P75)},
		{"90th", FormatCurrency(s.EndingBalances.P90)},
	} {
		fmt.Fprintf(&buf, "  %-5s %18s\n", p.label, p.value)
	}
	fmt.Fprintln(&buf)

	assessment := AnalyzeSummary(s)
	fmt.Fprintln(&buf, "RISK ASSESSMENT:")
	fmt.Fprintf(&buf, "  Risk Level:         %s\n", assessment.RiskLevel)
	fmt.Fprintf(&buf, "  Primary Concerns:   %s\n", assessment.PrimaryConcerns)
	fmt.Fprintf(&buf, "  Market Sensitivity: %s\n", assessment.MarketSensitivity)
	fmt.Fprintln(&buf, "RECOMMENDATIONS:")
	for _, r := range assessment.Recommendations {
		fmt.Fprintf(&buf, "  • %s\n", r)
	}
	fmt.Fprintln(&buf)

	for i := range report.Representative {
		writePath(&buf, &report.Representative[i])
	}
	return buf.Bytes(), nil
}

func writePath(buf *bytes.Buffer, it *calculation.NamedIteration) {
	fmt.Fprintf(buf, "%s PATH (iteration %d)\n", strings.ToUpper(it.Name), it.Iteration.Index)
	fmt.Fprintln(buf, strings.Repeat("=", 50))
	fmt.Fprintf(buf, "%-6s %-4s %-10s %16s %14s %14s %12s %14s %14s %16s\n",
		"Year", "Age", "Market", "January", "Income", "Expenses", "Taxes", "Withdrawals", "Growth", "December")
	for _, y := range it.Iteration.Years {
		dec := "FAILED"
		if y.Success {
			dec = FormatCurrency(y.Dec.Total())
		}
		fmt.Fprintf(buf, "%-6d %-4d %-10s %16s %14s %14s %12s %14s %14s %16s\n",
			y.Year, y.Age, y.Label,
			FormatCurrency(y.Jan.Total()),
			FormatCurrency(y.Incomes),
			FormatCurrency(y.Expenses),
			FormatCurrency(y.Taxes),
			FormatCurrency(y.Withdrawals.Total()),
			FormatCurrency(y.Growth.Total()),
			dec,
		)
	}
	if year, shortfall, failed := shortfallYear(it); failed {
		fmt.Fprintf(buf, "Ran out of money in %d, short by %s\n", year, FormatCurrency(shortfall))
	}
	fmt.Fprintln(buf)
}
