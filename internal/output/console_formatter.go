package output

import (
	"bytes"
	"fmt"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	s := report.Summary
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Iterations: %d of %d requested, %d years\n", s.Iterations, s.RequestedIterations, s.Years)
	fmt.Fprintf(&buf, "Success Rate: %s\n", FormatRate(s.SuccessRate))
	fmt.Fprintf(&buf, "Ending Balance: P10=%s P50=%s P90=%s\n",
		FormatCurrency(s.EndingBalances.P10),
		FormatCurrency(s.EndingBalances.P50),
		FormatCurrency(s.EndingBalances.P90),
	)
	fmt.Fprintf(&buf, "Survived Years: Median=%d Worst=%d\n", s.MedianSurvivedYears, s.WorstSurvivedYears)
	fmt.Fprintf(&buf, "Risk Level: %s\n", AnalyzeSummary(s).RiskLevel)
	return buf.Bytes(), nil
}
