package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer implements the simple summary CSV output (one row per
// iteration, worst first).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Rank", "Iteration", "Success", "SurvivedYears", "EndingBalance", "FirstFailedYear", "Shortfall"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if report.Result != nil {
		for rank := range report.Result.Iterations {
			it := &report.Result.Iterations[rank]
			failedYear, shortfall := "", ""
			if n := len(it.Years); n > 0 && !it.Years[n-1].Success {
				failedYear = intToString(it.Years[n-1].Year)
				shortfall = it.Years[n-1].Shortfall.StringFixed(2)
			}
			row := []string{
				intToString(rank + 1),
				intToString(it.Index),
				boolToString(it.Success),
				intToString(it.SurvivedYears()),
				it.EndingBalance().StringFixed(2),
				failedYear,
				shortfall,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
