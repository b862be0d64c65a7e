package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
)

// HTMLFormatter produces a standalone HTML report with Chart.js charts.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"rate": FormatRate,
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err
	},
}).Parse(htmlTemplateSource))

// histogramBins is the number of ending-balance buckets charted.
const histogramBins = 10

type htmlCharts struct {
	Histogram   []HistogramBin `json:"histogram"`
	Percentiles []float64      `json:"percentiles"`
	Bands       BalanceBands   `json:"bands"`
	Paths       []PathSeries   `json:"paths"`
}

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	s := report.Summary
	p := s.EndingBalances

	data := struct {
		*Report
		Assessment   Assessment
		SuccessClass string
		Assumptions  []string
		Percentiles  []percentileRow
		Charts       htmlCharts
	}{
		Report:       report,
		Assessment:   AnalyzeSummary(s),
		SuccessClass: successRateClass(s),
		Assumptions:  assumptionsOf(report),
		Percentiles:  percentileRows(p),
		Charts: htmlCharts{
			Histogram: createHistogramBins(endingBalances(report.Result), histogramBins),
			Percentiles: []float64{
				p.P10.Round(0).InexactFloat64(),
				p.P25.Round(0).InexactFloat64(),
				p.P50.Round(0).InexactFloat64(),
				p.P75.Round(0).InexactFloat64(),
				p.P90.Round(0).InexactFloat64(),
			},
			Bands: balanceBands(report.Result),
			Paths: pathSeries(report.Representative),
		},
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
