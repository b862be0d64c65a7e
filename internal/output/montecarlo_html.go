package output

import (
	"sort"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// HistogramBin represents a bin in a histogram
type HistogramBin struct {
	Label string          `json:"label"`
	Count int             `json:"count"`
	Min   decimal.Decimal `json:"-"`
	Max   decimal.Decimal `json:"-"`
}

// BalanceBands holds year-by-year percentiles of the total balance across
// all iterations. Iterations that already ran out count as zero.
type BalanceBands struct {
	Years []int     `json:"years"`
	P10   []float64 `json:"p10"`
	P25   []float64 `json:"p25"`
	P50   []float64 `json:"p50"`
	P75   []float64 `json:"p75"`
	P90   []float64 `json:"p90"`
}

// PathSeries is the December balance of one representative iteration.
type PathSeries struct {
	Name     string    `json:"name"`
	Years    []int     `json:"years"`
	Balances []float64 `json:"balances"`
}

func successRateClass(summary calculation.Summary) string {
	rate := summary.SuccessRate.Mul(decimalHundred).InexactFloat64()
	if rate >= 90 {
		return "success"
	} else if rate >= 70 {
		return "warning"
	}
	return "danger"
}

// endingBalances lists the ending balance of every iteration.
func endingBalances(result *domain.SimulationResult) []decimal.Decimal {
	if result == nil {
		return nil
	}
	values := make([]decimal.Decimal, len(result.Iterations))
	for i := range result.Iterations {
		values[i] = result.Iterations[i].EndingBalance()
	}
	return values
}

func createHistogramBins(values []decimal.Decimal, numBins int) []HistogramBin {
	if len(values) == 0 || numBins <= 0 {
		return []HistogramBin{}
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}

	binWidth := max.Sub(min).Div(decimal.NewFromInt(int64(numBins)))
	bins := make([]HistogramBin, numBins)
	for i := range bins {
		binMin := min.Add(binWidth.Mul(decimal.NewFromInt(int64(i))))
		bins[i] = HistogramBin{
			Label: "$" + binMin.Div(decimal.NewFromInt(1000)).StringFixed(0) + "K",
			Min:   binMin,
			Max:   min.Add(binWidth.Mul(decimal.NewFromInt(int64(i + 1)))),
		}
	}

	for _, value := range values {
		for i := range bins {
			if value.GreaterThanOrEqual(bins[i].Min) && (i == len(bins)-1 || value.LessThan(bins[i].Max)) {
				bins[i].Count++
				break
			}
		}
	}
	return bins
}

// calculatePercentile interpolates linearly between the two nearest ranks.
func calculatePercentile(values []decimal.Decimal, percentile float64) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}

	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	index := percentile * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	if float64(lower) == index {
		return sorted[lower]
	}

	weight := decimal.NewFromFloat(index - float64(lower))
	return sorted[lower].Add(sorted[lower+1].Sub(sorted[lower]).Mul(weight))
}

// balanceBands computes the percentile bands for every simulated year.
func balanceBands(result *domain.SimulationResult) BalanceBands {
	var bands BalanceBands
	if result == nil || len(result.Iterations) == 0 || result.Years == 0 {
		return bands
	}

	startYear := 0
	if first := result.Iterations[0].Years; len(first) > 0 {
		startYear = first[0].Year
	}

	perYear := make([]decimal.Decimal, len(result.Iterations))
	for y := 0; y < result.Years; y++ {
		for i := range result.Iterations {
			years := result.Iterations[i].Years
			perYear[i] = decimal.Zero
			if y < len(years) && years[y].Success {
				perYear[i] = years[y].Dec.Total()
			}
		}
		bands.Years = append(bands.Years, startYear+y)
		bands.P10 = append(bands.P10, calculatePercentile(perYear, 0.10).Round(0).InexactFloat64())
		bands.P25 = append(bands.P25, calculatePercentile(perYear, 0.25).Round(0).InexactFloat64())
		bands.P50 = append(bands.P50, calculatePercentile(perYear, 0.50).Round(0).InexactFloat64())
		bands.P75 = append(bands.P75, calculatePercentile(perYear, 0.75).Round(0).InexactFloat64())
		bands.P90 = append(bands.P90, calculatePercentile(perYear, 0.90).Round(0).InexactFloat64())
	}
	return bands
}

// pathSeries extracts the balance line of each representative iteration.
// A failed year is plotted at zero.
func pathSeries(paths []calculation.NamedIteration) []PathSeries {
	series := make([]PathSeries, 0, len(paths))
	for _, p := range paths {
		s := PathSeries{Name: p.Name}
		for _, y := range p.Iteration.Years {
			s.Years = append(s.Years, y.Year)
			if y.Success {
				s.Balances = append(s.Balances, y.Dec.Total().Round(0).InexactFloat64())
			} else {
				s.Balances = append(s.Balances, 0)
			}
		}
		series = append(series, s)
	}
	return series
}

// percentileRows pairs each ending-balance percentile with how to read it.
func percentileRows(p domain.PercentileRanges) []percentileRow {
	return []percentileRow{
		{"10th", p.P10, "Worst 10% of paths"},
		{"25th", p.P25, "Below average paths"},
		{"50th (Median)", p.P50, "Typical path"},
		{"75th", p.P75, "Above average paths"},
		{"90th", p.P90, "Best 10% of paths"},
	}
}

type percentileRow struct {
	Label          string
	Value          decimal.Decimal
	Interpretation string
}
