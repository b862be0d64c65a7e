package calculation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// Sampling modes for HistoricalSource.
const (
	ModeRolling   = "rolling"   // contiguous windows, no wrap
	ModeWrapped   = "wrapped"   // contiguous windows wrapping past the last year
	ModeBootstrap = "bootstrap" // independent years drawn with replacement
)

// HistoricalStatistics provides statistical summary of one series
type HistoricalStatistics struct {
	Mean   decimal.Decimal `json:"mean"`
	StdDev decimal.Decimal `json:"std_dev"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Count  int             `json:"count"`
}

// HistoricalSource replays a recorded market history.
type HistoricalSource struct {
	Records      []domain.ROI
	Mode         string
	Seed         int64
	MissingYears []int
}

// LoadHistoricalSource reads a CSV file with the header year,stock,bond,inflation.
func LoadHistoricalSource(filePath, mode string, seed int64) (*HistoricalSource, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	src, err := ReadHistoricalSource(file, mode, seed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return src, nil
}

// ReadHistoricalSource parses CSV history from r.
func ReadHistoricalSource(r io.Reader, mode string, seed int64) (*HistoricalSource, error) {
	switch mode {
	case "":
		mode = ModeRolling
	case ModeRolling, ModeWrapped, ModeBootstrap:
	default:
		return nil, fmt.Errorf("unknown historical mode %q", mode)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := historicalColumns(header)
	if err != nil {
		return nil, err
	}

	type row struct {
		year int
		roi  domain.ROI
	}
	var rows []row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(record[cols[0]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, record[cols[0]])
		}
		var values [3]decimal.Decimal
		for i, c := range cols[1:] {
			v, err := decimal.NewFromString(strings.TrimSpace(record[c]))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q", line, header[c], record[c])
			}
			values[i] = v
		}
		rows = append(rows, row{year: year, roi: domain.ROI{
			Label:     strconv.Itoa(year),
			Stock:     values[0],
			Bond:      values[1],
			Inflation: values[2],
		}})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid data points found")
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].year < rows[j].year })

	src := &HistoricalSource{Mode: mode, Seed: seed}
	for i, r := range rows {
		if i > 0 {
			if r.year == rows[i-1].year {
				return nil, fmt.Errorf("duplicate year %d", r.year)
			}
			for y := rows[i-1].year + 1; y < r.year; y++ {
				src.MissingYears = append(src.MissingYears, y)
			}
		}
		src.Records = append(src.Records, r.roi)
	}
	return src, nil
}

func historicalColumns(header []string) ([4]int, error) {
	cols := [4]int{-1, -1, -1, -1}
	names := []string{"year", "stock", "bond", "inflation"}
	for i, h := range header {
		for j, n := range names {
			if strings.EqualFold(strings.TrimSpace(h), n) {
				cols[j] = i
			}
		}
	}
	for j, c := range cols {
		if c < 0 {
			return cols, fmt.Errorf("invalid CSV format: missing %q column", names[j])
		}
	}
	return cols, nil
}

// MaxSupportedIterations returns the number of distinct paths available.
func (hs *HistoricalSource) MaxSupportedIterations(years int) int {
	n := len(hs.Records)
	switch hs.Mode {
	case ModeBootstrap:
		return Unlimited
	case ModeWrapped:
		return n
	default:
		if years > n {
			return 0
		}
		return n - years + 1
	}
}

// SequenceFor returns the path for iteration.
func (hs *HistoricalSource) SequenceFor(iteration, years int) ([]domain.ROI, error) {
	n := len(hs.Records)
	if n == 0 {
		return nil, ErrMissingSequence
	}

	seq := make([]domain.ROI, years)
	switch hs.Mode {
	case ModeBootstrap:
		rng := IterationRand(hs.Seed, iteration)
		for i := range seq {
			seq[i] = hs.Records[rng.Intn(n)]
		}
	case ModeWrapped:
		if iteration >= n {
			return nil, fmt.Errorf("%w: iteration %d beyond %d recorded years", ErrMissingSequence, iteration, n)
		}
		for i := range seq {
			seq[i] = hs.Records[(iteration+i)%n]
		}
	default:
		if iteration+years > n {
			return nil, fmt.Errorf("%w: window %d+%d beyond %d recorded years", ErrMissingSequence, iteration, years, n)
		}
		copy(seq, hs.Records[iteration:iteration+years])
	}
	return seq, nil
}

// Statistics summarizes the stock, bond and inflation series.
func (hs *HistoricalSource) Statistics() (stock, bond, inflation HistoricalStatistics) {
	pick := func(f func(domain.ROI) decimal.Decimal) HistoricalStatistics {
		values := make([]decimal.Decimal, len(hs.Records))
		for i, r := range hs.Records {
			values[i] = f(r)
		}
		return calculateStatistics(values)
	}
	stock = pick(func(r domain.ROI) decimal.Decimal { return r.Stock })
	bond = pick(func(r domain.ROI) decimal.Decimal { return r.Bond })
	inflation = pick(func(r domain.ROI) decimal.Decimal { return r.Inflation })
	return stock, bond, inflation
}

// calculateStatistics calculates statistical measures for a series
func calculateStatistics(values []decimal.Decimal) HistoricalStatistics {
	if len(values) == 0 {
		return HistoricalStatistics{}
	}

	var sum decimal.Decimal
	min, max := values[0], values[0]
	for _, v := range values {
		sum = sum.Add(v)
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(values))))

	var varianceSum decimal.Decimal
	for _, v := range values {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	variance := varianceSum.Div(decimal.NewFromInt(int64(len(values))))
	// Convert to float for sqrt calculation
	varianceFloat, _ := variance.Float64()
	stdDev := decimal.NewFromFloat(math.Sqrt(varianceFloat))

	return HistoricalStatistics{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(values),
	}
}
