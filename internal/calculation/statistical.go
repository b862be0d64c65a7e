package calculation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// Distribution is a normal distribution of annual rates.
type Distribution struct {
	Mean   decimal.Decimal
	StdDev decimal.Decimal
}

// StatisticalSource draws independent normal returns for every year.
type StatisticalSource struct {
	Stock     Distribution
	Bond      Distribution
	Inflation Distribution
	Seed      int64
}

// DefaultStatisticalSource uses long-run US stock, bond and CPI-U statistics.
func DefaultStatisticalSource(seed int64) *StatisticalSource {
	return &StatisticalSource{
		Stock:     Distribution{Mean: decimal.NewFromFloat(0.10), StdDev: decimal.NewFromFloat(0.17)},
		Bond:      Distribution{Mean: decimal.NewFromFloat(0.05), StdDev: decimal.NewFromFloat(0.06)},
		Inflation: Distribution{Mean: decimal.NewFromFloat(0.0259), StdDev: decimal.NewFromFloat(0.0137)}, // 2.59% historical mean
		Seed:      seed,
	}
}

var (
	minReturn    = decimal.NewFromInt(-1)
	minInflation = decimal.NewFromFloat(-0.05)
	maxInflation = decimal.NewFromFloat(0.20)
)

func (ss *StatisticalSource) MaxSupportedIterations(int) int { return Unlimited }

func (ss *StatisticalSource) SequenceFor(iteration, years int) ([]domain.ROI, error) {
	if years < 0 {
		return nil, fmt.Errorf("%w: negative horizon %d", ErrMissingSequence, years)
	}
	rng := IterationRand(ss.Seed, iteration)
	seq := make([]domain.ROI, years)
	for i := range seq {
		stock := decimal.Max(draw(rng, ss.Stock), minReturn)
		bond := decimal.Max(draw(rng, ss.Bond), minReturn)
		inflation := decimal.Min(decimal.Max(draw(rng, ss.Inflation), minInflation), maxInflation)
		seq[i] = domain.ROI{
			Label:     fmt.Sprintf("sim-%d", i+1),
			Stock:     stock.Round(6),
			Bond:      bond.Round(6),
			Inflation: inflation.Round(6),
		}
	}
	return seq, nil
}

func draw(rng *rand.Rand, d Distribution) decimal.Decimal {
	z := boxMullerTransform(rng.Float64(), rng.Float64())
	return d.Mean.Add(decimal.NewFromFloat(z).Mul(d.StdDev))
}

// boxMullerTransform implements Box-Muller transform for normal distribution
func boxMullerTransform(u1, u2 float64) float64 {
	// rand.Float64 can return 0
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
