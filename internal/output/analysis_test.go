package output

import (
	"testing"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSummary(t *testing.T) {
	balances := func(p10, p50, p90 int64) domain.PercentileRanges {
		return domain.PercentileRanges{P10: decimal.NewFromInt(p10), P50: decimal.NewFromInt(p50), P90: decimal.NewFromInt(p90)}
	}
	tests := []struct {
		name        string
		rate        float64
		balances    domain.PercentileRanges
		risk        string
		sensitivity string
		recs        int
	}{
		{"robust", 0.97, balances(900, 1000, 1200), "Low", "Low", 2},
		{"moderate", 0.80, balances(400, 1000, 1300), "Moderate", "Moderate", 2},
		{"fragile", 0.40, balances(0, 1000, 3000), "High", "High", 4},
		{"depleted median", 0.30, balances(0, 0, 100), "High", "Unable to determine", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AnalyzeSummary(calculation.Summary{SuccessRate: decimal.NewFromFloat(tt.rate), EndingBalances: tt.balances})
			assert.Equal(t, tt.risk, a.RiskLevel)
			assert.Contains(t, a.MarketSensitivity, tt.sensitivity)
			assert.Len(t, a.Recommendations, tt.recs)
		})
	}
}
