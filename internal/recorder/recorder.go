// Package recorder persists simulation runs for later comparison.
package recorder

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// RunRecord holds the summary of one simulation run.
type RunRecord struct {
	ID                  string
	CreatedAt           time.Time
	Source              string // configuration file or other origin
	Seed                int64
	Iterations          int
	RequestedIterations int
	Years               int
	SuccessRate         decimal.Decimal
	MedianEnding        decimal.Decimal
	Strategies          string // descriptions in pipeline order, one per line
}

// IterationRecord is the outcome of one iteration within a run.
type IterationRecord struct {
	Rank          int // 1 is the worst outcome
	Index         int
	Success       bool
	SurvivedYears int
	EndingBalance decimal.Decimal
	FailedYear    int // 0 when the iteration succeeded
	Shortfall     decimal.Decimal
}

// Recorder persists historical runs for analysis.
type Recorder interface {
	RecordRun(run *RunRecord, iterations []IterationRecord) error
	Runs(limit int) ([]RunRecord, error)
	Iterations(runID string) ([]IterationRecord, error)
	Close() error
}

// NewRun builds the records for result under a fresh run ID.
func NewRun(result *domain.SimulationResult, source string) (*RunRecord, []IterationRecord) {
	summary := calculation.Summarize(result)
	run := &RunRecord{
		ID:                  uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		Source:              source,
		Seed:                result.Seed,
		Iterations:          summary.Iterations,
		RequestedIterations: summary.RequestedIterations,
		Years:               summary.Years,
		SuccessRate:         summary.SuccessRate,
		MedianEnding:        summary.MedianEndingBalance,
		Strategies:          strings.Join(summary.Strategies, "\n"),
	}

	iterations := make([]IterationRecord, len(result.Iterations))
	for rank := range result.Iterations {
		it := &result.Iterations[rank]
		rec := IterationRecord{
			Rank:          rank + 1,
			Index:         it.Index,
			Success:       it.Success,
			SurvivedYears: it.SurvivedYears(),
			EndingBalance: it.EndingBalance(),
			Shortfall:     decimal.Zero,
		}
		if n := len(it.Years); n > 0 && !it.Years[n-1].Success {
			rec.FailedYear = it.Years[n-1].Year
			rec.Shortfall = it.Years[n-1].Shortfall
		}
		iterations[rank] = rec
	}
	return run, iterations
}
