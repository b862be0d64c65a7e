package output

import (
	"encoding/json"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
)

// JSONFormatter serializes the summary and representative paths as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

type jsonPath struct {
	Name      string                  `json:"name"`
	Iteration *domain.IterationResult `json:"iteration"`
}

type jsonReport struct {
	RunID          string              `json:"run_id,omitempty"`
	Seed           int64               `json:"seed"`
	Summary        calculation.Summary `json:"summary"`
	Assumptions    []string            `json:"assumptions"`
	Representative []jsonPath          `json:"representative"`
}

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	out := jsonReport{
		RunID:       report.RunID,
		Seed:        report.Seed,
		Summary:     report.Summary,
		Assumptions: assumptionsOf(report),
	}
	for _, r := range report.Representative {
		out.Representative = append(out.Representative, jsonPath{Name: r.Name, Iteration: r.Iteration})
	}
	return json.MarshalIndent(out, "", "  ")
}
