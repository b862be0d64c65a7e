package output

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
)

func renderExample(t *testing.T, seed int64, workers int) []byte {
	t.Helper()
	parser := &config.InputParser{Now: func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }}
	cfg := parser.CreateExampleConfiguration()
	parser.ApplyDefaults(cfg)
	cfg.Simulation.Iterations = 64
	cfg.Simulation.Seed = seed
	cfg.Simulation.Workers = workers

	sim, err := config.BuildSimulation(cfg)
	if err != nil {
		t.Fatalf("build simulation: %v", err)
	}
	res, err := calculation.NewSimulator().Run(context.Background(), sim)
	if err != nil {
		t.Fatalf("run simulation: %v", err)
	}

	var buf bytes.Buffer
	if err := GenerateReport(&buf, NewReport(res, cfg.GenerateAssumptions()), "json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.Bytes()
}

// TestEngineSnapshot checks that a seed fully determines the report,
// whatever the worker count.
func TestEngineSnapshot(t *testing.T) {
	first := renderExample(t, 12345, 1)
	second := renderExample(t, 12345, 8)
	if !bytes.Equal(first, second) {
		t.Fatalf("same seed produced different reports\n--- 1 worker ---\n%s\n--- 8 workers ---\n%s", truncate(string(first), 400), truncate(string(second), 400))
	}
	if bytes.Equal(first, renderExample(t, 54321, 4)) {
		t.Fatalf("different seeds produced identical reports")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
