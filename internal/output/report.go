package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"gopkg.in/yaml.v3"
)

// Report is everything a formatter renders for one run.
type Report struct {
	RunID          string
	Seed           int64
	Summary        calculation.Summary
	Assumptions    []string
	Representative []calculation.NamedIteration
	Result         *domain.SimulationResult
}

// NewReport summarizes result. Assumptions may be nil.
func NewReport(result *domain.SimulationResult, assumptions []string) *Report {
	return &Report{
		Seed:           result.Seed,
		Summary:        calculation.Summarize(result),
		Assumptions:    assumptions,
		Representative: calculation.Representative(result),
		Result:         result,
	}
}

// GenerateReport renders report in the named format to w.
func GenerateReport(w io.Writer, report *Report, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		// enrich error with available formatters and aliases
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// SaveConfiguration writes config as YAML.
func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
