package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/recorder"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Run a simulation and print the report",
		Long: `Run a simulation from a YAML configuration file.

RETIRESIM_* environment variables (also read from .env) override the file;
flags override both.

Examples:
  retiresim run plan.yaml
  retiresim run plan.yaml --format detailed-csv --seed 42
  retiresim run plan.yaml --json
  retiresim run plan.yaml --db runs.db --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)

			cfg, err := loadRunConfig(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runSimulation(ctx, cfg, args[0], logger)
			if err != nil {
				return err
			}

			format := reportFormat(cmd, cfg)
			saveDir, _ := cmd.Flags().GetString("save-dir")
			if saveDir != "" {
				f := output.GetFormatterByName(format)
				if f == nil {
					return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
				}
				path, err := output.WriteFormatted(f, report, saveDir)
				if err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
				return nil
			}
			return output.GenerateReport(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().String("format", "", "Report format (console, console-lite, json, csv, detailed-csv, html)")
	cmd.Flags().String("db", "", "SQLite database to record the run in")
	cmd.Flags().Int("workers", 0, "Parallel workers (0 uses all CPUs)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 draws a fresh one)")
	cmd.Flags().Int("iterations", 0, "Number of iterations")
	cmd.Flags().String("save-dir", "", "Write the report to a timestamped file in this directory")

	return cmd
}

// reportFormat picks --format, then --json, then the configured format.
func reportFormat(cmd *cobra.Command, cfg *domain.Configuration) string {
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return format
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return "json"
	}
	return cfg.Output.Format
}

// loadRunConfig loads the file and applies flag overrides, revalidating after.
func loadRunConfig(cmd *cobra.Command, path string) (*domain.Configuration, error) {
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("iterations") {
		cfg.Simulation.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("db") {
		cfg.Output.Database, _ = flags.GetString("db")
	}
	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// openRecorder returns the SQLite recorder for path, or a no-op recorder
// when no database is configured.
func openRecorder(path string, logger calculation.Logger) (recorder.Recorder, error) {
	if path == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(path, logger)
}

// runSimulation executes cfg and records the run.
func runSimulation(ctx context.Context, cfg *domain.Configuration, source string, logger calculation.Logger) (*output.Report, error) {
	sim, err := config.BuildSimulation(cfg)
	if err != nil {
		return nil, err
	}

	rec, err := openRecorder(cfg.Output.Database, logger)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	simulator := calculation.NewSimulator()
	simulator.SetLogger(logger)

	started := time.Now()
	result, err := simulator.Run(ctx, sim)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	logger.Infof("simulated %d iterations of %d years in %s (seed %d)", len(result.Iterations), result.Years, time.Since(started).Round(time.Millisecond), result.Seed)

	report := output.NewReport(result, cfg.GenerateAssumptions())

	run, iterations := recorder.NewRun(result, source)
	if err := rec.RecordRun(run, iterations); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	if _, persisted := rec.(*recorder.SQLiteRecorder); persisted {
		report.RunID = run.ID
	}
	return report, nil
}
