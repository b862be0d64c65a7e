package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the iterations of one run",
		Long: `List runs recorded with --db, newest first. Given a run ID, list that
run's iterations worst first.

Examples:
  retiresim history --db runs.db
  retiresim history --db runs.db 6f1c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = os.Getenv(config.EnvDatabase)
			}
			if dbPath == "" {
				return fmt.Errorf("no database: pass --db or set %s", config.EnvDatabase)
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("database %s: %w", dbPath, err)
			}
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			rec, err := openRecorder(dbPath, newLogger(cmd))
			if err != nil {
				return err
			}
			defer rec.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				iterations, err := rec.Iterations(args[0])
				if err != nil {
					return err
				}
				if len(iterations) == 0 {
					return fmt.Errorf("run %s not found", args[0])
				}
				if jsonOut {
					return json.NewEncoder(out).Encode(iterations)
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "RANK\tITERATION\tSUCCESS\tSURVIVED\tENDING BALANCE\tFAILED YEAR\tSHORTFALL")
				for i, it := range iterations {
					if limit > 0 && i >= limit {
						break
					}
					fmt.Fprintf(w, "%d\t%d\t%t\t%d\t%s\t%d\t%s\n", it.Rank, it.Index, it.Success, it.SurvivedYears,
						output.FormatCurrency(it.EndingBalance), it.FailedYear, output.FormatCurrency(it.Shortfall))
				}
				return w.Flush()
			}

			runs, err := rec.Runs(limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return json.NewEncoder(out).Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tSEED\tITERATIONS\tYEARS\tSUCCESS\tMEDIAN ENDING")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Source,
					r.Seed, r.Iterations, r.Years, output.FormatRate(r.SuccessRate), output.FormatCurrency(r.MedianEnding))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if len(runs) == 1 {
				fmt.Fprintf(out, "\nStrategies:\n  %s\n", strings.ReplaceAll(runs[0].Strategies, "\n", "\n  "))
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite database written by run --db")
	cmd.Flags().Int("limit", 20, "Maximum rows to list (0 for all)")

	return cmd
}
