package main

import (
	"encoding/json"
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/strategy"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file without running it.

Prints the resolved assumptions and the strategies in the order the pipeline
will apply them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			parser := config.NewInputParser()
			cfg, err := parser.LoadFromFile(args[0])
			if err != nil {
				return err
			}

			strategies, err := strategy.Build(cfg.Strategies, config.Environment(cfg, cfg.Simulation.Seed))
			if err != nil {
				return err
			}
			pipeline, err := calculation.NewPipeline(strategies)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"valid":       true,
					"assumptions": cfg.GenerateAssumptions(),
					"strategies":  pipeline.Descriptions(),
				})
			}

			fmt.Fprintf(out, "Configuration %s is valid\n\n", args[0])
			fmt.Fprintln(out, "Assumptions:")
			for _, a := range cfg.GenerateAssumptions() {
				fmt.Fprintf(out, "  • %s\n", a)
			}
			fmt.Fprintln(out, "Strategies:")
			for i, d := range pipeline.Descriptions() {
				fmt.Fprintf(out, "  %d. %s\n", i+1, d)
			}
			return nil
		},
	}
}
