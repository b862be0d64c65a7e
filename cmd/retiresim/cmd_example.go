package main

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print an example configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewInputParser().CreateExampleConfiguration()

			path, _ := cmd.Flags().GetString("out")
			if path != "" {
				if err := output.SaveConfiguration(cfg, path); err != nil {
					return fmt.Errorf("failed to save example: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", path)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().String("out", "", "Write the example to a file instead of stdout")

	return cmd
}
