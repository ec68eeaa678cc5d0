package main

import (
	"errors"
	"fmt"

	"github.com/gatewright/gatewright/internal/validator"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check <validator-id>",
		Short: "Run one configured validator and report its verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoRoot, err := projectRoot(ctx)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(repoRoot)
			if err != nil {
				return err
			}
			runners, err := cfg.Runners(args[0:1])
			if err != nil {
				return err
			}
			runner := runners[0]
			if runner.Scope() == validator.ScopeFile && file == "" {
				return fmt.Errorf("validator %s runs per file, pass --file", runner.ID())
			}

			result, err := runner.Run(ctx, repoRoot, file)
			var execErr *validator.ExecError
			if errors.As(err, &execErr) {
				return fmt.Errorf("%s could not deliver a verdict: %w", runner.ID(), execErr)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Passed {
				fmt.Fprintf(out, "%s passed\n", runner.ID())
				if result.Metric != nil {
					fmt.Fprintf(out, "measured %.1f%%, required %.1f%%\n", result.Metric.Actual, result.Metric.Required)
				}
				return nil
			}
			for _, d := range result.Diagnostics {
				if d.Location != "" {
					fmt.Fprintf(out, "%s: %s\n", d.Location, d.Message)
				} else {
					fmt.Fprintln(out, d.Message)
				}
			}
			return fmt.Errorf("%s failed", runner.ID())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "file to check, for file-scoped validators")
	return cmd
}
