package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Pipeline plan utilities",
	}

	planCmd.AddCommand(newPlanValidateCommand(ctx))
	planCmd.AddCommand(newPlanInitCommand())

	return planCmd
}

func newPlanValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan.yaml]",
		Short: "Parse and validate a pipeline plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var planArg string
			if len(args) > 0 {
				planArg = args[0]
			}
			planPath, err := resolvePlanPath(cfg, planArg)
			if err != nil {
				return err
			}
			p, err := plan.Load(planPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Plan path: %s\n", planPath)
			fmt.Fprintf(out, "Dataset %q targets %q with %d model candidates\n",
				p.Dataset.Label, p.Dataset.Target, len(p.Training.Candidates))
			fmt.Fprintln(out, "Plan valid")
			return nil
		},
	}
}

func newPlanInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample pipeline plan",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = "plan.yaml"
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve plan path: %w", err)
			}
			target = expanded

			if dir := filepath.Dir(target); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create plan directory %q: %w", dir, err)
				}
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("plan already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check plan path: %w", err)
				}
			}

			if err := plan.CreateSample(target); err != nil {
				return fmt.Errorf("create sample plan: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample plan to %s\n", target)
			fmt.Fprintln(out, "Edit the dataset and training sections, then register a dataset with `marquee add --plan`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the plan file (default plan.yaml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing plan if present")
	return cmd
}
