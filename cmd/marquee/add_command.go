package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/fileutil"
	"marquee/internal/plan"
	"marquee/internal/runs"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var planFlag string
	var labelFlag string
	var force bool

	cmd := &cobra.Command{
		Use:   "add <dataset.csv>",
		Short: "Register a dataset for a pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				run, err := enqueueDataset(cmd, ctx, store, sourcePath, planFlag, labelFlag, force)
				if err != nil || run == nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added run %d (%s)\n", run.ID, run.Label)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&planFlag, "plan", "p", "", "Pipeline plan to apply (defaults to workflow.default_plan)")
	cmd.Flags().StringVarP(&labelFlag, "label", "l", "", "Human-readable dataset label")
	cmd.Flags().BoolVar(&force, "force", false, "Add even when the dataset fingerprint is already registered")
	return cmd
}

// enqueueDataset fingerprints the source file, checks for an existing run
// with the same content, and registers a pending run. Returns nil without
// error when a duplicate is skipped.
func enqueueDataset(cmd *cobra.Command, ctx *commandContext, store *runs.Store, sourcePath, planFlag, labelFlag string, force bool) (*runs.Run, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}

	planPath, err := resolvePlanPath(cfg, planFlag)
	if err != nil {
		return nil, err
	}
	if _, err := plan.Load(planPath); err != nil {
		return nil, fmt.Errorf("plan %s: %w", planPath, err)
	}

	fingerprint, err := dataset.Fingerprint(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint dataset: %w", err)
	}

	// Keep a stable copy under datasets_dir so later stages re-read a file
	// the user cannot move out from under the run.
	if filepath.Dir(sourcePath) != cfg.Paths.DatasetsDir {
		target := filepath.Join(cfg.Paths.DatasetsDir, filepath.Base(sourcePath))
		if err := fileutil.CopyFileVerified(sourcePath, target); err != nil {
			return nil, fmt.Errorf("copy dataset into %s: %w", cfg.Paths.DatasetsDir, err)
		}
		sourcePath = target
	}

	if !force {
		existing, err := store.FindByFingerprint(cmd.Context(), fingerprint)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fmt.Fprintf(cmd.OutOrStdout(),
				"Dataset already registered as run %d (%s); use --force to add again\n",
				existing.ID, existing.Status)
			return nil, nil
		}
	}

	label := strings.TrimSpace(labelFlag)
	if label == "" {
		base := filepath.Base(sourcePath)
		label = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return store.NewRun(cmd.Context(), label, sourcePath, planPath, fingerprint)
}

func resolvePlanPath(cfg *config.Config, planFlag string) (string, error) {
	candidate := strings.TrimSpace(planFlag)
	if candidate == "" {
		candidate = cfg.Workflow.DefaultPlan
	}
	if candidate == "" {
		return "", fmt.Errorf("no plan given; pass --plan or set workflow.default_plan (see `marquee plan init`)")
	}
	return config.ExpandPath(candidate)
}
