package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/logging"
	"marquee/internal/pipeline"
	"marquee/internal/runs"
)

// resumableStatuses enumerates every status a stage picks a run up from.
var resumableStatuses = []runs.Status{
	runs.StatusPending,
	runs.StatusIngested,
	runs.StatusCleaned,
	runs.StatusEngineered,
	runs.StatusTrained,
	runs.StatusEvaluated,
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var untilStage string

	cmd := &cobra.Command{
		Use:   "run [runID]",
		Short: "Drive a run through its remaining pipeline stages",
		Long: "Drive a run through its remaining pipeline stages. Without a run id the " +
			"oldest resumable run is picked. Each stage transition is persisted, so an " +
			"interrupted invocation resumes from committed artifacts.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runs.Store) error {
				run, err := resolveRun(cmd.Context(), store, args, resumableStatuses...)
				if err != nil {
					return err
				}

				runner, release, err := newLockedRunner(cmd.Context(), ctx, store)
				if err != nil {
					return err
				}
				defer release()

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running %s (run %d) from status %s\n", run.Label, run.ID, run.Status)
				if err := runner.Run(cmd.Context(), run, untilStage); err != nil {
					return err
				}
				reportRunOutcome(cmd, ctx, run)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&untilStage, "until", "", "Stop after the named stage (ingest, clean, features, train, evaluate, insights)")
	return cmd
}

func newStepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "step <stage> [runID]",
		Short: "Execute exactly one pipeline stage",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stageName := args[0]
			start, ok := runs.StageStartStatus(stageName)
			if !ok {
				return fmt.Errorf("unknown stage %q", stageName)
			}
			return ctx.withStore(func(store *runs.Store) error {
				run, err := resolveRun(cmd.Context(), store, args[1:], start)
				if err != nil {
					return err
				}

				runner, release, err := newLockedRunner(cmd.Context(), ctx, store)
				if err != nil {
					return err
				}
				defer release()

				if err := runner.Step(cmd.Context(), run, stageName); err != nil {
					return err
				}
				reportRunOutcome(cmd, ctx, run)
				return nil
			})
		},
	}
}

// resolveRun picks the run named by args, or the oldest run in any of the
// given statuses when no id is supplied.
func resolveRun(ctx context.Context, store *runs.Store, args []string, statuses ...runs.Status) (*runs.Run, error) {
	if len(args) > 0 {
		id, err := parseRunID(args[0])
		if err != nil {
			return nil, err
		}
		run, err := store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if run == nil {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return run, nil
	}

	run, err := store.NextForStatuses(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("no eligible run; register one with `marquee add`")
	}
	return run, nil
}

func newLockedRunner(ctx context.Context, cctx *commandContext, store *runs.Store) (*pipeline.Runner, func(), error) {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	release, err := pipeline.AcquireLock(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	// Aged per-run captures are pruned here, under the lock, so a concurrent
	// invocation never loses the log of a run it is still writing.
	logging.PruneRunCaptures(logger, cfg.RunsRoot(), runs.ArtifactRunLog, cfg.Logging.RetainDays)
	return pipeline.NewRunner(cfg, store, logger), release, nil
}

func reportRunOutcome(cmd *cobra.Command, cctx *commandContext, run *runs.Run) {
	out := cmd.OutOrStdout()
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return
	}
	switch run.Status {
	case runs.StatusCompleted:
		fmt.Fprintf(out, "Run %d completed; view findings with `marquee report %d`\n", run.ID, run.ID)
	case runs.StatusFailed:
		fmt.Fprintf(out, "Run %d failed during %s: %s\n", run.ID, run.ProgressStage, run.ErrorMessage)
	case runs.StatusReview:
		fmt.Fprintf(out, "Run %d needs review: %s\n", run.ID, run.ReviewReason)
		fmt.Fprintf(out, "Fix the plan or dataset, then `marquee runs retry %d`\n", run.ID)
	default:
		fmt.Fprintf(out, "Run %d stopped at status %s\n", run.ID, run.Status)
	}
	if workspace := run.WorkspaceRoot(cfg.RunsRoot()); workspace != "" {
		fmt.Fprintf(out, "Artifacts: %s\n", workspace)
	}
}
