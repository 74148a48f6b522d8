package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/pipeline"
	"marquee/internal/runs"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline and run ledger health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return ctx.withStore(func(store *runs.Store) error {
				for _, line := range renderSectionHeader("Run ledger", colorize) {
					fmt.Fprintln(out, line)
				}
				dbHealth, err := store.CheckHealth(cmd.Context())
				if err != nil {
					fmt.Fprintln(out, renderStatusLine("database", statusError, err.Error(), colorize))
				} else {
					kind := statusOK
					if !dbHealth.IntegrityCheck || len(dbHealth.MissingColumns) > 0 {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine("database", kind,
						fmt.Sprintf("%s (%d runs)", dbHealth.DBPath, dbHealth.TotalRuns), colorize))
				}

				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStatusLine("pending", countKind(summary.Pending, statusInfo), formatCount(summary.Pending), colorize))
				fmt.Fprintln(out, renderStatusLine("processing", countKind(summary.Processing, statusInfo), formatCount(summary.Processing), colorize))
				fmt.Fprintln(out, renderStatusLine("completed", countKind(summary.Completed, statusOK), formatCount(summary.Completed), colorize))
				fmt.Fprintln(out, renderStatusLine("failed", countKind(summary.Failed, statusError), formatCount(summary.Failed), colorize))
				fmt.Fprintln(out, renderStatusLine("review", countKind(summary.Review, statusWarn), formatCount(summary.Review), colorize))

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Stages", colorize) {
					fmt.Fprintln(out, line)
				}
				runner := pipeline.NewRunner(cfg, store, logger)
				for _, check := range runner.HealthChecks(cmd.Context()) {
					kind := statusOK
					if !check.Ready {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
				}
				return nil
			})
		},
	}
}

// countKind keeps zero counts informational so an empty ledger does not
// render a wall of errors.
func countKind(count int, nonZero statusKind) statusKind {
	if count == 0 {
		return statusInfo
	}
	return nonZero
}
