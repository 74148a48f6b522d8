package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/insights"
	"marquee/internal/runs"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report <runID>",
		Short: "Render a completed run's findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				run, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %d not found", id)
				}
				if run.InsightsFile == "" {
					return fmt.Errorf("run %d has no insights yet (status %s); finish it with `marquee run %d`",
						run.ID, run.Status, run.ID)
				}

				report, err := insights.LoadReport(run.ArtifactPath(cfg.RunsRoot(), run.InsightsFile))
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %d: %s\n", run.ID, run.Label)
				fmt.Fprintf(out, "Model family %s over %s holdout rows\n",
					report.Family, formatCount(report.HoldoutRows))
				if report.Actuals.Count > 0 {
					fmt.Fprintf(out, "Holdout revenue: mean %s, median %s, range %s to %s\n",
						formatMoney(report.Actuals.Mean), formatMoney(report.Actuals.Median),
						formatMoney(report.Actuals.Min), formatMoney(report.Actuals.Max))
				}
				fmt.Fprintln(out)

				fmt.Fprintln(out, renderTable(
					[]string{"Metric", "Value"},
					[][]string{
						{"RMSE", formatMoney(report.Metrics.RMSE)},
						{"MAE", formatMoney(report.Metrics.MAE)},
						{"R2", formatFloat(report.Metrics.R2)},
						{"MSE", strconv.FormatFloat(report.Metrics.MSE, 'g', 6, 64)},
					},
					[]columnAlignment{alignLeft, alignRight},
				))

				for _, grouping := range report.Groupings {
					fmt.Fprintf(out, "\nBy %s:\n", grouping.Column)
					rows := make([][]string, 0, len(grouping.Groups))
					for _, group := range grouping.Groups {
						rows = append(rows, []string{
							group.Value,
							formatCount(group.Rows),
							formatMoney(group.MeanActual),
							formatMoney(group.MeanPredicted),
							formatMoney(group.MeanAbsError),
							formatMoney(group.MeanResidual),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Value", "Rows", "Mean Actual", "Mean Predicted", "Mean |Error|", "Mean Residual"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
					))
				}

				if len(report.TopImportances) > 0 {
					fmt.Fprintln(out, "\nTop feature importances:")
					rows := make([][]string, 0, len(report.TopImportances))
					for _, importance := range report.TopImportances {
						rows = append(rows, []string{
							importance.Feature,
							strconv.FormatFloat(importance.Weight, 'g', 6, 64),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Feature", "Weight"},
						rows,
						[]columnAlignment{alignLeft, alignRight},
					))
				} else if report.ImportanceNote != "" {
					fmt.Fprintf(out, "\n%s\n", report.ImportanceNote)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw insights report as JSON")
	return cmd
}
