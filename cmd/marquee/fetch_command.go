package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/fetch"
	"marquee/internal/runs"
	"marquee/internal/tmdb"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var enqueue bool
	var planFlag string
	var labelFlag string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Acquire a top-revenue movie dataset from TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.TMDB.APIKey == "" {
				return errors.New("tmdb api key missing; set tmdb.api_key or export TMDB_API_KEY")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
				tmdb.WithHTTPClient(&http.Client{
					Timeout: time.Duration(cfg.TMDB.RequestTimeout) * time.Second,
				}),
			)
			if err != nil {
				return err
			}

			fetcher := fetch.NewFetcher(cfg, client, logger)
			summary, err := fetcher.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched %s movies (%s discovered, %s skipped) for %d-%d\n",
				formatCount(summary.Kept), formatCount(summary.Discovered),
				formatCount(summary.Skipped), summary.StartYear, summary.EndYear)
			fmt.Fprintf(out, "Dataset written to %s\n", summary.OutputPath)

			if !enqueue {
				return nil
			}
			return ctx.withStore(func(store *runs.Store) error {
				run, err := enqueueDataset(cmd, ctx, store, summary.OutputPath, planFlag, labelFlag, false)
				if err != nil || run == nil {
					return err
				}
				fmt.Fprintf(out, "Added run %d (%s)\n", run.ID, run.Label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Register the fetched dataset as a pending run")
	cmd.Flags().StringVarP(&planFlag, "plan", "p", "", "Plan for the enqueued run (defaults to workflow.default_plan)")
	cmd.Flags().StringVarP(&labelFlag, "label", "l", "", "Label for the enqueued run")
	return cmd
}
