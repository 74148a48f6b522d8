package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/runs"
)

type runView struct {
	ID          int64             `json:"id"`
	Label       string            `json:"label"`
	Status      string            `json:"status"`
	SourcePath  string            `json:"source_path"`
	PlanPath    string            `json:"plan_path"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Stage       string            `json:"stage,omitempty"`
	Percent     float64           `json:"percent"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	Review      string            `json:"review,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	Workspace   string            `json:"workspace,omitempty"`
	Artifacts   map[string]string `json:"artifacts,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <runID>",
		Short: "Show one run's details and artifacts",
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

				view := buildRunView(run, cfg.RunsRoot())
				if asJSON {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %d: %s\n", view.ID, view.Label)
				fmt.Fprintf(out, "  Status:      %s\n", view.Status)
				fmt.Fprintf(out, "  Source:      %s\n", view.SourcePath)
				fmt.Fprintf(out, "  Plan:        %s\n", view.PlanPath)
				if view.Fingerprint != "" {
					fmt.Fprintf(out, "  Fingerprint: %s\n", view.Fingerprint)
				}
				if view.Stage != "" {
					fmt.Fprintf(out, "  Progress:    %s %.0f%% %s\n", view.Stage, view.Percent, view.Message)
				}
				if view.Error != "" {
					fmt.Fprintf(out, "  Error:       %s\n", view.Error)
				}
				if view.Review != "" {
					fmt.Fprintf(out, "  Review:      %s\n", view.Review)
				}
				fmt.Fprintf(out, "  Created:     %s\n", view.CreatedAt)
				fmt.Fprintf(out, "  Updated:     %s\n", view.UpdatedAt)
				if len(view.Artifacts) > 0 {
					fmt.Fprintln(out, "  Artifacts:")
					for _, name := range artifactOrder {
						if path, ok := view.Artifacts[name]; ok {
							fmt.Fprintf(out, "    %-14s %s\n", name+":", path)
						}
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

var artifactOrder = []string{"cleaned", "features", "features-meta", "model", "model-meta", "evaluation", "insights", "log"}

func buildRunView(run *runs.Run, runsRoot string) runView {
	view := runView{
		ID:          run.ID,
		Label:       run.Label,
		Status:      string(run.Status),
		SourcePath:  run.SourcePath,
		PlanPath:    run.PlanPath,
		Fingerprint: run.Fingerprint,
		Stage:       run.ProgressStage,
		Percent:     run.ProgressPercent,
		Message:     run.ProgressMessage,
		Error:       run.ErrorMessage,
		Review:      run.ReviewReason,
		CreatedAt:   formatTime(run.CreatedAt),
		UpdatedAt:   formatTime(run.UpdatedAt),
		Workspace:   run.WorkspaceRoot(runsRoot),
	}

	artifacts := make(map[string]string)
	addArtifact := func(name, stored string) {
		if stored == "" {
			return
		}
		path := run.ArtifactPath(runsRoot, stored)
		if _, err := os.Stat(path); err == nil {
			artifacts[name] = path
		}
	}
	addArtifact("cleaned", run.CleanedFile)
	addArtifact("features", run.FeaturesFile)
	addArtifact("features-meta", run.FeaturesMetaFile)
	addArtifact("model", run.ModelFile)
	addArtifact("model-meta", run.ModelMetaFile)
	addArtifact("evaluation", run.EvaluationFile)
	addArtifact("insights", run.InsightsFile)
	addArtifact("log", runs.ArtifactRunLog)
	if len(artifacts) > 0 {
		view.Artifacts = artifacts
	}
	return view
}
