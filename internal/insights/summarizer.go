package insights

import (
	"context"
	"fmt"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/evaluation"
	"marquee/internal/features"
	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
)

// Summarizer aggregates the evaluation output into grouped descriptive
// findings and writes insights.json.
type Summarizer struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewSummarizer constructs the insight extraction stage handler.
func NewSummarizer(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Summarizer {
	return &Summarizer{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "insights")}
}

func (s *Summarizer) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, s.logger)
	run.InitProgress(runs.StageInsights, "Preparing insight extraction")
	for _, artifact := range []struct {
		path, description string
	}{
		{run.ArtifactPath(s.cfg.RunsRoot(), run.EvaluationFile), "evaluation report"},
		{run.ArtifactPath(s.cfg.RunsRoot(), run.FeaturesMetaFile), "feature metadata"},
		{run.ArtifactPath(s.cfg.RunsRoot(), run.CleanedFile), "cleaned dataset"},
	} {
		if err := stage.RequireArtifact("insights", artifact.path, artifact.description); err != nil {
			return err
		}
	}
	if _, err := stage.LoadPlan("insights", run); err != nil {
		return err
	}
	logger.Info("starting insight preparation")
	return nil
}

func (s *Summarizer) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, s.logger)
	p, err := stage.LoadPlan("insights", run)
	if err != nil {
		return err
	}

	s.updateProgress(ctx, run, "Loading evaluation output", 15)
	eval, err := evaluation.LoadReport(run.ArtifactPath(s.cfg.RunsRoot(), run.EvaluationFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "insights", "load evaluation",
			"Cannot load the evaluation report", err)
	}
	meta, err := features.LoadMetadata(run.ArtifactPath(s.cfg.RunsRoot(), run.FeaturesMetaFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "insights", "load metadata",
			"Cannot load the feature metadata", err)
	}
	cleaned, err := dataset.Read(run.ArtifactPath(s.cfg.RunsRoot(), run.CleanedFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "insights", "load cleaned dataset",
			"Cannot load the cleaned dataset", err)
	}

	s.updateProgress(ctx, run, "Aggregating groupings", 55)
	report, err := Summarize(eval, meta, cleaned, p.Insights.TopImportances)
	if err != nil {
		return services.Wrap(services.ErrValidation, "insights", "aggregate",
			"Insight aggregation failed; check the plan's group_by columns", err)
	}

	s.updateProgress(ctx, run, "Writing insights report", 85)
	reportPath := run.ArtifactPath(s.cfg.RunsRoot(), runs.ArtifactInsights)
	if err := WriteReport(reportPath, report); err != nil {
		return services.Wrap(services.ErrTransient, "insights", "write artifact",
			fmt.Sprintf("Cannot write %s", reportPath), err)
	}

	run.InsightsFile = runs.ArtifactInsights
	run.SetProgressComplete(runs.StageInsights,
		fmt.Sprintf("Summarized %d groupings over %d holdout rows", len(report.Groupings), report.HoldoutRows))

	logger.Info("insights extracted",
		logging.Int("grouping_count", len(report.Groupings)),
		logging.Int("holdout_rows", report.HoldoutRows),
		logging.Int("top_importances", len(report.TopImportances)),
	)
	return nil
}

func (s *Summarizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "insights"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if s.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (s *Summarizer) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := s.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist insight progress", logging.Error(err))
		return
	}
	*run = copy
}
