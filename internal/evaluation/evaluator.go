package evaluation

import (
	"context"
	"fmt"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/features"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
	"marquee/internal/training"
)

// Evaluator scores the persisted model against the recorded holdout
// partition and writes evaluation.json.
type Evaluator struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewEvaluator constructs the evaluation stage handler.
func NewEvaluator(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Evaluator {
	return &Evaluator{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "evaluation")}
}

func (e *Evaluator) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, e.logger)
	run.InitProgress(runs.StageEvaluate, "Preparing model evaluation")
	for _, artifact := range []struct {
		path, description string
	}{
		{run.ArtifactPath(e.cfg.RunsRoot(), run.ModelFile), "model artifact"},
		{run.ArtifactPath(e.cfg.RunsRoot(), run.ModelMetaFile), "model metadata"},
		{run.ArtifactPath(e.cfg.RunsRoot(), run.FeaturesFile), "feature dataset"},
		{run.ArtifactPath(e.cfg.RunsRoot(), run.FeaturesMetaFile), "feature metadata"},
	} {
		if err := stage.RequireArtifact("evaluation", artifact.path, artifact.description); err != nil {
			return err
		}
	}
	logger.Info("starting evaluation preparation")
	return nil
}

func (e *Evaluator) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, e.logger)

	e.updateProgress(ctx, run, "Loading model and holdout partition", 15)
	regressor, err := model.Load(run.ArtifactPath(e.cfg.RunsRoot(), run.ModelFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "evaluation", "load model",
			"Cannot load the persisted model", err)
	}
	trainMeta, err := training.LoadMetadata(run.ArtifactPath(e.cfg.RunsRoot(), run.ModelMetaFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "evaluation", "load model metadata",
			"Cannot load the model metadata", err)
	}
	featureMeta, err := features.LoadMetadata(run.ArtifactPath(e.cfg.RunsRoot(), run.FeaturesMetaFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "evaluation", "load feature metadata",
			"Cannot load the feature metadata", err)
	}
	built, err := features.LoadDataset(run.ArtifactPath(e.cfg.RunsRoot(), run.FeaturesFile), featureMeta)
	if err != nil {
		return services.Wrap(services.ErrValidation, "evaluation", "load features",
			"Feature dataset does not match its metadata; rerun the features stage", err)
	}

	e.updateProgress(ctx, run, "Scoring holdout partition", 55)
	report, err := Assess(regressor, built, trainMeta.Holdout)
	if err != nil {
		return services.Wrap(services.ErrValidation, "evaluation", "score holdout",
			"Evaluation failed over the recorded holdout partition", err)
	}

	e.updateProgress(ctx, run, "Writing evaluation report", 85)
	reportPath := run.ArtifactPath(e.cfg.RunsRoot(), runs.ArtifactEvaluation)
	if err := WriteReport(reportPath, report); err != nil {
		return services.Wrap(services.ErrTransient, "evaluation", "write artifact",
			fmt.Sprintf("Cannot write %s", reportPath), err)
	}

	run.EvaluationFile = runs.ArtifactEvaluation
	run.SetProgressComplete(runs.StageEvaluate,
		fmt.Sprintf("Evaluated %d holdout rows (RMSE %.4g)", report.HoldoutRows, report.Metrics.RMSE))

	logger.Info("model evaluated",
		logging.String("family", report.Family),
		logging.Int("holdout_rows", report.HoldoutRows),
		logging.Float64("mse", report.Metrics.MSE),
		logging.Float64("rmse", report.Metrics.RMSE),
		logging.Float64("mae", report.Metrics.MAE),
		logging.Float64("r2", report.Metrics.R2),
	)
	return nil
}

func (e *Evaluator) HealthCheck(ctx context.Context) stage.Health {
	const name = "evaluation"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if e.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (e *Evaluator) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, e.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := e.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist evaluation progress", logging.Error(err))
		return
	}
	*run = copy
}
