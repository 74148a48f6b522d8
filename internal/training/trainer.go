package training

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/features"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
)

// Trainer runs the candidate search over the engineered features and
// persists the winning model as model.gob plus model_meta.json.
type Trainer struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewTrainer constructs the training stage handler.
func NewTrainer(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Trainer {
	return &Trainer{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "training")}
}

func (t *Trainer) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, t.logger)
	run.InitProgress(runs.StageTrain, "Preparing model training")
	featuresPath := run.ArtifactPath(t.cfg.RunsRoot(), run.FeaturesFile)
	if err := stage.RequireArtifact("training", featuresPath, "feature dataset"); err != nil {
		return err
	}
	metaPath := run.ArtifactPath(t.cfg.RunsRoot(), run.FeaturesMetaFile)
	if err := stage.RequireArtifact("training", metaPath, "feature metadata"); err != nil {
		return err
	}
	p, err := stage.LoadPlan("training", run)
	if err != nil {
		return err
	}
	logger.Info("starting training preparation",
		logging.Int("candidate_count", len(p.Training.Candidates)),
		logging.String("metric", p.Training.Metric),
		logging.String("mode", p.Training.Mode),
	)
	return nil
}

func (t *Trainer) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, t.logger)
	p, err := stage.LoadPlan("training", run)
	if err != nil {
		return err
	}

	t.updateProgress(ctx, run, "Loading feature dataset", 10)
	meta, err := features.LoadMetadata(run.ArtifactPath(t.cfg.RunsRoot(), run.FeaturesMetaFile))
	if err != nil {
		return services.Wrap(services.ErrTransient, "training", "load metadata",
			"Cannot load the feature metadata", err)
	}
	built, err := features.LoadDataset(run.ArtifactPath(t.cfg.RunsRoot(), run.FeaturesFile), meta)
	if err != nil {
		return services.Wrap(services.ErrValidation, "training", "load features",
			"Feature dataset does not match its metadata; rerun the features stage", err)
	}

	t.updateProgress(ctx, run, "Cross-validating candidates", 35)
	outcome, err := Train(built, p.Training, logger)
	if err != nil {
		return services.Wrap(services.ErrConvergence, "training", "select model",
			"No candidate model could be fit; revise the plan's training section", err)
	}

	t.updateProgress(ctx, run, "Persisting model artifact", 85)
	workspace := run.WorkspaceRoot(t.cfg.RunsRoot())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "training", "create workspace",
			fmt.Sprintf("Cannot create run workspace %s", workspace), err)
	}
	modelPath := run.ArtifactPath(t.cfg.RunsRoot(), runs.ArtifactModel)
	if err := model.Save(modelPath, outcome.Model); err != nil {
		return services.Wrap(services.ErrTransient, "training", "write model",
			fmt.Sprintf("Cannot write %s", modelPath), err)
	}
	metaPath := run.ArtifactPath(t.cfg.RunsRoot(), runs.ArtifactModelMeta)
	if err := WriteMetadata(metaPath, outcome.Meta); err != nil {
		return services.Wrap(services.ErrTransient, "training", "write metadata",
			fmt.Sprintf("Cannot write %s", metaPath), err)
	}

	run.ModelFile = runs.ArtifactModel
	run.ModelMetaFile = runs.ArtifactModelMeta
	run.SetProgressComplete(runs.StageTrain,
		fmt.Sprintf("Selected %s (%s %.4g)", outcome.Meta.Family, outcome.Meta.Metric, outcome.Meta.Score))

	excluded := 0
	for _, result := range outcome.Meta.Candidates {
		if result.Excluded {
			excluded++
		}
	}
	logger.Info("model trained",
		logging.String("family", outcome.Meta.Family),
		logging.Any("params", outcome.Meta.Params),
		logging.String("metric", outcome.Meta.Metric),
		logging.Float64("score", outcome.Meta.Score),
		logging.Int("candidates_evaluated", len(outcome.Meta.Candidates)),
		logging.Int("candidates_excluded", excluded),
		logging.Int("train_rows", outcome.Meta.TrainRows),
		logging.Int("holdout_rows", outcome.Meta.HoldoutRows),
	)
	return nil
}

func (t *Trainer) HealthCheck(ctx context.Context) stage.Health {
	const name = "training"
	if t.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if t.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (t *Trainer) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, t.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := t.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist training progress", logging.Error(err))
		return
	}
	*run = copy
}
