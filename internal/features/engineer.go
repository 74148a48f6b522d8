package features

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
)

// Engineer turns a cleaned dataset into the model-ready feature artifact:
// features.csv plus features_meta.json in the run workspace.
type Engineer struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewEngineer constructs the feature engineering stage handler.
func NewEngineer(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Engineer {
	return &Engineer{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "features")}
}

func (e *Engineer) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, e.logger)
	run.InitProgress(runs.StageFeatures, "Preparing feature engineering")
	cleanedPath := run.ArtifactPath(e.cfg.RunsRoot(), run.CleanedFile)
	if err := stage.RequireArtifact("features", cleanedPath, "cleaned dataset"); err != nil {
		return err
	}
	if _, err := stage.LoadPlan("features", run); err != nil {
		return err
	}
	logger.Info("starting feature engineering preparation",
		logging.String("cleaned_file", filepath.Base(cleanedPath)),
	)
	return nil
}

func (e *Engineer) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, e.logger)
	p, err := stage.LoadPlan("features", run)
	if err != nil {
		return err
	}

	e.updateProgress(ctx, run, "Reading cleaned dataset", 10)
	cleanedPath := run.ArtifactPath(e.cfg.RunsRoot(), run.CleanedFile)
	table, err := dataset.Read(cleanedPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "features", "read cleaned dataset",
			fmt.Sprintf("Cannot read %s", cleanedPath), err)
	}

	e.updateProgress(ctx, run, "Fitting feature transforms", 40)
	built, err := Build(table, p)
	if err != nil {
		return services.Wrap(services.ErrValidation, "features", "build features",
			"Feature engineering failed; adjust the plan's features section", err)
	}

	e.updateProgress(ctx, run, "Writing feature artifacts", 85)
	workspace := run.WorkspaceRoot(e.cfg.RunsRoot())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "features", "create workspace",
			fmt.Sprintf("Cannot create run workspace %s", workspace), err)
	}
	featuresPath := run.ArtifactPath(e.cfg.RunsRoot(), runs.ArtifactFeatures)
	if err := dataset.Write(featuresPath, built.Table()); err != nil {
		return services.Wrap(services.ErrTransient, "features", "write artifact",
			fmt.Sprintf("Cannot write %s", featuresPath), err)
	}
	metaPath := run.ArtifactPath(e.cfg.RunsRoot(), runs.ArtifactFeaturesMeta)
	if err := WriteMetadata(metaPath, built.Meta); err != nil {
		return services.Wrap(services.ErrTransient, "features", "write metadata",
			fmt.Sprintf("Cannot write %s", metaPath), err)
	}

	run.FeaturesFile = runs.ArtifactFeatures
	run.FeaturesMetaFile = runs.ArtifactFeaturesMeta
	run.SetProgressComplete(runs.StageFeatures,
		fmt.Sprintf("Engineered %d features over %d rows", len(built.Names), built.Meta.RowCount))

	logger.Info("features engineered",
		logging.Int("feature_count", len(built.Names)),
		logging.Int("row_count", built.Meta.RowCount),
		logging.Int("derived_count", len(built.Meta.Derived)),
		logging.Int("encoded_columns", len(built.Meta.Encoders)),
		logging.String("scaling", built.Meta.Scaling),
		logging.String("selection", built.Meta.Selection.Method),
	)
	return nil
}

func (e *Engineer) HealthCheck(ctx context.Context) stage.Health {
	const name = "features"
	if e.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if e.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (e *Engineer) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, e.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := e.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist feature progress", logging.Error(err))
		return
	}
	*run = copy
}
