package cleaning

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

// Cleaner applies the plan's cleaning policies and writes cleaned.csv into
// the run workspace.
type Cleaner struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewCleaner constructs the cleaning stage handler.
func NewCleaner(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Cleaner {
	return &Cleaner{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "cleaning")}
}

func (c *Cleaner) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, c.logger)
	run.InitProgress(runs.StageClean, "Preparing dataset cleaning")
	if err := stage.RequireArtifact("cleaning", run.SourcePath, "source dataset"); err != nil {
		return err
	}
	if _, err := stage.LoadPlan("cleaning", run); err != nil {
		return err
	}
	logger.Info("starting cleaning preparation",
		logging.String("dataset", filepath.Base(run.SourcePath)),
	)
	return nil
}

func (c *Cleaner) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, c.logger)
	p, err := stage.LoadPlan("cleaning", run)
	if err != nil {
		return err
	}

	c.updateProgress(ctx, run, "Reading validated dataset", 10)
	// Malformed rows were already policed by ingestion; re-reading
	// tolerantly drops the same rows again.
	table, issues, err := dataset.ReadTolerant(run.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "cleaning", "read dataset",
			fmt.Sprintf("Cannot re-read %s", run.SourcePath), err)
	}
	if len(issues) > 0 {
		logger.Debug("re-dropped malformed rows", logging.Int("dropped_rows", len(issues)))
	}

	c.updateProgress(ctx, run, "Applying cleaning policies", 40)
	outcome, err := Apply(table, p)
	if err != nil {
		return err
	}

	c.updateProgress(ctx, run, "Writing cleaned dataset", 85)
	workspace := run.WorkspaceRoot(c.cfg.RunsRoot())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "cleaning", "create workspace",
			fmt.Sprintf("Cannot create run workspace %s", workspace), err)
	}
	cleanedPath := filepath.Join(workspace, runs.ArtifactCleaned)
	if err := dataset.Write(cleanedPath, table); err != nil {
		return services.Wrap(services.ErrTransient, "cleaning", "write artifact",
			fmt.Sprintf("Cannot write %s", cleanedPath), err)
	}

	run.CleanedFile = runs.ArtifactCleaned
	run.SetProgressComplete(runs.StageClean,
		fmt.Sprintf("Cleaned %d rows down to %d", outcome.RowsIn, outcome.RowsOut))

	logger.Info("dataset cleaned",
		logging.Int("row_count", outcome.RowsOut),
		logging.Int("dropped_rows", outcome.DroppedMissing+outcome.DroppedDuplicates+outcome.DroppedOutliers),
		logging.Int("imputed_cells", outcome.ImputedCells),
		logging.Int("clipped_cells", outcome.ClippedCells),
	)
	for _, fence := range outcome.Fences {
		logger.Debug("fitted outlier fence",
			logging.String("column", fence.Column),
			logging.Float64("lower", fence.Lower),
			logging.Float64("upper", fence.Upper),
		)
	}
	return nil
}

func (c *Cleaner) HealthCheck(ctx context.Context) stage.Health {
	const name = "cleaning"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if c.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (c *Cleaner) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, c.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := c.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist cleaning progress", logging.Error(err))
		return
	}
	*run = copy
}
