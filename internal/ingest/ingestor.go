package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
)

// Ingestor validates a raw dataset and records its profile on the run. It
// writes no dataset artifact; cleaning re-reads the source file.
type Ingestor struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewIngestor constructs the ingestion stage handler.
func NewIngestor(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "ingestion")}
}

func (i *Ingestor) Prepare(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, i.logger)
	run.InitProgress(runs.StageIngest, "Preparing dataset validation")
	if err := stage.RequireArtifact("ingestion", run.SourcePath, "source dataset"); err != nil {
		return err
	}
	if _, err := stage.LoadPlan("ingestion", run); err != nil {
		return err
	}
	logger.Info("starting ingestion preparation",
		logging.String("dataset", filepath.Base(run.SourcePath)),
	)
	return nil
}

func (i *Ingestor) Execute(ctx context.Context, run *runs.Run) error {
	logger := logging.WithContext(ctx, i.logger)
	p, err := stage.LoadPlan("ingestion", run)
	if err != nil {
		return err
	}

	i.updateProgress(ctx, run, "Reading dataset", 10)
	table, issues, err := dataset.ReadTolerant(run.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "ingestion", "read dataset",
				fmt.Sprintf("Source dataset missing at %s", run.SourcePath), err)
		}
		return services.Wrap(services.ErrFormat, "ingestion", "read dataset",
			fmt.Sprintf("Cannot parse %s", run.SourcePath), err)
	}
	if len(issues) > 0 {
		logging.WarnWithContext(logger, "dataset contains malformed rows", "malformed_rows",
			logging.Int("dropped_rows", len(issues)),
			logging.Int("first_bad_line", issues[0].Line),
			logging.String(logging.FieldErrorHint, "rows are dropped under the plan's bad-row policy"),
		)
	}

	i.updateProgress(ctx, run, "Validating schema", 40)
	result, err := Validate(table, issues, p)
	if err != nil {
		return err
	}

	i.updateProgress(ctx, run, "Profiling columns", 75)
	fingerprint, err := dataset.Fingerprint(run.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "ingestion", "fingerprint dataset",
			fmt.Sprintf("Cannot fingerprint %s", run.SourcePath), err)
	}
	profileJSON, err := result.Profile.EncodeJSON()
	if err != nil {
		return services.Wrap(services.ErrTransient, "ingestion", "encode profile",
			"Cannot serialize the dataset profile", err)
	}

	run.Fingerprint = fingerprint
	run.ProfileJSON = profileJSON
	run.SetProgressComplete(runs.StageIngest, fmt.Sprintf("Validated %d rows", table.RowCount()))

	logger.Info("dataset validated",
		logging.String("dataset", filepath.Base(run.SourcePath)),
		logging.Int("row_count", table.RowCount()),
		logging.Int("column_count", table.ColumnCount()),
		logging.Int("dropped_rows", result.DroppedRows),
		logging.String("fingerprint", fingerprint),
	)
	return nil
}

func (i *Ingestor) HealthCheck(ctx context.Context) stage.Health {
	const name = "ingestion"
	if i.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if i.store == nil {
		return stage.Unhealthy(name, "run store unavailable")
	}
	return stage.Healthy(name)
}

func (i *Ingestor) updateProgress(ctx context.Context, run *runs.Run, message string, percent float64) {
	logger := logging.WithContext(ctx, i.logger)
	copy := *run
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := i.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist ingestion progress", logging.Error(err))
		return
	}
	*run = copy
}
