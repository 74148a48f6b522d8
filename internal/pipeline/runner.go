package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
)

// Runner drives one run through its remaining stages strictly sequentially:
// transition to the processing status, Prepare, persist, Execute, persist
// the done status, advance. There is no retry orchestration; a failed stage
// marks the run failed or review and returns to the operator.
type Runner struct {
	cfg    *config.Config
	store  *runs.Store
	logger *slog.Logger
	stages []pipelineStage
}

// NewRunner constructs a runner with the default stage wiring.
func NewRunner(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		store:  store,
		logger: logger,
		stages: defaultStages(cfg, store, logger),
	}
}

// newRunnerWithStages is the test seam for stubbed stage handlers.
func newRunnerWithStages(cfg *config.Config, store *runs.Store, logger *slog.Logger, stages []pipelineStage) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, logger: logger, stages: stages}
}

// Run advances the run from its current status until it completes, fails,
// or finishes the stage named by stopAfter (empty means run to completion).
func (r *Runner) Run(ctx context.Context, run *runs.Run, stopAfter string) error {
	stopAfter = strings.ToLower(strings.TrimSpace(stopAfter))
	if stopAfter != "" {
		if _, ok := runs.StageStartStatus(stopAfter); !ok {
			return services.Wrap(services.ErrConfiguration, "pipeline", "resolve stage",
				fmt.Sprintf("Unknown stage %q", stopAfter), nil)
		}
	}

	capture, captureErr := r.openRunCapture(run)
	if captureErr != nil {
		r.logger.Warn("run log capture unavailable", logging.Error(captureErr))
	}
	logger := r.logger
	if capture != nil {
		logger = logging.TeeLogger(r.logger, capture.Handler())
		defer capture.Close()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, ok := r.stageForStatus(run.Status)
		if !ok {
			if runs.IsTerminal(run.Status) {
				return nil
			}
			return services.Wrap(services.ErrValidation, "pipeline", "resolve stage",
				fmt.Sprintf("No stage accepts status %q; reset the run with `marquee runs retry`", run.Status), nil)
		}
		if err := r.executeStage(ctx, logger, current, run); err != nil {
			return err
		}
		if current.name == stopAfter || runs.IsTerminal(run.Status) {
			return nil
		}
	}
}

// Step executes exactly one stage. The run must be at the stage's start
// status.
func (r *Runner) Step(ctx context.Context, run *runs.Run, stageName string) error {
	stageName = strings.ToLower(strings.TrimSpace(stageName))
	start, ok := runs.StageStartStatus(stageName)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "pipeline", "resolve stage",
			fmt.Sprintf("Unknown stage %q", stageName), nil)
	}
	if run.Status != start {
		return services.Wrap(services.ErrValidation, "pipeline", "resolve stage",
			fmt.Sprintf("Run %d is %s; stage %s starts from %s", run.ID, run.Status, stageName, start), nil)
	}
	return r.Run(ctx, run, stageName)
}

func (r *Runner) stageForStatus(status runs.Status) (pipelineStage, bool) {
	for _, s := range r.stages {
		if s.startStatus == status {
			return s, true
		}
	}
	return pipelineStage{}, false
}

func (r *Runner) executeStage(ctx context.Context, logger *slog.Logger, current pipelineStage, run *runs.Run) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRunID(ctx, run.ID)
	stageCtx = services.WithStage(stageCtx, current.name)
	stageCtx = services.WithRequestID(stageCtx, requestID)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(current.processingStatus)),
		logging.String("dataset", strings.TrimSpace(run.Label)),
	)

	run.Status = current.processingStatus
	if err := r.store.Update(stageCtx, run); err != nil {
		wrapped := fmt.Errorf("persist stage transition: %w", err)
		stageLogger.Error("failed to transition run to processing", logging.Error(wrapped))
		return wrapped
	}

	if err := current.handler.Prepare(stageCtx, run); err != nil {
		r.handleStageFailure(stageCtx, stageLogger, current.name, run, err)
		return err
	}
	if err := r.store.Update(stageCtx, run); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		return wrapped
	}

	if err := current.handler.Execute(stageCtx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted")
			return err
		}
		r.handleStageFailure(stageCtx, stageLogger, current.name, run, err)
		return err
	}

	if run.Status == current.processingStatus || run.Status == "" {
		run.Status = current.doneStatus
	}
	if err := r.store.Update(stageCtx, run); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(run.Status)),
		logging.String("progress_message", strings.TrimSpace(run.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (r *Runner) handleStageFailure(ctx context.Context, logger *slog.Logger, stageName string, run *runs.Run, cause error) {
	status := services.FailureStatus(cause)
	if status == runs.StatusReview {
		run.SetReview(cause.Error())
	} else {
		run.SetFailed(cause.Error())
	}
	run.ProgressStage = stageName
	logging.ErrorWithContext(logger, "stage failed", "stage_failure",
		logging.String(logging.FieldStage, stageName),
		logging.String("failure_status", string(status)),
		logging.Error(cause),
	)
	if err := r.store.Update(ctx, run); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
}

// HealthChecks reports the readiness of every configured stage.
func (r *Runner) HealthChecks(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(r.stages))
	for _, s := range r.stages {
		checks = append(checks, s.handler.HealthCheck(ctx))
	}
	return checks
}

// openRunCapture tees the run's log records into run.log inside its
// workspace. Capture failures degrade to console-only logging.
func (r *Runner) openRunCapture(run *runs.Run) (*logging.RunCapture, error) {
	workspace := run.WorkspaceRoot(r.cfg.RunsRoot())
	if workspace == "" {
		return nil, fmt.Errorf("run %d has no workspace root", run.ID)
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, err
	}
	return logging.NewRunCapture(run.ArtifactPath(r.cfg.RunsRoot(), runs.ArtifactRunLog))
}
