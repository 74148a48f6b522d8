package pipeline

import (
	"context"
	"testing"

	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/services"
	"marquee/internal/stage"
	"marquee/internal/testsupport"
)

type stubHandler struct {
	name       string
	executed   *[]string
	prepareErr error
	executeErr error
}

func (h *stubHandler) Prepare(ctx context.Context, run *runs.Run) error {
	return h.prepareErr
}

func (h *stubHandler) Execute(ctx context.Context, run *runs.Run) error {
	if h.executed != nil {
		*h.executed = append(*h.executed, h.name)
	}
	return h.executeErr
}

func (h *stubHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(h.name)
}

func stubStages(executed *[]string, overrides map[string]stage.Handler) []pipelineStage {
	names := runs.StageNames()
	transitions := []struct {
		start, processing, done runs.Status
	}{
		{runs.StatusPending, runs.StatusIngesting, runs.StatusIngested},
		{runs.StatusIngested, runs.StatusCleaning, runs.StatusCleaned},
		{runs.StatusCleaned, runs.StatusEngineering, runs.StatusEngineered},
		{runs.StatusEngineered, runs.StatusTraining, runs.StatusTrained},
		{runs.StatusTrained, runs.StatusEvaluating, runs.StatusEvaluated},
		{runs.StatusEvaluated, runs.StatusSummarizing, runs.StatusCompleted},
	}
	stages := make([]pipelineStage, len(names))
	for i, name := range names {
		var handler stage.Handler = &stubHandler{name: name, executed: executed}
		if override, ok := overrides[name]; ok {
			handler = override
		}
		stages[i] = pipelineStage{
			name:             name,
			handler:          handler,
			startStatus:      transitions[i].start,
			processingStatus: transitions[i].processing,
			doneStatus:       transitions[i].done,
		}
	}
	return stages
}

func TestRunnerAdvancesToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")

	var executed []string
	runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(&executed, nil))

	if err := runner.Run(context.Background(), run, ""); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if run.Status != runs.StatusCompleted {
		t.Fatalf("status = %s, want completed", run.Status)
	}
	want := runs.StageNames()
	if len(executed) != len(want) {
		t.Fatalf("executed %v, want all six stages", executed)
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Fatalf("stage order %v, want %v", executed, want)
		}
	}

	persisted, err := store.GetByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if persisted.Status != runs.StatusCompleted {
		t.Fatalf("persisted status = %s, want completed", persisted.Status)
	}
}

func TestRunnerStopsAfterRequestedStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")

	var executed []string
	runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(&executed, nil))

	if err := runner.Run(context.Background(), run, runs.StageClean); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if run.Status != runs.StatusCleaned {
		t.Fatalf("status = %s, want cleaned", run.Status)
	}
	if len(executed) != 2 {
		t.Fatalf("executed %v, want ingest and clean only", executed)
	}
}

func TestRunnerResumesFromRecordedStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")

	// Simulate a prior invocation that committed through cleaning.
	run.Status = runs.StatusCleaned
	if err := store.Update(context.Background(), run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var executed []string
	runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(&executed, nil))

	if err := runner.Run(context.Background(), run, ""); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []string{runs.StageFeatures, runs.StageTrain, runs.StageEvaluate, runs.StageInsights}
	if len(executed) != len(want) {
		t.Fatalf("executed %v, want %v", executed, want)
	}
	for i := range want {
		if executed[i] != want[i] {
			t.Fatalf("executed %v, want %v", executed, want)
		}
	}
}

func TestRunnerRoutesFailuresByTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status runs.Status
	}{
		{"validation", services.Wrap(services.ErrValidation, "cleaning", "verify", "bad", nil), runs.StatusReview},
		{"transient", services.Wrap(services.ErrTransient, "cleaning", "write", "io", nil), runs.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			store := testsupport.MustOpenStore(t, cfg)
			run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")
			run.Status = runs.StatusIngested
			if err := store.Update(context.Background(), run); err != nil {
				t.Fatalf("Update: %v", err)
			}

			overrides := map[string]stage.Handler{
				runs.StageClean: &stubHandler{name: runs.StageClean, executeErr: tc.err},
			}
			runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(nil, overrides))

			if err := runner.Run(context.Background(), run, ""); err == nil {
				t.Fatalf("expected stage error to surface")
			}
			if run.Status != tc.status {
				t.Fatalf("status = %s, want %s", run.Status, tc.status)
			}
			persisted, err := store.GetByID(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if persisted.Status != tc.status {
				t.Fatalf("persisted status = %s, want %s", persisted.Status, tc.status)
			}
			if persisted.ErrorMessage == "" {
				t.Fatalf("error message not recorded")
			}
		})
	}
}

func TestRunnerStepRequiresStartStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")

	runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(nil, nil))
	if err := runner.Step(context.Background(), run, runs.StageTrain); err == nil {
		t.Fatalf("expected Step to reject a pending run for the train stage")
	}

	var executed []string
	runner = newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(&executed, nil))
	if err := runner.Step(context.Background(), run, runs.StageIngest); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if run.Status != runs.StatusIngested {
		t.Fatalf("status = %s, want ingested", run.Status)
	}
	if len(executed) != 1 || executed[0] != runs.StageIngest {
		t.Fatalf("executed %v, want single ingest", executed)
	}
}

func TestRunnerRejectsUnknownStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, "movies", "/tmp/movies.csv", "")

	runner := newRunnerWithStages(cfg, store, logging.NewNop(), stubStages(nil, nil))
	if err := runner.Run(context.Background(), run, "deploy"); err == nil {
		t.Fatalf("expected error for unknown stop stage")
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.LockTimeout = 1

	release, err := AcquireLock(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AcquireLock(ctx, cfg); err == nil {
		t.Fatalf("expected second acquire to fail while the lock is held")
	}
}
