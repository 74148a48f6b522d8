package runs_test

import (
	"context"
	"testing"

	"marquee/internal/runs"
	"marquee/internal/testsupport"
)

func TestNewRunRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.NewRun(ctx, "movies", "/data/movies.csv", "/data/plan.yaml", "abc123")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatalf("expected assigned id, got %d", run.ID)
	}
	if run.Status != runs.StatusPending {
		t.Fatalf("status = %s, want pending", run.Status)
	}

	loaded, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded == nil {
		t.Fatal("run not found")
	}
	if loaded.Label != "movies" || loaded.SourcePath != "/data/movies.csv" ||
		loaded.PlanPath != "/data/plan.yaml" || loaded.Fingerprint != "abc123" {
		t.Fatalf("unexpected run: %+v", loaded)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", loaded)
	}
}

func TestFindByFingerprint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created, err := store.NewRun(ctx, "movies", "/data/movies.csv", "", "fp-1")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	found, err := store.FindByFingerprint(ctx, "fp-1")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("found = %+v, want run %d", found, created.ID)
	}

	missing, err := store.FindByFingerprint(ctx, "fp-unknown")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no match, got %+v", missing)
	}
}

func TestUpdatePersistsArtifactsAndStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	run := testsupport.NewRun(t, store, "movies", "/data/movies.csv", "")

	run.Status = runs.StatusCleaned
	run.CleanedFile = runs.ArtifactCleaned
	run.SetProgressComplete(runs.StageClean, "Cleaned 90 rows")
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded.Status != runs.StatusCleaned {
		t.Fatalf("status = %s, want cleaned", loaded.Status)
	}
	if loaded.CleanedFile != runs.ArtifactCleaned {
		t.Fatalf("cleaned file = %q", loaded.CleanedFile)
	}
	if loaded.ProgressStage != runs.StageClean || loaded.ProgressPercent != 100 {
		t.Fatalf("progress = %q %.0f", loaded.ProgressStage, loaded.ProgressPercent)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewRun(t, store, "first", "/data/a.csv", "")
	second := testsupport.NewRun(t, store, "second", "/data/b.csv", "")

	second.Status = runs.StatusCompleted
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID {
		t.Fatalf("unexpected list order: %+v", all)
	}

	completed, err := store.List(ctx, runs.StatusCompleted)
	if err != nil {
		t.Fatalf("List completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != second.ID {
		t.Fatalf("completed = %+v", completed)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewRun(t, store, "first", "/data/a.csv", "")
	testsupport.NewRun(t, store, "second", "/data/b.csv", "")

	next, err := store.NextForStatuses(ctx, runs.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("next = %+v, want run %d", next, first.ID)
	}

	none, err := store.NextForStatuses(ctx, runs.StatusCompleted)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no match, got %+v", none)
	}
}

func TestRetryRunsRewindsToFailedStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	failed := testsupport.NewRun(t, store, "failed", "/data/a.csv", "")
	failed.ProgressStage = runs.StageTrain
	failed.SetFailed("search failed")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	review := testsupport.NewRun(t, store, "review", "/data/b.csv", "")
	review.ProgressStage = ""
	review.SetReview("schema mismatch")
	if err := store.Update(ctx, review); err != nil {
		t.Fatalf("Update: %v", err)
	}

	healthy := testsupport.NewRun(t, store, "healthy", "/data/c.csv", "")

	retried, err := store.RetryRuns(ctx)
	if err != nil {
		t.Fatalf("RetryRuns: %v", err)
	}
	if retried != 2 {
		t.Fatalf("retried = %d, want 2", retried)
	}

	reloaded, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != runs.StatusEngineered {
		t.Fatalf("failed run rewound to %s, want engineered", reloaded.Status)
	}
	if reloaded.ErrorMessage != "" {
		t.Fatalf("error message not cleared: %q", reloaded.ErrorMessage)
	}

	reloaded, err = store.GetByID(ctx, review.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != runs.StatusPending {
		t.Fatalf("review run rewound to %s, want pending", reloaded.Status)
	}

	reloaded, err = store.GetByID(ctx, healthy.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != runs.StatusPending {
		t.Fatalf("healthy run touched: %s", reloaded.Status)
	}
}

func TestRetryRunsIgnoresNonFailedIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.NewRun(t, store, "movies", "/data/a.csv", "")

	retried, err := store.RetryRuns(ctx, run.ID)
	if err != nil {
		t.Fatalf("RetryRuns: %v", err)
	}
	if retried != 0 {
		t.Fatalf("retried = %d, want 0 for a pending run", retried)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stuck := testsupport.NewRun(t, store, "stuck", "/data/a.csv", "")
	stuck.Status = runs.StatusTraining
	if err := store.Update(ctx, stuck); err != nil {
		t.Fatalf("Update: %v", err)
	}

	idle := testsupport.NewRun(t, store, "idle", "/data/b.csv", "")

	updated, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	reloaded, err := store.GetByID(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != runs.StatusEngineered {
		t.Fatalf("stuck run rewound to %s, want engineered", reloaded.Status)
	}

	reloaded, err = store.GetByID(ctx, idle.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != runs.StatusPending {
		t.Fatalf("idle run touched: %s", reloaded.Status)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewRun(t, store, "a", "/data/a.csv", "")
	done := testsupport.NewRun(t, store, "b", "/data/b.csv", "")
	done.Status = runs.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	busy := testsupport.NewRun(t, store, "c", "/data/c.csv", "")
	busy.Status = runs.StatusCleaning
	if err := store.Update(ctx, busy); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[runs.StatusPending] != 1 || stats[runs.StatusCompleted] != 1 || stats[runs.StatusCleaning] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Processing != 1 || health.Completed != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pending := testsupport.NewRun(t, store, "pending", "/data/a.csv", "")
	done := testsupport.NewRun(t, store, "done", "/data/b.csv", "")
	done.Status = runs.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	broken := testsupport.NewRun(t, store, "broken", "/data/c.csv", "")
	broken.SetFailed("boom")
	if err := store.Update(ctx, broken); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cleared %d completed, want 1", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cleared %d failed, want 1", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cleared %d remaining, want 1", removed)
	}

	gone, err := store.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected empty ledger, found %+v", gone)
	}
}

func TestRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.NewRun(t, store, "movies", "/data/a.csv", "")

	removed, err := store.Remove(ctx, run.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}

	removed, err = store.Remove(ctx, run.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed {
		t.Fatal("expected second removal to report not found")
	}
}
