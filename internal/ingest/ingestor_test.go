package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/ingest"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/testsupport"
)

const testPlanYAML = `dataset:
  label: movies
  id_column: id
  target: revenue
  required:
    - budget
training:
  split_ratio: 0.8
  metric: mse
  mode: min
  candidates:
    - family: linear
`

func TestIngestorExecuteRecordsProfile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	planPath := testsupport.WriteFile(t, filepath.Join(base, "plan.yaml"), testPlanYAML)
	csvPath := testsupport.WriteFile(t, filepath.Join(base, "movies.csv"), testsupport.CSV(
		"id,title,budget,revenue",
		"1,Heat,60000000,187000000",
		"2,Ronin,55000000,70000000",
		"3,Leon,16000000,45000000",
	))

	run := testsupport.NewRun(t, store, "movies", csvPath, planPath)
	handler := ingest.NewIngestor(cfg, store, logging.NewNop())

	ctx := context.Background()
	if err := handler.Prepare(ctx, run); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if err := handler.Execute(ctx, run); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(run.Fingerprint) != 64 {
		t.Fatalf("fingerprint %q is not a sha256 hex digest", run.Fingerprint)
	}
	profile, err := dataset.DecodeProfile(run.ProfileJSON)
	if err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.RowCount != 3 {
		t.Fatalf("profile row count = %d, want 3", profile.RowCount)
	}
	if run.ProgressPercent != 100 {
		t.Fatalf("progress percent = %v, want 100", run.ProgressPercent)
	}
}

func TestIngestorExecuteDropsMalformedRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	planPath := testsupport.WriteFile(t, filepath.Join(base, "plan.yaml"), testPlanYAML)
	csvPath := testsupport.WriteFile(t, filepath.Join(base, "movies.csv"), testsupport.CSV(
		"id,title,budget,revenue",
		"1,Heat,60000000,187000000",
		"2,Ronin,55000000",
		"3,Leon,16000000,45000000",
	))

	run := testsupport.NewRun(t, store, "movies", csvPath, planPath)
	handler := ingest.NewIngestor(cfg, store, logging.NewNop())

	if err := handler.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	profile, err := dataset.DecodeProfile(run.ProfileJSON)
	if err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.RowCount != 2 {
		t.Fatalf("profile row count = %d, want 2", profile.RowCount)
	}
	if profile.DroppedRows != 1 {
		t.Fatalf("profile dropped rows = %d, want 1", profile.DroppedRows)
	}
}

func TestIngestorPrepareRequiresSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	planPath := testsupport.WriteFile(t, filepath.Join(base, "plan.yaml"), testPlanYAML)
	run := testsupport.NewRun(t, store, "movies", filepath.Join(base, "absent.csv"), planPath)

	handler := ingest.NewIngestor(cfg, store, logging.NewNop())
	err := handler.Prepare(context.Background(), run)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing source, got %v", err)
	}
}

func TestIngestorHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health := ingest.NewIngestor(cfg, store, logging.NewNop()).HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected healthy ingestor, got %+v", health)
	}
	broken := ingest.NewIngestor(nil, store, logging.NewNop()).HealthCheck(context.Background())
	if broken.Ready {
		t.Fatal("expected unhealthy ingestor without configuration")
	}
}
