package features_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/features"
	"marquee/internal/logging"
	"marquee/internal/runs"
	"marquee/internal/testsupport"
)

const engineerPlanYAML = `dataset:
  label: movies
  id_column: id
  target: revenue
features:
  encode:
    genre: onehot
  scaling: standard
training:
  split_ratio: 0.8
  metric: mse
  mode: min
  candidates:
    - family: linear
insights:
  group_by:
    - genre
`

func TestEngineerExecuteWritesArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	planPath := testsupport.WriteFile(t, filepath.Join(base, "plan.yaml"), engineerPlanYAML)
	csvPath := testsupport.WriteFile(t, filepath.Join(base, "movies.csv"), testsupport.CSV(
		"id,genre,budget,revenue",
		"1,Drama,100,500",
		"2,Action,200,900",
		"3,Drama,300,700",
	))

	run := testsupport.NewRun(t, store, "movies", csvPath, planPath)

	// Stand in for the cleaning stage: the cleaned artifact is the source
	// file copied into the workspace.
	workspace := run.WorkspaceRoot(cfg.RunsRoot())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	payload, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workspace, runs.ArtifactCleaned), payload, 0o644); err != nil {
		t.Fatalf("write cleaned artifact: %v", err)
	}
	run.CleanedFile = runs.ArtifactCleaned

	handler := features.NewEngineer(cfg, store, logging.NewNop())
	ctx := context.Background()
	if err := handler.Prepare(ctx, run); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if err := handler.Execute(ctx, run); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if run.FeaturesFile != runs.ArtifactFeatures || run.FeaturesMetaFile != runs.ArtifactFeaturesMeta {
		t.Fatalf("artifact names not recorded: %q %q", run.FeaturesFile, run.FeaturesMetaFile)
	}

	meta, err := features.LoadMetadata(run.ArtifactPath(cfg.RunsRoot(), run.FeaturesMetaFile))
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	table, err := dataset.Read(run.ArtifactPath(cfg.RunsRoot(), run.FeaturesFile))
	if err != nil {
		t.Fatalf("read features artifact: %v", err)
	}
	if table.RowCount() != 3 {
		t.Fatalf("feature rows = %d, want 3", table.RowCount())
	}
	// id + features + target
	if table.ColumnCount() != len(meta.Features)+2 {
		t.Fatalf("feature columns = %d, want %d", table.ColumnCount(), len(meta.Features)+2)
	}
	if len(meta.Encoders) != 1 || meta.Encoders[0].Column != "genre" {
		t.Fatalf("encoders = %+v", meta.Encoders)
	}
}

func TestEngineerPrepareRequiresCleanedArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	base := testsupport.BaseDir(cfg)
	planPath := testsupport.WriteFile(t, filepath.Join(base, "plan.yaml"), engineerPlanYAML)
	csvPath := testsupport.WriteFile(t, filepath.Join(base, "movies.csv"), testsupport.CSV(
		"id,genre,budget,revenue",
		"1,Drama,100,500",
	))
	run := testsupport.NewRun(t, store, "movies", csvPath, planPath)

	handler := features.NewEngineer(cfg, store, logging.NewNop())
	if err := handler.Prepare(context.Background(), run); err == nil {
		t.Fatalf("expected Prepare to fail without a cleaned artifact")
	}
}
