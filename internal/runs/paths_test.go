package runs_test

import (
	"path/filepath"
	"testing"

	"marquee/internal/runs"
)

func TestWorkspaceRootSanitizesLabel(t *testing.T) {
	run := runs.Run{ID: 7, Label: "Box Office 2015"}
	got := run.WorkspaceRoot("/work/runs")
	want := filepath.Join("/work/runs", "box-office-2015-7")
	if got != want {
		t.Fatalf("WorkspaceRoot = %q, want %q", got, want)
	}

	unnamed := runs.Run{ID: 3}
	if got := unnamed.WorkspaceRoot("/work/runs"); got != filepath.Join("/work/runs", "run-3") {
		t.Fatalf("WorkspaceRoot = %q", got)
	}

	if got := run.WorkspaceRoot(""); got != "" {
		t.Fatalf("WorkspaceRoot with empty base = %q", got)
	}
}

func TestArtifactPathResolvesBareNames(t *testing.T) {
	run := runs.Run{ID: 7, Label: "movies"}

	got := run.ArtifactPath("/work/runs", runs.ArtifactCleaned)
	want := filepath.Join("/work/runs", "movies-7", "cleaned.csv")
	if got != want {
		t.Fatalf("ArtifactPath = %q, want %q", got, want)
	}

	abs := "/elsewhere/model.gob"
	if got := run.ArtifactPath("/work/runs", abs); got != abs {
		t.Fatalf("absolute reference rewritten: %q", got)
	}

	if got := run.ArtifactPath("/work/runs", ""); got != "" {
		t.Fatalf("empty name resolved to %q", got)
	}
}
