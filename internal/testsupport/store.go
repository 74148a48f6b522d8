package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/runs"
)

// MustOpenStore opens a runs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("runs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a pending run for tests using the provided store.
func NewRun(t testing.TB, store *runs.Store, label, sourcePath, planPath string) *runs.Run {
	t.Helper()

	run, err := store.NewRun(context.Background(), label, sourcePath, planPath, "")
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return run
}
