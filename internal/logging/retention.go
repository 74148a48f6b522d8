package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneRunCaptures removes per-run capture files older than retainDays from
// the workspaces under runsRoot. Only the capture file named captureName is
// touched; the run's artifacts stay. retainDays <= 0 disables pruning.
// Returns the number of files removed.
func PruneRunCaptures(logger *slog.Logger, runsRoot, captureName string, retainDays int) int {
	runsRoot = strings.TrimSpace(runsRoot)
	if retainDays <= 0 || runsRoot == "" || captureName == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retainDays)

	entries, err := os.ReadDir(runsRoot)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(runsRoot, entry.Name(), captureName)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "run log prune failed; file remains", "run_log_prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check workspace permissions"),
				String(FieldImpact, "aged run log stays on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("run log pruned", String("path", path))
		}
	}
	return removed
}
