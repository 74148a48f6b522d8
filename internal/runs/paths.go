package runs

import (
	"fmt"
	"path/filepath"
	"strings"

	"marquee/internal/textutil"
)

// WorkspaceRoot returns the per-run artifact directory rooted at base. The
// sanitized dataset label keeps directories readable; the run id keeps them
// collision-free.
func (r Run) WorkspaceRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := textutil.SanitizeSegment(r.Label)
	if segment == "" {
		segment = fmt.Sprintf("run-%d", r.ID)
	} else {
		segment = fmt.Sprintf("%s-%d", segment, r.ID)
	}
	return filepath.Join(base, segment)
}

// Canonical artifact filenames inside a run workspace. The store persists
// these bare names; ArtifactPath resolves them so moving the workspace root
// never strands a run.
const (
	ArtifactCleaned      = "cleaned.csv"
	ArtifactFeatures     = "features.csv"
	ArtifactFeaturesMeta = "features_meta.json"
	ArtifactModel        = "model.gob"
	ArtifactModelMeta    = "model_meta.json"
	ArtifactEvaluation   = "evaluation.json"
	ArtifactInsights     = "insights.json"
	ArtifactRunLog       = "run.log"
)

// ArtifactPath resolves a stored artifact reference against the run
// workspace under base. Absolute references pass through unchanged.
func (r Run) ArtifactPath(base, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.WorkspaceRoot(base), name)
}
