package runs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusPending     Status = "pending"
	StatusIngesting   Status = "ingesting"
	StatusIngested    Status = "ingested"
	StatusCleaning    Status = "cleaning"
	StatusCleaned     Status = "cleaned"
	StatusEngineering Status = "engineering"
	StatusEngineered  Status = "engineered"
	StatusTraining    Status = "training"
	StatusTrained     Status = "trained"
	StatusEvaluating  Status = "evaluating"
	StatusEvaluated   Status = "evaluated"
	StatusSummarizing Status = "summarizing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusReview      Status = "review"
)

// Stage name constants shared by the runner, the store, and the CLI.
const (
	StageIngest   = "ingest"
	StageClean    = "clean"
	StageFeatures = "features"
	StageTrain    = "train"
	StageEvaluate = "evaluate"
	StageInsights = "insights"
)

var allStatuses = []Status{
	StatusPending,
	StatusIngesting,
	StatusIngested,
	StatusCleaning,
	StatusCleaned,
	StatusEngineering,
	StatusEngineered,
	StatusTraining,
	StatusTrained,
	StatusEvaluating,
	StatusEvaluated,
	StatusSummarizing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusIngesting:   {},
	StatusCleaning:    {},
	StatusEngineering: {},
	StatusTraining:    {},
	StatusEvaluating:  {},
	StatusSummarizing: {},
}

// stageStartStatuses maps a stage name to the status a run must hold for that
// stage to pick it up. Retry and stuck-processing recovery rewind to these.
var stageStartStatuses = map[string]Status{
	StageIngest:   StatusPending,
	StageClean:    StatusIngested,
	StageFeatures: StatusCleaned,
	StageTrain:    StatusEngineered,
	StageEvaluate: StatusTrained,
	StageInsights: StatusEvaluated,
}

// processingRollbacks rewinds an interrupted processing status to the start of
// its stage so the run can resume from committed prior-stage artifacts.
var processingRollbacks = map[Status]Status{
	StatusIngesting:   StatusPending,
	StatusCleaning:    StatusIngested,
	StatusEngineering: StatusCleaned,
	StatusTraining:    StatusEngineered,
	StatusEvaluating:  StatusTrained,
	StatusSummarizing: StatusEvaluated,
}

// StageStartStatus returns the status that queues a run for the named stage.
func StageStartStatus(stage string) (Status, bool) {
	status, ok := stageStartStatuses[strings.ToLower(strings.TrimSpace(stage))]
	return status, ok
}

// StageNames returns the pipeline stage names in execution order.
func StageNames() []string {
	return []string{StageIngest, StageClean, StageFeatures, StageTrain, StageEvaluate, StageInsights}
}

// DatabaseHealth captures diagnostic information about the run database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalRuns        int
	Error            string
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Run represents one dataset's traversal of the pipeline, persisted in SQLite.
// Artifact paths are filled in as stages complete; everything heavier than
// bookkeeping lives in flat files under the run workspace.
type Run struct {
	ID               int64
	SourcePath       string
	Label            string
	Status           Status
	PlanPath         string
	Fingerprint      string
	ProfileJSON      string
	CleanedFile      string
	FeaturesFile     string
	FeaturesMetaFile string
	ModelFile        string
	ModelMetaFile    string
	EvaluationFile   string
	InsightsFile     string
	ErrorMessage     string
	ReviewReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProgressStage    string
	ProgressPercent  float64
	ProgressMessage  string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (r Run) IsProcessing() bool {
	_, ok := processingStatuses[r.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the run lifecycle.
func IsTerminal(status Status) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// InitProgress resets progress fields for a new stage. The stage name is
// recorded so retries can rewind to the stage that failed.
func (r *Run) InitProgress(stage, message string) {
	r.ProgressStage = stage
	r.ProgressMessage = message
	r.ProgressPercent = 0
	r.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
func (r *Run) SetProgress(stage, message string, percent float64) {
	r.ProgressStage = stage
	r.ProgressMessage = message
	r.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (r *Run) SetProgressComplete(stage, message string) {
	r.SetProgress(stage, message, 100)
}

// SetFailed marks the run as failed with the given error message. The progress
// stage is preserved so retry knows where to resume.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.ProgressPercent = 0
	r.ProgressMessage = message
}

// SetReview marks the run as needing operator attention before a retry can
// succeed, recording why.
func (r *Run) SetReview(reason string) {
	r.Status = StatusReview
	r.ReviewReason = reason
	r.ErrorMessage = reason
	r.ProgressPercent = 0
	r.ProgressMessage = reason
}
