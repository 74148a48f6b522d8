package pipeline

import (
	"log/slog"

	"marquee/internal/cleaning"
	"marquee/internal/config"
	"marquee/internal/evaluation"
	"marquee/internal/features"
	"marquee/internal/ingest"
	"marquee/internal/insights"
	"marquee/internal/runs"
	"marquee/internal/stage"
	"marquee/internal/training"
)

// pipelineStage binds a stage handler to the status transitions it owns.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      runs.Status
	processingStatus runs.Status
	doneStatus       runs.Status
}

// defaultStages wires the six pipeline stages in execution order.
func defaultStages(cfg *config.Config, store *runs.Store, logger *slog.Logger) []pipelineStage {
	return []pipelineStage{
		{
			name:             runs.StageIngest,
			handler:          ingest.NewIngestor(cfg, store, logger),
			startStatus:      runs.StatusPending,
			processingStatus: runs.StatusIngesting,
			doneStatus:       runs.StatusIngested,
		},
		{
			name:             runs.StageClean,
			handler:          cleaning.NewCleaner(cfg, store, logger),
			startStatus:      runs.StatusIngested,
			processingStatus: runs.StatusCleaning,
			doneStatus:       runs.StatusCleaned,
		},
		{
			name:             runs.StageFeatures,
			handler:          features.NewEngineer(cfg, store, logger),
			startStatus:      runs.StatusCleaned,
			processingStatus: runs.StatusEngineering,
			doneStatus:       runs.StatusEngineered,
		},
		{
			name:             runs.StageTrain,
			handler:          training.NewTrainer(cfg, store, logger),
			startStatus:      runs.StatusEngineered,
			processingStatus: runs.StatusTraining,
			doneStatus:       runs.StatusTrained,
		},
		{
			name:             runs.StageEvaluate,
			handler:          evaluation.NewEvaluator(cfg, store, logger),
			startStatus:      runs.StatusTrained,
			processingStatus: runs.StatusEvaluating,
			doneStatus:       runs.StatusEvaluated,
		},
		{
			name:             runs.StageInsights,
			handler:          insights.NewSummarizer(cfg, store, logger),
			startStatus:      runs.StatusEvaluated,
			processingStatus: runs.StatusSummarizing,
			doneStatus:       runs.StatusCompleted,
		},
	}
}
