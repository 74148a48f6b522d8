package logging

import (
	"context"
	"log/slog"

	"marquee/internal/services"
)

// Canonical structured-logging keys. Every package logs through these so the
// console handler and the run captures agree on field names.
const (
	FieldComponent = "component"
	// FieldRunID identifies the pipeline run a record belongs to.
	FieldRunID = "run_id"
	FieldStage = "stage"
	// FieldCorrelationID carries the per-stage request id the runner mints.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is a machine-readable event name for log filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step when an operation degrades or fails.
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
