// Package evaluation implements the model evaluation stage: scoring the
// persisted model against the holdout partition recorded at training time
// and emitting metrics, per-record residuals, and feature importances. The
// stage never mutates the model artifact.
package evaluation
