package services

import (
	"errors"
	"fmt"
	"strings"

	"marquee/internal/runs"
)

var (
	ErrSchema        = errors.New("schema error")
	ErrFormat        = errors.New("format error")
	ErrValidation    = errors.New("validation error")
	ErrConvergence   = errors.New("convergence error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the run status the pipeline runner should
// persist after the stage fails. Errors that require a changed input file or
// plan before a retry can succeed route to review; everything else is failed
// and may be retried as-is.
func FailureStatus(err error) runs.Status {
	switch {
	case errors.Is(err, ErrSchema),
		errors.Is(err, ErrFormat),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConvergence),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound):
		return runs.StatusReview
	default:
		return runs.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
