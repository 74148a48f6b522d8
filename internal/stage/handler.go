package stage

import (
	"context"

	"marquee/internal/runs"
)

// Handler describes the contract the pipeline runner needs from each stage.
// Prepare validates inputs cheaply; Execute does the work and records
// artifact paths on the run. Both may mutate the run; the runner persists it
// after each call.
type Handler interface {
	Prepare(context.Context, *runs.Run) error
	Execute(context.Context, *runs.Run) error
	HealthCheck(context.Context) Health
}
