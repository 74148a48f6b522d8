package stage

import (
	"fmt"
	"os"
	"strings"

	"marquee/internal/plan"
	"marquee/internal/runs"
	"marquee/internal/services"
)

// RequireArtifact verifies that an input artifact recorded by an earlier
// stage exists on disk. On failure it returns a services.ErrValidation
// suitable for stage Prepare methods.
func RequireArtifact(component, path, description string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return services.Wrap(
			services.ErrValidation, component, "locate input",
			fmt.Sprintf("%s is not recorded on the run; rerun the earlier stage", description), nil)
	}
	info, err := os.Stat(trimmed)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, component, "locate input",
			fmt.Sprintf("%s missing at %s; rerun the earlier stage", description, trimmed), err)
	}
	if info.IsDir() {
		return services.Wrap(
			services.ErrValidation, component, "locate input",
			fmt.Sprintf("%s at %s is a directory", description, trimmed), nil)
	}
	return nil
}

// LoadPlan reads the plan recorded on the run. A run without a plan path is
// a configuration error: the operator must attach one before the pipeline
// can proceed.
func LoadPlan(component string, run *runs.Run) (*plan.Plan, error) {
	if strings.TrimSpace(run.PlanPath) == "" {
		return nil, services.Wrap(
			services.ErrConfiguration, component, "load plan",
			"Run has no pipeline plan; add one with --plan or set workflow.default_plan", nil)
	}
	return plan.Load(run.PlanPath)
}
