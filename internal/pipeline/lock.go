package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/config"
	"marquee/internal/services"
)

// AcquireLock takes the workspace lock so two marquee invocations cannot
// drive runs concurrently. The returned release function must be called
// when the invocation exits; no lock is held across invocations.
func AcquireLock(ctx context.Context, cfg *config.Config) (release func(), err error) {
	lockPath := cfg.LockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock",
			fmt.Sprintf("Cannot create lock directory for %s", lockPath), err)
	}

	timeout := time.Duration(cfg.Workflow.LockTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock",
			fmt.Sprintf("Cannot acquire workspace lock %s", lockPath), err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock",
			fmt.Sprintf("Workspace lock %s is held by another marquee invocation", lockPath), nil)
	}
	return func() {
		_ = fileLock.Unlock()
	}, nil
}
