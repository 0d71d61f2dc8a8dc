package scheduler

import (
	"context"
	"time"

	"github.com/hostpulse/hostpulse/share/logger"
)

// Task is a unit of periodic work.
type Task interface {
	Run(ctx context.Context) error
}

// Run executes the task once immediately and then once per interval until
// the context is canceled. Task errors are logged and never stop the loop.
func Run(ctx context.Context, log *logger.Logger, task Task, interval time.Duration) {
	runOnce := func() {
		if err := task.Run(ctx); err != nil {
			log.Errorf("task finished with an error: %v", err)
		}
	}

	log.Debugf("task scheduled every %s", interval)
	runOnce()

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			runOnce()
		case <-ctx.Done():
			log.Debugf("task stopped")
			return
		}
	}
}
