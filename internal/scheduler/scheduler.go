package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes auth events older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Start schedules pruning of auth events older than retention at each tick of
// expr (standard cron syntax or descriptors such as "@daily"). The cron runner
// stops when ctx is cancelled.
func Start(ctx context.Context, expr string, p Pruner, retention time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		pruneOnce(ctx, p, retention, time.Now)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron expression %q: %w", expr, err)
	}

	c.Start()
	slog.Info("scheduler: event pruning enabled", "cron", expr, "retention", retention)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

func pruneOnce(ctx context.Context, p Pruner, retention time.Duration, now func() time.Time) {
	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := p.PruneBefore(jobCtx, now().Add(-retention))
	if err != nil {
		slog.Error("scheduler: prune auth events", "error", err)
		return
	}
	if n > 0 {
		slog.Info("scheduler: pruned auth events", "deleted", n)
	}
}
