package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"

	"github.com/m3rciful/espertofit/core/logger"
)

// Pruner drops sessions older than maxAge.
type Pruner interface {
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Janitor prunes stale sessions on a cron schedule.
type Janitor struct {
	c *cron.Cron
}

// StartJanitor schedules p.Prune(maxAge) with the cron spec (for example
// "@every 1h") and starts the scheduler.
func StartJanitor(p Pruner, schedule string, maxAge time.Duration) (*Janitor, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("janitor: max age must be > 0")
	}
	c := cron.New()
	err := c.AddFunc(schedule, func() { pruneOnce(p, maxAge) })
	if err != nil {
		return nil, fmt.Errorf("janitor: schedule %q: %w", schedule, err)
	}
	c.Start()
	logger.Session.Info("janitor started",
		slog.String("event", "session.janitor"),
		slog.String("schedule", schedule),
		slog.Duration("max_age", maxAge),
	)
	return &Janitor{c: c}, nil
}

// Stop halts the scheduler. Safe on a nil Janitor.
func (j *Janitor) Stop() {
	if j == nil || j.c == nil {
		return
	}
	j.c.Stop()
}

func pruneOnce(p Pruner, maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	n, err := p.Prune(ctx, maxAge)
	took := time.Since(start)
	if err != nil {
		logger.Session.Error("prune failed",
			slog.String("event", "session.prune"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.String("err_code", ErrCodeStore),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return
	}
	logger.Session.Info("sessions pruned",
		slog.String("event", "session.prune"),
		slog.String("status", "ok"),
		slog.Int64("count", n),
		slog.Duration("duration", logger.RoundMS(took)),
	)
}
