package sender

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
	"github.com/m3rciful/espertofit/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// deliver runs j until it succeeds, fails permanently, runs out of
// attempts or exceeds MaxDuration. The final error is logged here.
func (d *Dispatcher) deliver(j job) error {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(j.ctx, "tg.sender", "send.start", jobAttrs(j)...)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			if attempt > 1 {
				logger.Info(j.ctx, "tg.sender", "send.retry.success",
					append(jobAttrs(j),
						slog.Int("attempt", attempt),
						slog.Duration("duration", logger.RoundMS(time.Since(start))),
					)...)
			} else {
				logger.Debug(j.ctx, "tg.sender", "send.success",
					append(jobAttrs(j), slog.Duration("duration", logger.RoundMS(time.Since(start))))...)
			}
			return nil
		}
		if attempt == attempts {
			break
		}

		delay, retry := d.backoff(err, attempt)
		if !retry {
			break
		}
		logger.Debug(j.ctx, "tg.sender", "send.retry.backoff",
			append(jobAttrs(j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)...)
		if werr := sleep(ctx, delay); werr != nil {
			err = errors.Join(err, werr)
			break
		}
	}

	logger.Error(j.ctx, "tg.sender", "send.fail",
		append(jobAttrs(j),
			slog.String("err", sanitizeErrorMessage(err)),
			slog.String("err_code", classifyError(err)),
			slog.Int("attempts", attempts),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)...)
	return err
}

// backoff returns how long to wait before the next attempt. Flood errors
// wait as long as Telegram asked; transient network errors back off
// linearly; anything else is final.
func (d *Dispatcher) backoff(err error, attempt int) (time.Duration, bool) {
	if wait, ok := floodWait(err); ok {
		return wait, true
	}
	if netutil.ShouldRetry(err) {
		return d.opts.RetryBackoff * time.Duration(attempt), true
	}
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func floodWait(err error) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second, true
	}
	return 0, false
}

func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}
