package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
	tghelpers "github.com/m3rciful/espertofit/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds that bypass limiting: "callback", "message".
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// UpdateKind classifies an update for rate limiting and logs.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	default:
		return "other"
	}
}

type limiter struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	swept    time.Time
	interval time.Duration
}

// allow records a hit for id at now and reports whether it is outside the interval.
func (l *limiter) allow(id int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.swept) > 100*l.interval {
		for k, ts := range l.lastSeen {
			if now.Sub(ts) >= l.interval {
				delete(l.lastSeen, k)
			}
		}
		l.swept = now
	}
	if last, ok := l.lastSeen[id]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[id] = now
	return true
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	l := &limiter{lastSeen: make(map[int64]time.Time), interval: opts.Interval, swept: time.Now()}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if l.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "skip"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
