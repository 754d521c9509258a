package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
	tg "github.com/m3rciful/espertofit/core/telegram"
	"github.com/m3rciful/espertofit/core/telegram/callbacks"
	"github.com/m3rciful/espertofit/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound handles keys without a registered handler when the registry
	// has no fallback of its own.
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the OnCallback route that dispatches through the
// registry. Handlers answer the callback query themselves.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, payload := callbacks.Parse(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
		}

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, "", "", func() error {
				if fallback != nil {
					return fallback(c)
				}
				return c.Respond()
			}, extras...)
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
