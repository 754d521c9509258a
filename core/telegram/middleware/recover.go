package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/espertofit/core/logger"
	tghelpers "github.com/m3rciful/espertofit/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into a logged error so one bad
// update cannot stop the bot.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				ctx := tghelpers.BuildContext(c)
				logger.LogEvent(ctx, logger.TG, slog.LevelError, "tg.panic",
					slog.String("status", "fail"),
					slog.String("handler", logger.HandlerFrom(ctx)),
					slog.String("err", logger.SanitizeLimit(fmt.Sprint(r), 256)),
					slog.String("err_code", "PANIC"),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return next(c)
	}
}
