package middleware

import (
	tghelpers "github.com/m3rciful/espertofit/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetricsMiddleware resets the outbound counters of an update.
// helpers.SendText increments them; the handler summary reads them back.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetCounters(c)
		return next(c)
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	return tghelpers.Counters(c)
}
