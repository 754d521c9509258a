package state

import tele "gopkg.in/telebot.v4"

// SerializeChats runs handlers of the same chat one at a time. Updates
// without a chat pass straight through.
func SerializeChats() tele.MiddlewareFunc {
	var locks KeyedMutex
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return next(c)
			}
			unlock := locks.Lock(chat.ID)
			defer unlock()
			return next(c)
		}
	}
}
