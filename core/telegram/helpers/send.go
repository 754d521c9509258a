package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/espertofit/core/logger"
	"github.com/m3rciful/espertofit/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends plain text (no parse mode) to the chat of c, with an
// optional reply markup. The message counts toward the update's counters
// once it is accepted by the dispatcher.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	err := sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
	if err == nil {
		countSent(c, markup != nil)
	}
	return err
}

// Acknowledge answers the callback query of c without showing a notification.
// Answers are not queued: Telegram expects them promptly.
func Acknowledge(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond()
}
