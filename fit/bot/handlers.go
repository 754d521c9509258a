package bot

import (
	"log/slog"

	"github.com/m3rciful/espertofit/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/espertofit/core/telegram/helpers"
	"github.com/m3rciful/espertofit/core/telegram/router"
	"github.com/m3rciful/espertofit/fit/dialog"

	tele "gopkg.in/telebot.v4"
)

const textSlowDown = "Too many requests, slow down."

// UnknownText implements ui.FallbackProvider. Plain text goes through
// the dialog so it gets the same "Command not found!" reply.
func (a *App) UnknownText() tele.HandlerFunc { return a.onText }

// UnknownDocument implements ui.FallbackProvider.
func (a *App) UnknownDocument() tele.HandlerFunc { return a.onText }

// UnknownCallback implements ui.FallbackProvider. Unknown tags are
// decoded by the dialog, which rejects and acknowledges them.
func (a *App) UnknownCallback() tele.HandlerFunc { return a.onCallback }

func (a *App) onText(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	text := c.Text()
	res, err := a.machine.HandleText(ctx, messenger{c: c}, dialog.TextCommand{
		ChatID:  chat.ID,
		Command: dialog.ParseCommand(text),
		RawText: text,
	})
	report(c, res)
	return err
}

func (a *App) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	chat := c.Chat()
	if chat == nil {
		// Callbacks from inline-mode messages carry no chat.
		return tghelpers.Acknowledge(c)
	}
	ctx := tghelpers.BuildContext(c)
	res, err := a.machine.HandleCallback(ctx, messenger{c: c}, dialog.CallbackEvent{
		ChatID:     chat.ID,
		CallbackID: cb.ID,
		Payload:    callbacks.Payload(c),
	})
	report(c, res)
	return err
}

func (a *App) onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textSlowDown})
	}
	return nil
}

func report(c tele.Context, res dialog.Result) {
	if res.Outcome == "" {
		return
	}
	attrs := []slog.Attr{
		slog.String("state", string(res.State)),
		slog.String("next", string(res.Next)),
	}
	if res.Action.Kind.Valid() {
		attrs = append(attrs, slog.String("action", res.Action.Kind.String()))
	}
	if res.Fault != nil {
		attrs = append(attrs, slog.String("fault", dialog.ErrorCode(res.Fault)))
	}
	router.SetOutcome(c, res.Outcome, attrs...)
}
