package bot

import (
	"context"
	"fmt"

	tghelpers "github.com/m3rciful/espertofit/core/telegram/helpers"
	"github.com/m3rciful/espertofit/core/telegram/keyboard"
	"github.com/m3rciful/espertofit/fit/dialog"

	tele "gopkg.in/telebot.v4"
)

// messenger delivers dialog output through the update's telebot context.
type messenger struct {
	c tele.Context
}

func (m messenger) SendMessage(_ context.Context, chatID int64, text string, kb dialog.Keyboard) error {
	if chat := m.c.Chat(); chat == nil || chat.ID != chatID {
		return fmt.Errorf("bot: reply addressed to chat %d outside the current update", chatID)
	}
	return tghelpers.SendText(m.c, text, markup(kb))
}

func (m messenger) AcknowledgeCallback(_ context.Context, _ string) error {
	return tghelpers.Acknowledge(m.c)
}

// markup converts a dialog keyboard into raw-data inline buttons.
func markup(kb dialog.Keyboard) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(kb))
	for _, row := range kb {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.InlineBtn{Text: b.Label, Data: b.Payload})
		}
		rows = append(rows, r)
	}
	return keyboard.InlineButtonsRows(rows...)
}
