// Package ui holds the fallback contract bots implement for updates that
// no command or callback key claims.
package ui

import (
	tg "github.com/m3rciful/espertofit/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FallbackProvider supplies handlers for unmatched text, documents and
// callbacks. UnknownCallback must answer the callback query itself.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Install makes p the registry's text and callback fallback.
func Install(reg *tg.Registry, p FallbackProvider) {
	if reg == nil || p == nil {
		return
	}
	if h := p.UnknownText(); h != nil {
		reg.SetTextFallback(h)
	}
	reg.SetCallbackNotFound(p.UnknownCallback())
}
