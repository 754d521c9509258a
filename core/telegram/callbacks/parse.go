// Package callbacks splits inline button data into a routing key and payload.
//
// Two encodings are understood. Buttons built with a telebot unique carry
// "\f<unique>|<payload>"; those route by unique. Raw tokens such as "T:A"
// or "E:A:Plank" route by the text before the first ':' and keep the whole
// token as payload.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// TokenSep separates the tag of a raw token from its fields.
const TokenSep = ":"

// Parse returns the routing key and payload of cb.
func Parse(cb *tele.Callback) (key, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseData(cb.Data)
}

// ParseData is Parse for the raw callback_data string.
func ParseData(data string) (key, payload string) {
	if rest, ok := strings.CutPrefix(data, "\f"); ok {
		unique, p, _ := strings.Cut(rest, "|")
		return strings.TrimSpace(unique), p
	}
	tag, _, _ := strings.Cut(data, TokenSep)
	return strings.TrimSpace(tag), data
}

// Key returns the routing key of the callback in c.
func Key(c tele.Context) string {
	k, _ := Parse(c.Callback())
	return k
}

// Payload returns the payload of the callback in c.
func Payload(c tele.Context) string {
	_, p := Parse(c.Callback())
	return p
}
