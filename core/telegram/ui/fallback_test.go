package ui

import (
	"testing"

	tg "github.com/m3rciful/espertofit/core/telegram"

	tele "gopkg.in/telebot.v4"
)

type provider struct{ calls *[]string }

func (p provider) handler(name string) tele.HandlerFunc {
	return func(tele.Context) error {
		*p.calls = append(*p.calls, name)
		return nil
	}
}

func (p provider) UnknownText() tele.HandlerFunc     { return p.handler("text") }
func (p provider) UnknownDocument() tele.HandlerFunc { return p.handler("document") }
func (p provider) UnknownCallback() tele.HandlerFunc { return p.handler("callback") }

func TestInstallSetsRegistryFallbacks(t *testing.T) {
	var calls []string
	reg := tg.NewRegistry()
	Install(reg, provider{calls: &calls})

	if err := reg.TextFallback()(nil); err != nil {
		t.Fatal(err)
	}
	if err := reg.CallbackNotFound()(nil); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "text" || calls[1] != "callback" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestInstallNilSafe(t *testing.T) {
	Install(nil, nil)
	reg := tg.NewRegistry()
	Install(reg, nil)
	if reg.TextFallback() != nil {
		t.Fatal("text fallback must stay unset")
	}
}
