package telegram

import (
	"testing"

	"github.com/m3rciful/espertofit/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	noop := func(tele.Context) error { return nil }
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "display this text."})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "choose a training.", Aliases: []string{"menu"}})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "internal", Hidden: true})
	reg.RegisterCommand("nope", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "duplicate"})

	list := reg.ListCommands(true)
	if len(list) != 2 || list[0].Text != "help" || list[1].Text != "start" {
		t.Fatalf("unexpected visible commands: %+v", list)
	}
	if got := len(reg.ListCommands(false)); got != 3 {
		t.Fatalf("all commands = %d, want 3", got)
	}
	if key, _, ok := reg.LookupCommand("menu"); !ok || key != "/start" {
		t.Fatalf("alias lookup = %q, %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/nope"); ok {
		t.Fatal("unexpected command")
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	noop := func(tele.Context) error { return nil }
	for _, tag := range []string{"T", "E", "CL", "FE"} {
		if err := reg.RegisterCallback(tag, noop); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}
	if err := reg.RegisterCallback("T", noop); err == nil {
		t.Fatal("duplicate registration should fail")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key should fail")
	}
	if _, ok := reg.GetCallback("E"); !ok {
		t.Fatal("E not registered")
	}
	got := reg.ListCallbacks()
	want := []string{"CL", "E", "FE", "T"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListCallbacks = %v", got)
		}
	}
}
