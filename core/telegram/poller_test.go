package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpoll(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	if !ok {
		t.Fatal("expected long poller")
	}
	if p.Timeout != 10*time.Second {
		t.Fatalf("timeout = %s", p.Timeout)
	}
	if len(p.AllowedUpdates) != 2 || p.AllowedUpdates[1] != "callback_query" {
		t.Fatalf("allowed updates = %v", p.AllowedUpdates)
	}
}

func TestBuildPollerWebhook(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://fit.example.org/hook"},
	}).(*tele.Webhook)
	if !ok {
		t.Fatal("expected webhook poller")
	}
	if p.Listen != "0.0.0.0:8443" || p.Endpoint.PublicURL != "https://fit.example.org/hook" {
		t.Fatalf("unexpected webhook: %+v", p)
	}
}
