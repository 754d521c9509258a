package middleware

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestLimiterAllow(t *testing.T) {
	base := time.Now()
	l := &limiter{lastSeen: map[int64]time.Time{}, interval: time.Second, swept: base}

	if !l.allow(1, base) {
		t.Fatal("first hit should pass")
	}
	if l.allow(1, base.Add(500*time.Millisecond)) {
		t.Fatal("second hit inside interval should be limited")
	}
	if !l.allow(2, base.Add(500*time.Millisecond)) {
		t.Fatal("other users are independent")
	}
	if !l.allow(1, base.Add(2*time.Second)) {
		t.Fatal("hit after interval should pass")
	}

	l.allow(3, base.Add(500*time.Second))
	if _, ok := l.lastSeen[1]; ok {
		t.Fatal("stale entries should be swept")
	}
}

func TestUpdateKind(t *testing.T) {
	if got := UpdateKind(tele.Update{Callback: &tele.Callback{}}); got != "callback" {
		t.Fatalf("kind = %s", got)
	}
	if got := UpdateKind(tele.Update{Message: &tele.Message{}}); got != "message" {
		t.Fatalf("kind = %s", got)
	}
	if got := UpdateKind(tele.Update{}); got != "other" {
		t.Fatalf("kind = %s", got)
	}
}
