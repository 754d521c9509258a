package logger

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(format logFormat) (*slog.Logger, *asyncWriter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return slog.New(handler), aw, buf
}

func closeWriter(t *testing.T, aw *asyncWriter) {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, aw, buf := newTestLogger(formatKV)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "dialog"), slog.LevelInfo, "callback.handled",
		slog.String("status", "ok"),
		slog.String("action", "select_training"),
	)
	closeWriter(t, aw)

	tokens := strings.Split(strings.TrimSpace(buf.String()), " ")
	expected := []string{"ts=", "level=INFO", "component=dialog", "event=callback.handled", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "action=select_training"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), buf.String())
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, aw, buf := newTestLogger(formatJSON)
	ctx := WithRID(Background(), "rid-json")

	LogEvent(ctx, log.With("component", "session"), slog.LevelError, "store.failed",
		slog.String("status", "fail"),
		slog.Any("err", errors.New("boom")),
		slog.String("err_code", "SESSION_STORE"),
	)
	closeWriter(t, aw)

	line := strings.TrimSpace(buf.String())
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"session"`, `"event":"store.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := BuildRID(123, 456, 789)

	kvLog, kvWriter, kvBuf := newTestLogger(formatKV)
	LogEvent(WithRID(Background(), rawRID), kvLog, slog.LevelInfo, "rid.test")
	closeWriter(t, kvWriter)
	if line := kvBuf.String(); !strings.Contains(line, "rid="+CompactRID(rawRID)) || strings.Contains(line, "rid_full=") {
		t.Fatalf("unexpected kv rid rendering: %s", line)
	}

	jsonLog, jsonWriter, jsonBuf := newTestLogger(formatJSON)
	LogEvent(WithRID(Background(), rawRID), jsonLog, slog.LevelInfo, "rid.test")
	closeWriter(t, jsonWriter)
	line := jsonBuf.String()
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) || !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("unexpected json rid rendering: %s", line)
	}
}

func TestStructuredHandlerDurationsAndLevel(t *testing.T) {
	log, aw, buf := newTestLogger(formatKV)
	log.Debug("hidden")
	LogEvent(Background(), log, slog.LevelInfo, "timed",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.String("empty", ""),
	)
	closeWriter(t, aw)

	line := buf.String()
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line should be filtered: %s", line)
	}
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected duration_ms=2, got %s", line)
	}
	if strings.Contains(line, "empty=") {
		t.Fatalf("empty values should be pruned: %s", line)
	}
}

func TestCompactRIDPassthrough(t *testing.T) {
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID("35:36:0"); got != "z.10.0" {
		t.Fatalf("CompactRID = %q, want z.10.0", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}

	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler should allow everything")
	}

	if n, d := parseRatioSpec("2/10"); n != 2 || d != 10 {
		t.Fatalf("parseRatioSpec(2/10) = %d/%d", n, d)
	}
	if n, d := parseRatioSpec("25"); n != 1 || d != 25 {
		t.Fatalf("parseRatioSpec(25) = %d/%d", n, d)
	}
}
