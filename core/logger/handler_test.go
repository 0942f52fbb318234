package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{level: slog.LevelDebug, writer: aw, format: format})
	return slog.New(h), func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "service.cart"), slog.LevelInfo, "cart.add",
		slog.String("status", "OK"),
		slog.Int64("product_id", 5),
		slog.Int("qty", 2),
	)

	tokens := strings.Split(output(), " ")
	expected := []string{"ts=", "level=INFO", "component=service.cart", "event=cart.add", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "product_id=5", "qty=2"}
	if len(tokens) != len(expected) {
		t.Fatalf("unexpected tokens %v", tokens)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSON(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	ctx := WithRID(context.Background(), BuildRID(12, 34, 56))

	LogEvent(ctx, log.With("component", "service.orders"), slog.LevelError, "order.create",
		slog.String("status", "fail"),
		slog.Any("err", errors.New("boom")),
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Group("req", slog.String("method", "GET")),
	)

	line := output()
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", line, err)
	}
	checks := map[string]any{
		"level":      "ERROR",
		"component":  "service.orders",
		"event":      "order.create",
		"rid":        CompactRID("12:34:56"),
		"rid_full":   "12:34:56",
		"err":        "boom",
		"req.method": "GET",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Fatalf("%s = %v, want %v (%s)", k, got[k], want, line)
		}
	}
	if got["duration_ms"] != float64(2) {
		t.Fatalf("duration should be rounded milliseconds, got %v", got["duration_ms"])
	}
	if !strings.HasPrefix(line, `{"ts":`) {
		t.Fatalf("ts must lead the line: %s", line)
	}
}

func TestStructuredHandlerDefaultsAndPruning(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	log.Info("plain message", slog.String("empty", ""), slog.String("outcome", "weird"))

	line := output()
	if !strings.Contains(line, "component=app") || !strings.Contains(line, `event="plain message"`) {
		t.Fatalf("defaults missing: %s", line)
	}
	if strings.Contains(line, "empty=") || strings.Contains(line, "outcome=") {
		t.Fatalf("empty and unknown outcome values must be dropped: %s", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 0)
	h := newStructuredHandler(handlerConfig{level: slog.LevelWarn, writer: aw, format: formatKV})
	slog.New(h).Info("skipped")
	slog.New(h).Warn("kept")
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if out := buf.String(); strings.Contains(out, "skipped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("36:72:35"); got != "10.20.z" {
		t.Fatalf("unexpected compact rid %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("foreign rid must pass through, got %q", got)
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
		t.Fatalf("expected 3 of 9 allowed, got %d", allowed)
	}
	if n, d := parseRatioSpec("2/5"); n != 2 || d != 5 {
		t.Fatalf("parse 2/5 = %d/%d", n, d)
	}
	if n, d := parseRatioSpec("10"); n != 1 || d != 10 {
		t.Fatalf("parse 10 = %d/%d", n, d)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("he\x00llo\u200b world", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	Info(context.Background(), "test", "noop", slog.String("k", "v"))
	Component("x").Debug("noop")
	LogEvent(nil, nil, slog.LevelInfo, "noop") //nolint:staticcheck
}
