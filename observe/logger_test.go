package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	log.Debug(ctx, "debug")
	log.Info(ctx, "info")
	log.Warn(ctx, "warn")
	log.Error(ctx, "error")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("debug", &buf).With(Field{Key: "service", Value: "worldview"})

	log.Info(context.Background(), "insight resolved",
		Field{Key: "key", Value: "Oslo, Norway"},
		Field{Key: "outcome", Value: "hit"},
		Err(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	e := lines[0]
	for k, want := range map[string]any{
		"msg":     "insight resolved",
		"level":   "info",
		"service": "worldview",
		"key":     "Oslo, Norway",
		"outcome": "hit",
		"error":   "boom",
	} {
		if e[k] != want {
			t.Errorf("%s = %v, want %v", k, e[k], want)
		}
	}
	if _, ok := e["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", &buf)

	log.Info(context.Background(), "startup",
		Field{Key: "api_key", Value: "sk-or-secret"},
		Field{Key: "prompt", Value: "You are a local guide"},
		Field{Key: "authorization", Value: "Bearer x"},
		Field{Key: "model", Value: "google/gemini-2.5-flash"},
	)

	out := buf.String()
	if strings.Contains(out, "sk-or-secret") || strings.Contains(out, "local guide") || strings.Contains(out, "Bearer x") {
		t.Errorf("sensitive value leaked: %s", out)
	}
	if !strings.Contains(out, "google/gemini-2.5-flash") {
		t.Errorf("non-sensitive field missing: %s", out)
	}
}

func TestLogger_WithDoesNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf).With(Field{Key: "a", Value: 1})
	left := base.With(Field{Key: "left", Value: true})
	right := base.With(Field{Key: "right", Value: true})

	left.Info(context.Background(), "l")
	right.Info(context.Background(), "r")

	lines := decodeLines(t, &buf)
	if _, ok := lines[0]["right"]; ok {
		t.Error("left logger picked up right's field")
	}
	if _, ok := lines[1]["left"]; ok {
		t.Error("right logger picked up left's field")
	}
}

func TestLogger_TraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", &buf)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.Info(ctx, "inside span")
	span.End()

	e := decodeLines(t, &buf)[0]
	if e["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %v", e["trace_id"], span.SpanContext().TraceID())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Info(context.Background(), "line", Field{Key: "n", Value: n})
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 1000 {
		t.Errorf("got %d lines, want 1000", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	log := NopLogger().With(Field{Key: "a", Value: 1})
	log.Info(context.Background(), "ignored")
	log.Error(context.Background(), "ignored")
}
