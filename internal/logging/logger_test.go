package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"marquee/internal/services"
)

func newTestPrettyLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newPrettyHandler(buf, levelVar, false))
}

func TestPrettyHandlerHeadline(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestPrettyLogger(&buf, slog.LevelInfo)
	logger = NewComponentLogger(logger, "trainer")

	logger.Info("candidate selected",
		Int64(FieldRunID, 7),
		String(FieldStage, "train"),
		String("selected_model", "ridge"),
	)

	out := buf.String()
	if !strings.Contains(out, "[trainer]") {
		t.Fatalf("expected component header, got %q", out)
	}
	if !strings.Contains(out, "Run #7 (train)") {
		t.Fatalf("expected run subject, got %q", out)
	}
	if !strings.Contains(out, "Model: ridge") {
		t.Fatalf("expected highlighted model field, got %q", out)
	}
}

func TestPrettyHandlerSuppressesRepeatedInfoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestPrettyLogger(&buf, slog.LevelInfo)

	logger.Info("progress", Int64(FieldRunID, 3), String("status", "cleaning"))
	first := buf.String()
	buf.Reset()
	logger.Info("progress", Int64(FieldRunID, 3), String("status", "cleaning"))
	second := buf.String()

	if !strings.Contains(first, "Status: cleaning") {
		t.Fatalf("first emission should include the field, got %q", first)
	}
	if strings.Contains(second, "Status: cleaning") {
		t.Fatalf("repeated identical field should be suppressed, got %q", second)
	}
}

func TestPrettyHandlerDebugDumpsAllFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestPrettyLogger(&buf, slog.LevelDebug)

	logger.Debug("fold scored",
		Int64(FieldRunID, 4),
		Int("fold", 2),
		Float64("cv_mse", 12.5),
	)

	out := buf.String()
	if !strings.Contains(out, "fold: 2") || !strings.Contains(out, "cv_mse: 12.5") {
		t.Fatalf("debug output should list raw fields, got %q", out)
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	handler, err := newJSONHandler(&buf, levelVar, false)
	if err != nil {
		t.Fatalf("newJSONHandler returned error: %v", err)
	}
	logger := slog.New(handler)

	logger.Info("run queued", Int64(FieldRunID, 11))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode JSON log line: %v", err)
	}
	if decoded["msg"] != "run queued" {
		t.Fatalf("expected msg key, got %v", decoded)
	}
	if decoded["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", decoded["level"])
	}
	if _, ok := decoded["ts"].(string); !ok {
		t.Fatalf("expected string ts, got %v", decoded["ts"])
	}
	if ts, ok := decoded["ts"].(string); ok {
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			t.Fatalf("ts should be RFC3339, got %q", ts)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestPrettyLogger(&buf, slog.LevelInfo)

	ctx := contextWithRunAndStage(t, 21, "evaluate")
	WithContext(ctx, logger).Info("metrics computed")

	out := buf.String()
	if !strings.Contains(out, "Run #21 (evaluate)") {
		t.Fatalf("expected context-derived subject, got %q", out)
	}
}

func TestTeeLoggerDuplicatesRecords(t *testing.T) {
	var console, capture bytes.Buffer
	base := newTestPrettyLogger(&console, slog.LevelInfo)

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	handler, err := newJSONHandler(&capture, levelVar, false)
	if err != nil {
		t.Fatalf("newJSONHandler returned error: %v", err)
	}

	logger := TeeLogger(base, handler)
	logger.Info("stage complete", String("status", "cleaned"))
	logger.Debug("detail only for capture")

	if !strings.Contains(console.String(), "stage complete") {
		t.Fatalf("console should carry info record, got %q", console.String())
	}
	if strings.Contains(console.String(), "detail only for capture") {
		t.Fatalf("console should drop debug record, got %q", console.String())
	}
	if !strings.Contains(capture.String(), "detail only for capture") {
		t.Fatalf("capture should keep debug record, got %q", capture.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	handler, err := newJSONHandler(&buf, levelVar, false)
	if err != nil {
		t.Fatalf("newJSONHandler returned error: %v", err)
	}

	WarnWithContext(slog.New(handler), "column skipped", "column_skipped")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode JSON log line: %v", err)
	}
	if decoded[FieldEventType] != "column_skipped" {
		t.Fatalf("expected injected event type, got %v", decoded)
	}
	if decoded[FieldErrorHint] == nil || decoded[FieldImpact] == nil {
		t.Fatalf("expected hint and impact defaults, got %v", decoded)
	}
}

func contextWithRunAndStage(t *testing.T, runID int64, stage string) context.Context {
	t.Helper()
	ctx := context.Background()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithStage(ctx, stage)
	return ctx
}
