package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func bufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(Config{Component: component, Handler: h}), &buf
}

func TestLoggerAddsComponent(t *testing.T) {
	l, buf := bufferLogger(ComponentLedger)
	l.Info("hello", FieldUser, "asha")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "user=asha") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStructuredLoggerImport(t *testing.T) {
	l, buf := bufferLogger(ComponentImport)
	sl := NewStructuredLogger(l)

	sl.LogImport(context.Background(), "asha", 3, nil)
	if !strings.Contains(buf.String(), "CSV import completed") || !strings.Contains(buf.String(), "count=3") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	sl.LogImport(context.Background(), "asha", 0, errors.New("row 2: invalid amount"))
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	l, _ := bufferLogger(ComponentHTTP)
	var got *Logger
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != l {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentWorker})
	l.Debug("hidden")
	l.Info("synced", FieldCount, 3)

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered: %q", out)
	}
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"component":"worker"`) || !strings.Contains(out, `"count":3`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestWithComponentTagsOnce(t *testing.T) {
	l, buf := bufferLogger(ComponentApp)
	l.WithComponent(ComponentSheets).With(FieldUser, "asha").Warn("retry")
	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=sheets") {
		t.Fatalf("expected a single sheets component, got %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	l, buf := bufferLogger(ComponentHTTP)
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req_abc" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), "request_id=req_abc") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}
