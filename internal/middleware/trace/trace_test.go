package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"findash/internal/log"
)

func bufferEvents() (*log.StructuredLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := log.New(log.Config{Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	return log.NewStructuredLogger(l), &buf
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	events, buf := bufferEvents()
	m := NewMiddleware(func(*http.Request) string { return "127.0.0.1" }, events)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromRequest(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("unexpected request id %q", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match %q", rr.Header().Get(RequestIDHeader), seen)
	}
	if rr.Code != http.StatusTeapot {
		t.Errorf("status not propagated: %d", rr.Code)
	}
	logs := buf.String()
	if !strings.Contains(logs, "HTTP request completed") || !strings.Contains(logs, "status_code=418") {
		t.Errorf("completion not logged: %s", logs)
	}
	if !strings.Contains(logs, "level=WARN") {
		t.Errorf("4xx should log at warn: %s", logs)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("expected 1 request, got %d", m.GetMetrics().TotalRequests)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request ids should differ")
	}
}
