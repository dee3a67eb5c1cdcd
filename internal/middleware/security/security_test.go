package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{name: "direct", remote: "203.0.113.7:5555", want: "203.0.113.7"},
		{name: "untrusted proxy ignored", remote: "203.0.113.7:5555", xff: "198.51.100.1", want: "203.0.113.7"},
		{name: "trusted proxy", remote: "10.0.0.2:80", xff: "198.51.100.1, 10.0.0.1", want: "198.51.100.1"},
		{name: "garbage header", remote: "10.0.0.2:80", xff: "not-an-ip", want: "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	clean := httptest.NewRequest(http.MethodGet, "/api/users/asha/dashboard", nil)
	if d.DetectSuspiciousRequest(clean) {
		t.Error("normal request flagged")
	}

	scan := httptest.NewRequest(http.MethodGet, "/.env", nil)
	if !d.DetectSuspiciousRequest(scan) {
		t.Error("scanner request not flagged")
	}

	scanner := httptest.NewRequest(http.MethodGet, "/", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")
	if !d.DetectSuspiciousRequest(scanner) {
		t.Error("scanner user agent not flagged")
	}

	if got := d.GetMetrics().SuspiciousRequests; got != 2 {
		t.Errorf("expected 2 suspicious requests, got %d", got)
	}
}

func TestHeadersPerSurface(t *testing.T) {
	cfg := DefaultHeadersConfig()
	tests := []struct {
		surface      Surface
		cacheControl string
		csp          string
	}{
		{SurfaceAPI, "no-store", cfg.APICSP},
		{SurfacePage, "no-store", cfg.PageCSP},
		{SurfaceAsset, "public, max-age=3600", ""},
	}
	for _, tt := range tests {
		t.Run(tt.surface.String(), func(t *testing.T) {
			h := cfg.Middleware(tt.surface)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			if got := rr.Header().Get("Cache-Control"); got != tt.cacheControl {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cacheControl)
			}
			if got := rr.Header().Get("Content-Security-Policy"); got != tt.csp {
				t.Errorf("CSP = %q, want %q", got, tt.csp)
			}
			if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Frame-Options") != "DENY" {
				t.Errorf("common headers missing: %v", rr.Header())
			}
			if rr.Header().Get("Strict-Transport-Security") != "" {
				t.Errorf("HSTS must only be sent over TLS")
			}
		})
	}
}

func TestPageCSPBlocksScripts(t *testing.T) {
	csp := DefaultHeadersConfig().PageCSP
	if !strings.Contains(csp, "default-src 'none'") || strings.Contains(csp, "script-src") {
		t.Errorf("page CSP should allow no scripts: %q", csp)
	}
	if strings.Contains(csp, "unsafe-inline") {
		t.Errorf("page CSP should not allow inline styles: %q", csp)
	}
}

func TestHSTSOverTLS(t *testing.T) {
	h := DefaultHeadersConfig().Middleware(SurfacePage)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "https://findash.example/users/a", nil)
	req.TLS = &tls.ConnectionState{}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
