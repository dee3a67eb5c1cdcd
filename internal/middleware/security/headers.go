package security

import (
	"fmt"
	"net/http"
	"time"
)

// Surface is the kind of response a route serves. Each one gets its own
// content policy and caching rule.
type Surface int

const (
	// SurfaceAPI covers JSON, CSV and PDF responses and the health endpoints.
	SurfaceAPI Surface = iota
	// SurfacePage is the server-rendered dashboard.
	SurfacePage
	// SurfaceAsset is the embedded stylesheet.
	SurfaceAsset
)

func (s Surface) String() string {
	switch s {
	case SurfacePage:
		return "page"
	case SurfaceAsset:
		return "asset"
	default:
		return "api"
	}
}

// HeadersConfig holds the response headers per surface.
type HeadersConfig struct {
	// PageCSP applies to the dashboard. The page loads one same-origin
	// stylesheet, draws charts as inline SVG and runs no script.
	PageCSP string
	// APICSP applies to everything that is downloaded rather than rendered.
	APICSP string

	// AssetMaxAge is how long browsers may cache the stylesheet.
	AssetMaxAge time.Duration
	// HSTSMaxAge is sent on TLS requests only; zero disables it.
	HSTSMaxAge time.Duration
}

func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		PageCSP:     "default-src 'none'; style-src 'self'; img-src 'self'; form-action 'self'; base-uri 'none'; frame-ancestors 'none'",
		APICSP:      "default-src 'none'; frame-ancestors 'none'; sandbox",
		AssetMaxAge: time.Hour,
		HSTSMaxAge:  365 * 24 * time.Hour,
	}
}

// Middleware sets the headers for one surface before calling next.
func (c HeadersConfig) Middleware(surface Surface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.apply(w.Header(), r, surface)
			next.ServeHTTP(w, r)
		})
	}
}

func (c HeadersConfig) apply(h http.Header, r *http.Request, surface Surface) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	// Dashboard URLs carry the username.
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cross-Origin-Resource-Policy", "same-origin")

	if r.TLS != nil && c.HSTSMaxAge > 0 {
		h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", int(c.HSTSMaxAge.Seconds())))
	}

	switch surface {
	case SurfacePage:
		h.Set("Content-Security-Policy", c.PageCSP)
		h.Set("Cache-Control", "no-store")
	case SurfaceAsset:
		if c.AssetMaxAge > 0 {
			h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(c.AssetMaxAge.Seconds())))
		}
	default:
		h.Set("Content-Security-Policy", c.APICSP)
		h.Set("Cache-Control", "no-store")
	}
}
