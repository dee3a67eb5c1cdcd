package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"findash/internal/format"
	"findash/internal/log"
	"findash/internal/middleware/ratelimit"
	"findash/internal/middleware/security"
	"findash/internal/middleware/trace"
	"findash/internal/report"
	"findash/internal/services"
	appweb "findash/web"
)

// Options configures the server.
type Options struct {
	Addr               string
	Ledger             *services.LedgerService
	Dashboard          *services.DashboardService
	Logger             *log.Logger
	RateLimitPerMinute int
	MaxImportBytes     int64
	CurrencySymbol     string
	PDF                report.PDFOptions
}

type Server struct {
	http.Server
	ledger         *services.LedgerService
	dashboard      *services.DashboardService
	templates      *template.Template
	formatter      format.Formatter
	logger         *log.Logger
	events         *log.StructuredLogger
	maxImportBytes int64
	pdfOptions     report.PDFOptions
	started        time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:           opts.Ledger,
		dashboard:        opts.Dashboard,
		formatter:        format.New(opts.CurrencySymbol),
		logger:           logger,
		events:           log.NewStructuredLogger(logger),
		maxImportBytes:   opts.MaxImportBytes,
		pdfOptions:       opts.PDF,
		started:          time.Now(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
	}
	if s.maxImportBytes <= 0 {
		s.maxImportBytes = 5 << 20
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.events)

	t, err := template.New("pages").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.FromRequest))
	r.Use(s.securityDetector.Middleware)
	r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.WritesOnly))

	headers := security.DefaultHeadersConfig()

	r.Group(func(r chi.Router) {
		r.Use(headers.Middleware(security.SurfaceAPI))
		r.Get("/healthz", s.handleHealth)
		r.Get("/readyz", s.handleReady)
		r.Get("/metrics", s.handleMetrics)
	})

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(headers.Middleware(security.SurfaceAsset)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.With(headers.Middleware(security.SurfacePage)).Get("/users/{username}", s.handleDashboardPage)

	r.Route("/api/users/{username}", func(r chi.Router) {
		r.Use(headers.Middleware(security.SurfaceAPI))
		r.Use(log.ComponentMiddleware(log.ComponentLedger))

		r.Post("/transactions", s.handleCreateTransaction)
		r.Get("/transactions", s.handleListTransactions)
		r.Put("/budget", s.handleSetBudget)
		r.Get("/budget", s.handleGetBudget)
		r.Get("/dashboard", s.handleDashboard)
		r.Post("/import", s.handleImport)
		r.Get("/export.csv", s.handleExport)
		r.Get("/report.pdf", s.handleReport)
	})

	return r
}

// Shutdown stops background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":   s.formatter.Money,
		"percent": format.Percent,
		// barWidth turns a 0..1 scale into a width on a 100-unit viewBox.
		"barWidth": func(scale float64) string {
			return strconv.FormatFloat(scale*100, 'f', 1, 64)
		},
	}
}
