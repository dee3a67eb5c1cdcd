package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/analytics"
	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/report"
	"findash/internal/services"
)

const (
	recentRows = 20
	trendRows  = 14
)

type categoryRow struct {
	Category string
	Amount   core.Money
	Share    decimal.Decimal
	Scale    float64
}

type dashboardPage struct {
	User        core.User
	GeneratedAt time.Time
	Score       int
	Income      core.Money
	Expenses    core.Money
	Savings     core.Money
	Budget      *core.Budget
	Messages    []string
	Categories  []categoryRow
	Months      []report.Bar
	Weekdays    []report.Bar
	Trend       report.Trend
	TrendDays   []analytics.DailyNet // newest first
	Recent      []core.Transaction   // newest first
}

func (s *Server) dashboardPage(d services.Dashboard) dashboardPage {
	agg := d.Aggregates
	page := dashboardPage{
		User:        d.User,
		GeneratedAt: d.GeneratedAt,
		Score:       d.Score,
		Income:      agg.TotalIncome,
		Expenses:    agg.TotalExpenses,
		Savings:     agg.Savings,
		Budget:      d.Budget,
		Messages:    s.formatter.Insights(d.Insights),
		Trend:       report.SavingsTrend(agg.NetByDate, 600, 160),
	}
	if agg.HasExpenses() {
		page.Months = report.MonthBars(agg)
		page.Weekdays = report.WeekdayBars(agg)
	}
	for _, c := range agg.ExpenseByCategory {
		share := analytics.MoneyRatio(c.Amount, agg.TotalExpenses)
		page.Categories = append(page.Categories, categoryRow{
			Category: c.Category,
			Amount:   c.Amount,
			Share:    share,
			Scale:    share.InexactFloat64(),
		})
	}
	for i := len(agg.NetByDate) - 1; i >= 0 && len(page.TrendDays) < trendRows; i-- {
		page.TrendDays = append(page.TrendDays, agg.NetByDate[i])
	}
	for i := len(d.Ledger) - 1; i >= 0 && len(page.Recent) < recentRows; i-- {
		page.Recent = append(page.Recent, d.Ledger[i])
	}
	return page
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context(), usernameParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toDashboardJSON(d, s.formatter)).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context(), usernameParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	pdf, err := report.BuildPDF(d, s.pdfOptions)
	if err != nil {
		s.events.LogError(r.Context(), "PDF render failed", err, log.ComponentReport, log.OpRender,
			log.NewFields().WithUser(d.User.Username))
		writeError(w, r, err)
		return
	}
	NewResponse().
		Attachment("application/pdf", report.Filename(d.User.Username)).
		Body(pdf).
		Write(w)
}

// handleDashboardPage renders the HTML dashboard.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	d, err := s.dashboard.Build(r.Context(), usernameParam(r))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "Dashboard build failed", "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	data := s.dashboardPage(d)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": "dashboard.html"})
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
