// Package report renders a user's dashboard as a PDF document or as
// styled terminal text.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/phpdave11/gofpdf"

	"findash/internal/analytics"
	"findash/internal/format"
	"findash/internal/services"
)

// latinSymbol replaces the rupee sign, which the core PDF fonts cannot encode.
const latinSymbol = "Rs "

// PDFOptions tunes the PDF renderer.
//
// The built-in Helvetica only covers cp1252: characters outside it (for
// example Devanagari category names) print as dots. Set FontPath to a
// TrueType font with the needed glyphs to render any UTF-8 text.
type PDFOptions struct {
	FontPath string
}

const (
	pageWidth   = 170.0 // A4 minus 20mm margins
	chartHeight = 45.0
	barWidth    = 90.0
	pageBottom  = 277.0
)

// Filename is the download name for a user's report.
func Filename(username string) string {
	return fmt.Sprintf("finance_report_%s.pdf", username)
}

type pdfDoc struct {
	*gofpdf.Fpdf
	family string
	tr     func(string) string
	fm     format.Formatter
}

func newPDFDoc(opts PDFOptions) (*pdfDoc, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	doc := &pdfDoc{Fpdf: pdf, family: "Helvetica", fm: format.New(latinSymbol)}

	if opts.FontPath == "" {
		doc.tr = pdf.UnicodeTranslatorFromDescriptor("")
		return doc, nil
	}
	pdf.AddUTF8Font("body", "", opts.FontPath)
	pdf.AddUTF8Font("body", "B", opts.FontPath)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font %s: %w", opts.FontPath, err)
	}
	doc.family = "body"
	doc.tr = func(s string) string { return s }
	doc.fm = format.New("₹")
	return doc, nil
}

func (p *pdfDoc) heading(text string) {
	p.SetFont(p.family, "B", 13)
	p.Cell(0, 8, p.tr(text))
	p.Ln(8)
}

func (p *pdfDoc) body(style string) {
	p.SetFont(p.family, style, 11)
}

// ensureRoom starts a new page when h millimetres do not fit.
func (p *pdfDoc) ensureRoom(h float64) {
	if p.GetY()+h > pageBottom {
		p.AddPage()
	}
}

// BuildPDF renders the dashboard into an A4 PDF.
func BuildPDF(d services.Dashboard, opts PDFOptions) ([]byte, error) {
	p, err := newPDFDoc(opts)
	if err != nil {
		return nil, err
	}
	agg := d.Aggregates

	p.SetTitle("Personal Finance Report", true)
	p.AddPage()

	p.SetFont(p.family, "B", 18)
	p.Cell(0, 10, p.tr("Personal Finance Report - "+d.User.Name()))
	p.Ln(10)

	p.SetFont(p.family, "", 10)
	p.Cell(0, 6, "Generated: "+d.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	p.Ln(10)

	p.heading("Summary")
	p.body("")
	line := func(label, value string) {
		p.Cell(60, 7, label)
		p.Cell(60, 7, p.tr(value))
		p.Ln(7)
	}
	line("Total income", p.fm.Money(agg.TotalIncome))
	line("Total expenses", p.fm.Money(agg.TotalExpenses))
	line("Savings", p.fm.Money(agg.Savings))
	if d.Budget != nil {
		line("Monthly budget", p.fm.Money(d.Budget.MonthlyBudget))
		line("Spent this month", p.fm.Money(agg.CurrentMonthExpenses))
	}
	line("Health score", fmt.Sprintf("%d / 100", d.Score))
	p.Ln(4)

	p.heading("Insights")
	p.body("")
	for _, msg := range p.fm.Insights(d.Insights) {
		p.MultiCell(0, 7, p.tr("- "+plain(msg)), "", "L", false)
	}
	p.Ln(4)

	if agg.HasExpenses() {
		p.categoryTable(agg)
		p.bars("Monthly Expenses", "Month", MonthBars(agg))
		p.bars("Expenses by Weekday", "Day", WeekdayBars(agg))
	}
	if len(agg.NetByDate) > 0 {
		p.savingsTrend(agg.NetByDate)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *pdfDoc) categoryTable(agg analytics.Aggregates) {
	p.ensureRoom(30)
	p.heading("Category Breakdown")

	p.body("B")
	p.Cell(60, 7, "Category")
	p.Cell(40, 7, "Amount")
	p.Cell(20, 7, "Share")
	p.Ln(7)

	p.body("")
	p.SetFillColor(185, 28, 28)
	for _, c := range agg.ExpenseByCategory {
		share := analytics.MoneyRatio(c.Amount, agg.TotalExpenses)
		p.ensureRoom(7)
		p.Cell(60, 7, p.tr(c.Category))
		p.Cell(40, 7, p.tr(p.fm.Money(c.Amount)))
		p.Cell(20, 7, format.Percent(share))
		if w := share.InexactFloat64() * (pageWidth - 120); w > 0 {
			p.Rect(p.GetX(), p.GetY()+1.5, w, 4, "F")
		}
		p.Ln(7)
	}
	p.Ln(4)
}

// bars draws a labelled horizontal bar per entry next to its amount.
func (p *pdfDoc) bars(title, label string, bars []Bar) {
	p.ensureRoom(30)
	p.heading(title)

	p.body("B")
	p.Cell(35, 7, label)
	p.Cell(45, 7, "Amount")
	p.Ln(7)

	p.body("")
	p.SetFillColor(185, 28, 28)
	for _, b := range bars {
		p.ensureRoom(7)
		p.Cell(35, 7, b.Label)
		p.Cell(45, 7, p.tr(p.fm.Money(b.Amount)))
		if w := b.Scale * barWidth; w > 0 {
			p.Rect(p.GetX(), p.GetY()+1.5, w, 4, "F")
		}
		p.Ln(7)
	}
	p.Ln(4)
}

// savingsTrend plots cumulative savings per day as a line over a zero axis.
func (p *pdfDoc) savingsTrend(series []analytics.DailyNet) {
	p.ensureRoom(chartHeight + 30)
	p.heading("Cumulative Savings")

	left, top := p.GetX(), p.GetY()
	trend := SavingsTrend(series, pageWidth, chartHeight)

	p.SetDrawColor(200, 200, 200)
	p.Rect(left, top, pageWidth, chartHeight, "D")
	p.Line(left, top+trend.Baseline, left+pageWidth, top+trend.Baseline)

	p.SetDrawColor(21, 128, 61)
	p.SetLineWidth(0.6)
	pts := trend.Points
	if len(pts) == 1 {
		p.Circle(left+pts[0].X, top+pts[0].Y, 0.8, "D")
	}
	for i := 1; i < len(pts); i++ {
		p.Line(left+pts[i-1].X, top+pts[i-1].Y, left+pts[i].X, top+pts[i].Y)
	}
	p.SetLineWidth(0.2)
	p.SetDrawColor(0, 0, 0)

	p.SetY(top + chartHeight + 2)
	first, last := series[0], series[len(series)-1]
	p.SetFont(p.family, "", 9)
	p.Cell(pageWidth/2, 5, first.Date.String())
	p.CellFormat(pageWidth/2, 5, last.Date.String(), "", 0, "R", false, 0, "")
	p.Ln(7)
	p.body("")
	p.Cell(0, 7, p.tr("Savings to date: "+p.fm.Money(last.Cumulative)))
	p.Ln(9)
}

// plain drops the leading emoji marker from an insight sentence.
func plain(msg string) string {
	return strings.TrimLeftFunc(msg, func(r rune) bool {
		return r > unicode.MaxASCII || unicode.IsSpace(r)
	})
}
