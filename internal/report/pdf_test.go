package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"findash/internal/analytics"
	"findash/internal/core"
	"findash/internal/services"
)

func TestFilename(t *testing.T) {
	if got := Filename("asha"); got != "finance_report_asha.pdf" {
		t.Errorf("Filename = %q", got)
	}
}

func TestPlain(t *testing.T) {
	tests := map[string]string{
		"⚠ You spend 50% of your expenses on Rent. Consider reducing it.": "You spend 50% of your expenses on Rent. Consider reducing it.",
		"💡 Your savings are very low.":                                     "Your savings are very low.",
		"No major issues detected.":                                        "No major issues detected.",
	}
	for in, want := range tests {
		if got := plain(in); got != want {
			t.Errorf("plain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPDF(t *testing.T) {
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	ledger := []core.Transaction{
		{Kind: core.Income, Amount: core.Money{Cents: 5000000}, Category: "Salary", Date: core.NewDate(2025, 3, 1)},
		{Kind: core.Expense, Amount: core.Money{Cents: 2000000}, Category: "Rent", Date: core.NewDate(2025, 3, 2)},
		{Kind: core.Expense, Amount: core.Money{Cents: 500000}, Category: "Food", Date: core.NewDate(2025, 2, 12)},
	}
	agg := analytics.Aggregate(ledger, now)
	budget := &core.Budget{MonthlyBudget: core.Money{Cents: 1500000}}

	tests := []struct {
		name string
		d    services.Dashboard
	}{
		{
			name: "full",
			d: services.Dashboard{
				User:        core.User{Username: "asha", DisplayName: "Asha"},
				Budget:      budget,
				Aggregates:  agg,
				Score:       analytics.Score(agg.TotalIncome, agg.TotalExpenses),
				Insights:    analytics.GenerateInsights(agg, agg.TotalIncome, agg.TotalExpenses, budget),
				GeneratedAt: now,
			},
		},
		{
			name: "empty ledger",
			d: services.Dashboard{
				User:        core.User{Username: "new"},
				Insights:    analytics.GenerateInsights(analytics.Aggregates{}, core.Money{}, core.Money{}, nil),
				GeneratedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := BuildPDF(tt.d, PDFOptions{})
			if err != nil {
				t.Fatalf("BuildPDF: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Errorf("output does not look like a PDF: %q", out[:min(len(out), 16)])
			}
		})
	}
}

func TestBuildPDFLongLedgerPaginates(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	var ledger []core.Transaction
	for i := 0; i < 40; i++ {
		ledger = append(ledger,
			core.Transaction{Kind: core.Income, Amount: core.Money{Cents: 100000}, Category: "Salary", Date: core.NewDate(2025, 1+i%6, 1+i%28)},
			core.Transaction{Kind: core.Expense, Amount: core.Money{Cents: int64(1000 * (i + 1))}, Category: fmt.Sprintf("Cat%02d", i), Date: core.NewDate(2025, 1+i%6, 1+i%28)},
		)
	}
	agg := analytics.Aggregate(ledger, now)
	d := services.Dashboard{
		User:        core.User{Username: "long"},
		Aggregates:  agg,
		Insights:    analytics.GenerateInsights(agg, agg.TotalIncome, agg.TotalExpenses, nil),
		GeneratedAt: now,
	}
	out, err := BuildPDF(d, PDFOptions{})
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
	if pages := bytes.Count(out, []byte("/Type /Page\n")); pages < 2 {
		t.Errorf("expected the report to span several pages, got %d", pages)
	}
}

func TestBuildPDFMissingFont(t *testing.T) {
	d := services.Dashboard{User: core.User{Username: "x"}}
	_, err := BuildPDF(d, PDFOptions{FontPath: "/nonexistent/font.ttf"})
	if err == nil || !strings.Contains(err.Error(), "load font") {
		t.Fatalf("expected font error, got %v", err)
	}
}

func TestBuildPDFUTF8Font(t *testing.T) {
	const font = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	if _, err := os.Stat(font); err != nil {
		t.Skip("DejaVuSans not installed")
	}
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	ledger := []core.Transaction{
		{Kind: core.Expense, Amount: core.Money{Cents: 25000}, Category: "किराना", Date: core.NewDate(2025, 3, 2)},
	}
	agg := analytics.Aggregate(ledger, now)
	d := services.Dashboard{
		User:        core.User{Username: "priya", DisplayName: "प्रिया"},
		Aggregates:  agg,
		Insights:    analytics.GenerateInsights(agg, agg.TotalIncome, agg.TotalExpenses, nil),
		GeneratedAt: now,
	}
	out, err := BuildPDF(d, PDFOptions{FontPath: font})
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
	if !bytes.Contains(out, []byte("FontFile2")) {
		t.Errorf("expected an embedded TrueType font")
	}
}
