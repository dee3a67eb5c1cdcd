package report

import (
	"testing"
	"time"

	"findash/internal/analytics"
	"findash/internal/core"
)

func TestWeekdayBars(t *testing.T) {
	ledger := []core.Transaction{
		// 2025-03-03 is a Monday, 2025-03-05 a Wednesday.
		{Kind: core.Expense, Amount: core.Money{Cents: 4000}, Category: "Food", Date: core.NewDate(2025, 3, 3)},
		{Kind: core.Expense, Amount: core.Money{Cents: 1000}, Category: "Food", Date: core.NewDate(2025, 3, 5)},
		{Kind: core.Income, Amount: core.Money{Cents: 9000}, Category: "Salary", Date: core.NewDate(2025, 3, 6)},
	}
	bars := WeekdayBars(analytics.Aggregate(ledger, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))

	if len(bars) != 7 {
		t.Fatalf("got %d bars, want 7", len(bars))
	}
	tests := []struct {
		i     int
		label string
		scale float64
	}{
		{0, "Monday", 1},
		{1, "Tuesday", 0},
		{2, "Wednesday", 0.25},
		{3, "Thursday", 0},
		{6, "Sunday", 0},
	}
	for _, tt := range tests {
		if bars[tt.i].Label != tt.label || bars[tt.i].Scale != tt.scale {
			t.Errorf("bar %d = %+v, want %s scale %v", tt.i, bars[tt.i], tt.label, tt.scale)
		}
	}
}

func TestWeekdayBarsEmptyLedger(t *testing.T) {
	bars := WeekdayBars(analytics.Aggregate(nil, time.Now()))
	if len(bars) != 7 {
		t.Fatalf("got %d bars, want 7", len(bars))
	}
	for _, b := range bars {
		if b.Scale != 0 {
			t.Errorf("%s scale = %v, want 0", b.Label, b.Scale)
		}
	}
}

func TestMonthBars(t *testing.T) {
	ledger := []core.Transaction{
		{Kind: core.Expense, Amount: core.Money{Cents: 500}, Category: "Food", Date: core.NewDate(2025, 1, 9)},
		{Kind: core.Expense, Amount: core.Money{Cents: 2000}, Category: "Rent", Date: core.NewDate(2025, 2, 1)},
	}
	bars := MonthBars(analytics.Aggregate(ledger, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)))
	if len(bars) != 2 || bars[0].Label != "2025-01" || bars[1].Label != "2025-02" {
		t.Fatalf("bars = %+v", bars)
	}
	if bars[0].Scale != 0.25 || bars[1].Scale != 1 {
		t.Errorf("scales = %v, %v", bars[0].Scale, bars[1].Scale)
	}
}

func TestSavingsTrend(t *testing.T) {
	series := []analytics.DailyNet{
		{Date: core.NewDate(2025, 3, 1), Cumulative: core.Money{Cents: 10000}},
		{Date: core.NewDate(2025, 3, 2), Cumulative: core.Money{Cents: -10000}},
		{Date: core.NewDate(2025, 3, 3), Cumulative: core.Money{Cents: 0}},
	}
	tr := SavingsTrend(series, 200, 100)

	if tr.Baseline != 50 {
		t.Errorf("baseline = %v, want 50", tr.Baseline)
	}
	want := []Point{{0, 0}, {100, 100}, {200, 50}}
	for i, p := range want {
		if tr.Points[i] != p {
			t.Errorf("point %d = %+v, want %+v", i, tr.Points[i], p)
		}
	}
	if got := tr.SVGPoints(); got != "0.0,0.0 100.0,100.0 200.0,50.0" {
		t.Errorf("SVGPoints = %q", got)
	}
}

func TestSavingsTrendEdges(t *testing.T) {
	tests := []struct {
		name     string
		series   []analytics.DailyNet
		points   []Point
		baseline float64
	}{
		{"empty", nil, nil, 100},
		{"single day", []analytics.DailyNet{{Cumulative: core.Money{Cents: 500}}}, []Point{{100, 0}}, 100},
		{"flat zero", []analytics.DailyNet{{}, {}}, []Point{{0, 100}, {200, 100}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := SavingsTrend(tt.series, 200, 100)
			if tr.Baseline != tt.baseline {
				t.Errorf("baseline = %v, want %v", tr.Baseline, tt.baseline)
			}
			if len(tr.Points) != len(tt.points) {
				t.Fatalf("points = %+v, want %+v", tr.Points, tt.points)
			}
			for i := range tt.points {
				if tr.Points[i] != tt.points[i] {
					t.Errorf("point %d = %+v, want %+v", i, tr.Points[i], tt.points[i])
				}
			}
		})
	}
}
