package report

import (
	"fmt"
	"strings"

	"findash/internal/analytics"
	"findash/internal/core"
)

// Bar is one labelled value scaled against the largest value of its series.
type Bar struct {
	Label  string
	Amount core.Money
	Scale  float64 // 0..1
}

// WeekdayBars returns the seven weekday expense totals, Monday first.
func WeekdayBars(agg analytics.Aggregates) []Bar {
	bars := make([]Bar, len(agg.ExpenseByWeekday))
	for i, w := range agg.ExpenseByWeekday {
		bars[i] = Bar{Label: w.Weekday.String(), Amount: w.Amount}
	}
	return scale(bars)
}

// MonthBars returns one bar per month with expenses, chronologically.
func MonthBars(agg analytics.Aggregates) []Bar {
	bars := make([]Bar, len(agg.ExpenseByMonth))
	for i, m := range agg.ExpenseByMonth {
		bars[i] = Bar{Label: m.Key(), Amount: m.Amount}
	}
	return scale(bars)
}

func scale(bars []Bar) []Bar {
	var top core.Money
	for _, b := range bars {
		if b.Amount.Cents > top.Cents {
			top = b.Amount
		}
	}
	for i := range bars {
		bars[i].Scale = analytics.MoneyRatio(bars[i].Amount, top).InexactFloat64()
	}
	return bars
}

// Point is a position on a chart canvas, y growing downward.
type Point struct {
	X, Y float64
}

// Trend is the cumulative savings series laid out on a width×height canvas.
// Baseline is the y coordinate of zero.
type Trend struct {
	Points   []Point
	Baseline float64
	Width    float64
	Height   float64
}

// SavingsTrend places each day's cumulative savings on the canvas. The
// vertical range always includes zero so the baseline stays visible.
func SavingsTrend(series []analytics.DailyNet, width, height float64) Trend {
	t := Trend{Width: width, Height: height, Baseline: height}
	if len(series) == 0 {
		return t
	}

	var lo, hi int64
	for _, d := range series {
		lo = min(lo, d.Cumulative.Cents)
		hi = max(hi, d.Cumulative.Cents)
	}
	span := float64(hi - lo)
	y := func(cents int64) float64 {
		if span == 0 {
			return height
		}
		return height - float64(cents-lo)/span*height
	}
	t.Baseline = y(0)

	t.Points = make([]Point, len(series))
	for i, d := range series {
		x := width / 2
		if len(series) > 1 {
			x = float64(i) * width / float64(len(series)-1)
		}
		t.Points[i] = Point{X: x, Y: y(d.Cumulative.Cents)}
	}
	return t
}

// SVGPoints formats the points for an SVG polyline.
func (t Trend) SVGPoints() string {
	parts := make([]string, len(t.Points))
	for i, p := range t.Points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
