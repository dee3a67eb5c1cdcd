package analytics

import (
	"fmt"
	"sort"
	"time"

	"findash/internal/core"
)

// CategoryAmount represents an expense total for one category.
type CategoryAmount struct {
	Category string
	Amount   core.Money
}

// MonthAmount is the expense total for a calendar month.
type MonthAmount struct {
	Year   int
	Month  time.Month
	Amount core.Money
}

// Key formats the month as YYYY-MM.
func (m MonthAmount) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DailyNet is income minus expenses for one day plus the running total.
type DailyNet struct {
	Date       core.Date
	Net        core.Money
	Cumulative core.Money
}

// WeekdayAmount is the expense total for one day of the week.
type WeekdayAmount struct {
	Weekday time.Weekday
	Amount  core.Money
}

// Aggregates holds everything derived from a single ledger pass.
type Aggregates struct {
	TotalIncome          core.Money
	TotalExpenses        core.Money
	Savings              core.Money
	ExpenseByCategory    []CategoryAmount
	ExpenseByMonth       []MonthAmount
	NetByDate            []DailyNet
	ExpenseByWeekday     []WeekdayAmount
	CurrentMonthExpenses core.Money
}

// HasExpenses reports whether at least one expense contributed.
func (a Aggregates) HasExpenses() bool {
	return len(a.ExpenseByCategory) > 0
}

// weekOrder lists weekdays Monday first.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// weekIndex maps a time.Weekday to its Monday-first position.
func weekIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Aggregate reduces ledger into totals and bucketed sums. now selects the
// current month for CurrentMonthExpenses. The ledger need not be sorted.
func Aggregate(ledger []core.Transaction, now time.Time) Aggregates {
	var (
		agg        Aggregates
		byCategory = map[string]int64{}
		byMonth    = map[[2]int]int64{}
		byDate     = map[time.Time]int64{}
		byWeekday  [7]int64
		monthStart = core.FirstOfMonth(now)
	)

	for _, tx := range ledger {
		day := tx.Date.Time
		byDate[day] += tx.Signed().Cents

		switch tx.Kind {
		case core.Income:
			agg.TotalIncome = agg.TotalIncome.Add(tx.Amount)
		case core.Expense:
			agg.TotalExpenses = agg.TotalExpenses.Add(tx.Amount)
			byCategory[tx.Category] += tx.Amount.Cents
			byMonth[[2]int{day.Year(), int(day.Month())}] += tx.Amount.Cents
			byWeekday[weekIndex(day.Weekday())] += tx.Amount.Cents
			if !tx.Date.Before(monthStart) {
				agg.CurrentMonthExpenses = agg.CurrentMonthExpenses.Add(tx.Amount)
			}
		}
	}
	agg.Savings = agg.TotalIncome.Sub(agg.TotalExpenses)

	agg.ExpenseByCategory = make([]CategoryAmount, 0, len(byCategory))
	for name, cents := range byCategory {
		agg.ExpenseByCategory = append(agg.ExpenseByCategory, CategoryAmount{Category: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(agg.ExpenseByCategory, func(i, j int) bool {
		a, b := agg.ExpenseByCategory[i], agg.ExpenseByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Category < b.Category
	})

	agg.ExpenseByMonth = make([]MonthAmount, 0, len(byMonth))
	for ym, cents := range byMonth {
		agg.ExpenseByMonth = append(agg.ExpenseByMonth, MonthAmount{Year: ym[0], Month: time.Month(ym[1]), Amount: core.Money{Cents: cents}})
	}
	sort.Slice(agg.ExpenseByMonth, func(i, j int) bool {
		a, b := agg.ExpenseByMonth[i], agg.ExpenseByMonth[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	days := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	agg.NetByDate = make([]DailyNet, 0, len(days))
	var running int64
	for _, d := range days {
		running += byDate[d]
		agg.NetByDate = append(agg.NetByDate, DailyNet{
			Date:       core.Date{Time: d},
			Net:        core.Money{Cents: byDate[d]},
			Cumulative: core.Money{Cents: running},
		})
	}

	agg.ExpenseByWeekday = make([]WeekdayAmount, 7)
	for i, wd := range weekOrder {
		agg.ExpenseByWeekday[i] = WeekdayAmount{Weekday: wd, Amount: core.Money{Cents: byWeekday[i]}}
	}

	return agg
}
