package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"findash/internal/analytics"
	"findash/internal/format"
	"findash/internal/services"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var insightStyles = map[analytics.InsightKind]lipgloss.Style{
	analytics.KindWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
	analytics.KindAlert:    expenseStyle,
	analytics.KindPositive: incomeStyle,
	analytics.KindAdvice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387")),
}

// RenderText lays out the dashboard for a terminal.
func RenderText(d services.Dashboard, fm format.Formatter) string {
	agg := d.Aggregates
	var b strings.Builder

	b.WriteString(titleStyle.Render("Personal Finance Report - " + d.User.Name()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Generated " + d.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")))
	b.WriteString("\n")

	summary := []string{
		row("Income", incomeStyle.Render(fm.Money(agg.TotalIncome))),
		row("Expenses", expenseStyle.Render(fm.Money(agg.TotalExpenses))),
		row("Savings", fm.Money(agg.Savings)),
	}
	if d.Budget != nil {
		summary = append(summary,
			row("Monthly budget", fm.Money(d.Budget.MonthlyBudget)),
			row("Spent this month", fm.Money(agg.CurrentMonthExpenses)))
	}
	summary = append(summary, row("Health score", fmt.Sprintf("%d / 100", d.Score)))
	b.WriteString(boxStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Insights"))
	b.WriteString("\n")
	for _, ins := range d.Insights {
		style, ok := insightStyles[ins.Kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString("  " + style.Render(fm.Insight(ins)) + "\n")
	}

	if len(agg.ExpenseByCategory) > 0 {
		b.WriteString(headingStyle.Render("Spending by category"))
		b.WriteString("\n")
		for _, c := range agg.ExpenseByCategory {
			share := format.Percent(analytics.MoneyRatio(c.Amount, agg.TotalExpenses))
			b.WriteString(fmt.Sprintf("  %-20s %14s %8s\n", c.Category, fm.Money(c.Amount), share))
		}
	}

	if len(agg.ExpenseByMonth) > 0 {
		b.WriteString(headingStyle.Render("Spending by month"))
		b.WriteString("\n")
		for _, m := range agg.ExpenseByMonth {
			b.WriteString(fmt.Sprintf("  %-20s %14s\n", m.Key(), fm.Money(m.Amount)))
		}
	}

	if len(d.Ledger) == 0 {
		b.WriteString(mutedStyle.Render("No transactions yet."))
		b.WriteString("\n")
	}
	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("%-18s %s", label, value)
}
