package http

import (
	"time"

	"findash/internal/analytics"
	"findash/internal/core"
	"findash/internal/format"
	"findash/internal/services"
)

// Amounts are rendered in rupees with two decimals as JSON strings so no
// precision is lost.

type transactionJSON struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Note      string    `json:"note,omitempty"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Amount:    tx.Amount.String(),
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date.String(),
		CreatedAt: tx.CreatedAt,
	}
}

type budgetJSON struct {
	MonthlyBudget string    `json:"monthly_budget"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{MonthlyBudget: b.MonthlyBudget.String(), UpdatedAt: b.UpdatedAt}
}

type insightJSON struct {
	Kind     string `json:"kind"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Share    string `json:"share,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Spent    string `json:"spent,omitempty"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Share    string `json:"share"`
}

type monthJSON struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

type dailyJSON struct {
	Date       string `json:"date"`
	Net        string `json:"net"`
	Cumulative string `json:"cumulative"`
}

type weekdayJSON struct {
	Weekday string `json:"weekday"`
	Amount  string `json:"amount"`
}

type dashboardJSON struct {
	User struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
	Totals struct {
		Income              string `json:"income"`
		Expenses            string `json:"expenses"`
		Savings             string `json:"savings"`
		CurrentMonthExpense string `json:"current_month_expenses"`
	} `json:"totals"`
	Score        int            `json:"score"`
	Budget       *budgetJSON    `json:"budget"`
	ByCategory   []categoryJSON `json:"expense_by_category"`
	ByMonth      []monthJSON    `json:"expense_by_month"`
	NetByDate    []dailyJSON    `json:"net_by_date"`
	ByWeekday    []weekdayJSON  `json:"expense_by_weekday"`
	Insights     []insightJSON  `json:"insights"`
	Transactions int            `json:"transaction_count"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

func toDashboardJSON(d services.Dashboard, fm format.Formatter) dashboardJSON {
	agg := d.Aggregates
	var out dashboardJSON
	out.User.Username = d.User.Username
	out.User.DisplayName = d.User.Name()
	out.Totals.Income = agg.TotalIncome.String()
	out.Totals.Expenses = agg.TotalExpenses.String()
	out.Totals.Savings = agg.Savings.String()
	out.Totals.CurrentMonthExpense = agg.CurrentMonthExpenses.String()
	out.Score = d.Score
	if d.Budget != nil {
		b := toBudgetJSON(*d.Budget)
		out.Budget = &b
	}
	out.Transactions = len(d.Ledger)
	out.GeneratedAt = d.GeneratedAt

	out.ByCategory = make([]categoryJSON, 0, len(agg.ExpenseByCategory))
	for _, c := range agg.ExpenseByCategory {
		out.ByCategory = append(out.ByCategory, categoryJSON{
			Category: c.Category,
			Amount:   c.Amount.String(),
			Share:    analytics.MoneyRatio(c.Amount, agg.TotalExpenses).StringFixed(4),
		})
	}
	out.ByMonth = make([]monthJSON, 0, len(agg.ExpenseByMonth))
	for _, m := range agg.ExpenseByMonth {
		out.ByMonth = append(out.ByMonth, monthJSON{Month: m.Key(), Amount: m.Amount.String()})
	}
	out.NetByDate = make([]dailyJSON, 0, len(agg.NetByDate))
	for _, n := range agg.NetByDate {
		out.NetByDate = append(out.NetByDate, dailyJSON{Date: n.Date.String(), Net: n.Net.String(), Cumulative: n.Cumulative.String()})
	}
	out.ByWeekday = make([]weekdayJSON, 0, len(agg.ExpenseByWeekday))
	for _, w := range agg.ExpenseByWeekday {
		out.ByWeekday = append(out.ByWeekday, weekdayJSON{Weekday: w.Weekday.String(), Amount: w.Amount.String()})
	}
	out.Insights = make([]insightJSON, 0, len(d.Insights))
	for _, ins := range d.Insights {
		j := insightJSON{
			Kind:     string(ins.Kind),
			Rule:     string(ins.Rule),
			Message:  fm.Insight(ins),
			Category: ins.Category,
		}
		switch ins.Rule {
		case analytics.RuleTopCategory:
			j.Share = ins.Share.StringFixed(4)
		case analytics.RuleBudget:
			j.Budget = ins.Budget.String()
			j.Spent = ins.Spent.String()
			if ins.Kind == analytics.KindInfo {
				j.Share = ins.Share.StringFixed(4)
			}
		}
		out.Insights = append(out.Insights, j)
	}
	return out
}
