package services

import (
	"context"
	"testing"
	"time"

	"findash/internal/analytics"
	"findash/internal/core"
)

func TestDashboardBuild(t *testing.T) {
	ledger := newTestLedger(nil)
	dash := NewDashboardService(ledger)
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	dash.now = func() time.Time { return now }
	ctx := context.Background()

	entries := []core.Transaction{
		{Kind: core.Income, Amount: core.Money{Cents: 100000}, Category: "Salary", Date: core.NewDate(2024, 6, 1)},
		{Kind: core.Expense, Amount: core.Money{Cents: 50000}, Category: "Rent", Date: core.NewDate(2024, 6, 2)},
		{Kind: core.Expense, Amount: core.Money{Cents: 20000}, Category: "Food", Date: core.NewDate(2024, 5, 28)},
	}
	for _, tx := range entries {
		if _, err := ledger.AddTransaction(ctx, "hank", tx); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ledger.SetBudget(ctx, "hank", core.Money{Cents: 40000}); err != nil {
		t.Fatal(err)
	}

	d, err := dash.Build(ctx, "hank")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.User.Username != "hank" || len(d.Ledger) != 3 {
		t.Fatalf("user/ledger = %+v / %d", d.User, len(d.Ledger))
	}
	if d.Score != 30 {
		t.Errorf("score = %d, want 30", d.Score)
	}
	if d.Aggregates.CurrentMonthExpenses.Cents != 50000 {
		t.Errorf("current month = %v", d.Aggregates.CurrentMonthExpenses)
	}
	if !d.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %v", d.GeneratedAt)
	}

	rules := make(map[analytics.Rule]analytics.InsightKind)
	for _, ins := range d.Insights {
		rules[ins.Rule] = ins.Kind
	}
	if rules[analytics.RuleTopCategory] != analytics.KindWarning {
		t.Errorf("top category insight = %v", rules[analytics.RuleTopCategory])
	}
	if rules[analytics.RuleBudget] != analytics.KindAlert {
		t.Errorf("budget insight = %v", rules[analytics.RuleBudget])
	}
}

func TestDashboardBuildEmpty(t *testing.T) {
	dash := NewDashboardService(newTestLedger(nil))
	d, err := dash.Build(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if d.Budget != nil || d.Score != 0 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if len(d.Insights) != 1 || d.Insights[0].Rule != analytics.RuleFallback {
		t.Errorf("insights = %+v", d.Insights)
	}
}

func TestDashboardBuildRejectsEmptyUsername(t *testing.T) {
	dash := NewDashboardService(newTestLedger(nil))
	if _, err := dash.Build(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}
