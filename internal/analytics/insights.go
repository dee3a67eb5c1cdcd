package analytics

import (
	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// InsightKind is the presentation style of an insight.
type InsightKind string

const (
	KindWarning  InsightKind = "warning"
	KindPositive InsightKind = "positive"
	KindAlert    InsightKind = "alert"
	KindInfo     InsightKind = "info"
	KindAdvice   InsightKind = "advice"
	KindNeutral  InsightKind = "neutral"
)

// Rule identifies which evaluator produced an insight.
type Rule string

const (
	RuleTopCategory Rule = "top_category"
	RuleBudget      Rule = "budget"
	RuleLowSavings  Rule = "low_savings"
	RuleFallback    Rule = "fallback"
)

var (
	// TopCategoryThreshold is the expense share above which the largest
	// category is flagged.
	TopCategoryThreshold = decimal.RequireFromString("0.40")
	// LowSavingsThreshold is the savings rate below which advice is given.
	LowSavingsThreshold = decimal.RequireFromString("0.05")
)

// Insight is a structured observation. Only the fields relevant to Rule are
// set; message text is produced by the format package.
type Insight struct {
	Kind     InsightKind
	Rule     Rule
	Category string
	Share    decimal.Decimal
	Budget   core.Money
	Spent    core.Money
}

type insightInput struct {
	agg      Aggregates
	income   core.Money
	expenses core.Money
	budget   *core.Budget
}

type evaluator func(insightInput) (Insight, bool)

// rules run in display order. Each is independent of the others.
var rules = []evaluator{
	topCategoryRule,
	budgetRule,
	lowSavingsRule,
}

// GenerateInsights evaluates the rule chain. budget is nil when the user has
// not set one. The result is never empty.
func GenerateInsights(agg Aggregates, income, expenses core.Money, budget *core.Budget) []Insight {
	in := insightInput{agg: agg, income: income, expenses: expenses, budget: budget}

	var out []Insight
	for _, rule := range rules {
		if ins, ok := rule(in); ok {
			out = append(out, ins)
		}
	}
	if len(out) == 0 {
		out = append(out, Insight{Kind: KindNeutral, Rule: RuleFallback})
	}
	return out
}

func topCategoryRule(in insightInput) (Insight, bool) {
	if !in.agg.HasExpenses() {
		return Insight{}, false
	}
	top := in.agg.ExpenseByCategory[0]
	share := MoneyRatio(top.Amount, in.expenses)
	kind := KindPositive
	if share.GreaterThan(TopCategoryThreshold) {
		kind = KindWarning
	}
	return Insight{
		Kind:     kind,
		Rule:     RuleTopCategory,
		Category: top.Category,
		Share:    share,
		Spent:    top.Amount,
	}, true
}

func budgetRule(in insightInput) (Insight, bool) {
	if in.budget == nil {
		return Insight{}, false
	}
	limit := in.budget.MonthlyBudget
	spent := in.agg.CurrentMonthExpenses
	if spent.Cents > limit.Cents {
		return Insight{Kind: KindAlert, Rule: RuleBudget, Budget: limit, Spent: spent}, true
	}
	return Insight{
		Kind:   KindInfo,
		Rule:   RuleBudget,
		Share:  MoneyRatio(spent, limit),
		Budget: limit,
		Spent:  spent,
	}, true
}

func lowSavingsRule(in insightInput) (Insight, bool) {
	if in.income.Cents <= 0 {
		return Insight{}, false
	}
	rate := MoneyRatio(in.income.Sub(in.expenses), in.income)
	if !rate.LessThan(LowSavingsThreshold) {
		return Insight{}, false
	}
	return Insight{Kind: KindAdvice, Rule: RuleLowSavings, Share: rate}, true
}
