// Package format renders money, percentages and insight messages for
// people. Nothing here feeds back into calculations.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"findash/internal/analytics"
	"findash/internal/core"
)

// DefaultSymbol is the rupee sign.
const DefaultSymbol = "₹"

// Formatter renders values with a currency symbol.
type Formatter struct {
	Symbol string
}

// New returns a Formatter, falling back to DefaultSymbol.
func New(symbol string) Formatter {
	if strings.TrimSpace(symbol) == "" {
		symbol = DefaultSymbol
	}
	return Formatter{Symbol: symbol}
}

// Money renders m with thousands separators, e.g. ₹1,234.56.
func (f Formatter) Money(m core.Money) string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	return fmt.Sprintf("%s%s%s.%02d", sign, f.Symbol, group(whole), cents%100)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Percent renders a ratio as a whole percentage. Halves round to even,
// so 0.125 -> "12%" and 0.135 -> "14%".
func Percent(ratio decimal.Decimal) string {
	return ratio.Shift(2).RoundBank(0).String() + "%"
}

// Insight renders the user-facing sentence for ins.
func (f Formatter) Insight(ins analytics.Insight) string {
	switch ins.Kind {
	case analytics.KindWarning:
		return fmt.Sprintf("⚠ You spend %s of your expenses on %s. Consider reducing it.", Percent(ins.Share), ins.Category)
	case analytics.KindPositive:
		return fmt.Sprintf("✅ Your highest expense category is %s (%s of expenses).", ins.Category, Percent(ins.Share))
	case analytics.KindAlert:
		return fmt.Sprintf("🔴 You exceeded your monthly budget of %s. You've spent %s this month.", f.Money(ins.Budget), f.Money(ins.Spent))
	case analytics.KindInfo:
		return fmt.Sprintf("🟢 You used %s of your monthly budget (%s of %s).", Percent(ins.Share), f.Money(ins.Spent), f.Money(ins.Budget))
	case analytics.KindAdvice:
		return "💡 Your savings are very low. Try reducing non-essential spending or increasing income."
	default:
		return "No major issues detected. Keep tracking your expenses!"
	}
}

// Insights renders every insight in order.
func (f Formatter) Insights(list []analytics.Insight) []string {
	out := make([]string, 0, len(list))
	for _, ins := range list {
		out = append(out, f.Insight(ins))
	}
	return out
}
