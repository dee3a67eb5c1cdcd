package analytics

import "findash/internal/core"

const (
	minScore = 0
	maxScore = 100
)

// Score maps the savings rate to an integer health score in [0,100].
// No income scores 0 regardless of expenses.
func Score(income, expenses core.Money) int {
	if income.Cents <= 0 {
		return minScore
	}
	savings := income.Cents - expenses.Cents
	if savings <= 0 {
		return minScore
	}
	// integer division floors for non-negative operands
	score := savings * 100 / income.Cents
	if score > maxScore {
		return maxScore
	}
	return int(score)
}
