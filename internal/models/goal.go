package models

import "github.com/shopspring/decimal"

// GoalLog is one deposit toward a financial goal. Logs are append-only,
// newest first; CurrentAmount on the goal is the cached running sum.
type GoalLog struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"` // ISO YYYY-MM-DD
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

// FinancialGoal is a savings target with a deposit history
type FinancialGoal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Notes         string          `json:"notes"`
	Logs          []GoalLog       `json:"logs"`
}

// ProgressPercent is current/target as a percentage, clamped to [0, 100]
func (g FinancialGoal) ProgressPercent() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(1)
	hundred := decimal.NewFromInt(100)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Reached reports whether the goal has met its target
func (g FinancialGoal) Reached() bool {
	return g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}
