package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDebtRemaining(t *testing.T) {
	debt := Debt{TotalAmount: d("5000000"), PaidAmount: d("1250000")}
	if got := debt.Remaining(); !got.Equal(d("3750000")) {
		t.Errorf("Remaining = %s, want 3750000", got)
	}
}

func TestDebtEstimatedInstallment(t *testing.T) {
	tests := []struct {
		name string
		debt Debt
		want string
	}{
		{"even split", Debt{TotalAmount: d("1200000"), Installments: 12}, "100000"},
		{"rounded to cents", Debt{TotalAmount: d("1000000"), Installments: 3}, "333333.33"},
		{"zero installments", Debt{TotalAmount: d("1000000"), Installments: 0}, "0"},
		{"negative installments", Debt{TotalAmount: d("1000000"), Installments: -2}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.debt.EstimatedInstallment(); !got.Equal(d(tt.want)) {
				t.Errorf("EstimatedInstallment = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDebtProgressPercent(t *testing.T) {
	tests := []struct {
		name string
		debt Debt
		want string
	}{
		{"halfway", Debt{TotalAmount: d("1000"), PaidAmount: d("500")}, "50"},
		{"rounded", Debt{TotalAmount: d("3000"), PaidAmount: d("1000")}, "33.3"},
		{"overpaid clamps to 100", Debt{TotalAmount: d("1000"), PaidAmount: d("1500")}, "100"},
		{"negative clamps to 0", Debt{TotalAmount: d("1000"), PaidAmount: d("-100")}, "0"},
		{"zero total", Debt{TotalAmount: decimal.Zero, PaidAmount: d("100")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.debt.ProgressPercent(); !got.Equal(d(tt.want)) {
				t.Errorf("ProgressPercent = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGoalProgressAndReached(t *testing.T) {
	goal := FinancialGoal{TargetAmount: d("2000000"), CurrentAmount: d("500000")}
	if got := goal.ProgressPercent(); !got.Equal(d("25")) {
		t.Errorf("ProgressPercent = %s, want 25", got)
	}
	if goal.Reached() {
		t.Error("goal at 25% should not be reached")
	}

	goal.CurrentAmount = d("2500000")
	if got := goal.ProgressPercent(); !got.Equal(d("100")) {
		t.Errorf("overfunded ProgressPercent = %s, want clamped 100", got)
	}
	if !goal.Reached() {
		t.Error("overfunded goal should be reached")
	}
}
