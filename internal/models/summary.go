package models

import "github.com/shopspring/decimal"

// PeriodSummary is the realized cash flow of one half-month period.
// Available deliberately excludes unpaid expenses.
type PeriodSummary struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalPaidExpenses decimal.Decimal `json:"total_paid_expenses"`
	Available         decimal.Decimal `json:"available"`
}

// MonthSummary is the rolled-up view of a monthly ledger
type MonthSummary struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"` // paid + unpaid
	TotalPaidExpenses decimal.Decimal `json:"total_paid_expenses"`
	PendingDebt       decimal.Decimal `json:"pending_debt"` // expenses not yet paid
	TotalSavings      decimal.Decimal `json:"total_savings"`
	FinalTotal        decimal.Decimal `json:"final_total"` // income - paid - savings
	Available         decimal.Decimal `json:"available"`
}

// CategoryTotal is one slice of the spending-by-category breakdown
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// HistoryPoint is one month of the dashboard trend series. Planned values
// come from the config history snapshot of that month, when one exists.
type HistoryPoint struct {
	YearMonth       YearMonth       `json:"year_month"`
	Income          decimal.Decimal `json:"income"`
	Expenses        decimal.Decimal `json:"expenses"`
	Savings         decimal.Decimal `json:"savings"`
	DebtPaid        decimal.Decimal `json:"debt_paid"`
	PlannedIncome   decimal.Decimal `json:"planned_income"`
	PlannedExpenses decimal.Decimal `json:"planned_expenses"`
}

// Dashboard is the entity overview
type Dashboard struct {
	TotalOutstandingDebt decimal.Decimal `json:"total_outstanding_debt"`
	TotalGoalSavings     decimal.Decimal `json:"total_goal_savings"`
	CurrentMonthIncome   decimal.Decimal `json:"current_month_income"`
	CurrentMonthNet      decimal.Decimal `json:"current_month_net"`
	History              []HistoryPoint  `json:"history"`
	TopCategories        []CategoryTotal `json:"top_categories"`
	Goals                []FinancialGoal `json:"goals"`
}
