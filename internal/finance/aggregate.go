// Package finance is the calculation engine: pure functions turning ledger
// and config documents into derived metrics. Nothing in here performs I/O
// or mutates its inputs.
package finance

import (
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/shopspring/decimal"
)

// AggregatePeriod reduces one half-month period to its totals. Available
// is realized cash flow: income minus expenses actually paid. Unpaid
// expenses do not count against it.
func AggregatePeriod(p models.Period) models.PeriodSummary {
	income := decimal.Zero
	for _, in := range p.Incomes {
		income = income.Add(in.Amount)
	}

	paid := decimal.Zero
	for _, e := range p.Expenses {
		if e.Paid {
			paid = paid.Add(e.Amount)
		}
	}

	return models.PeriodSummary{
		TotalIncome:       income,
		TotalPaidExpenses: paid,
		Available:         income.Sub(paid),
	}
}

// AggregateMonth rolls both periods up. PendingDebt is the unpaid expense
// total; FinalTotal additionally subtracts the savings set aside.
func AggregateMonth(l models.MonthlyLedger) models.MonthSummary {
	income := decimal.Zero
	expenses := decimal.Zero
	paid := decimal.Zero

	for _, p := range []models.Period{l.Period1, l.Period2} {
		for _, in := range p.Incomes {
			income = income.Add(in.Amount)
		}
		for _, e := range p.Expenses {
			expenses = expenses.Add(e.Amount)
			if e.Paid {
				paid = paid.Add(e.Amount)
			}
		}
	}

	savings := l.Period1.Savings.Add(l.Period2.Savings)

	return models.MonthSummary{
		TotalIncome:       income,
		TotalExpenses:     expenses,
		TotalPaidExpenses: paid,
		PendingDebt:       expenses.Sub(paid),
		TotalSavings:      savings,
		FinalTotal:        income.Sub(paid).Sub(savings),
		Available:         income.Sub(paid),
	}
}

// CategoryTotals breaks the month's expenses down by category, largest
// first, truncated to limit entries (0 = no limit).
func CategoryTotals(l models.MonthlyLedger, limit int) []models.CategoryTotal {
	totals := map[string]decimal.Decimal{}
	order := []string{}
	for _, p := range []models.Period{l.Period1, l.Period2} {
		for _, e := range p.Expenses {
			cat := e.Category
			if cat == "" {
				cat = "other"
			}
			if _, ok := totals[cat]; !ok {
				order = append(order, cat)
			}
			totals[cat] = totals[cat].Add(e.Amount)
		}
	}

	out := make([]models.CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, models.CategoryTotal{Category: cat, Total: totals[cat]})
	}
	// Insertion sort keeps the ordering stable for equal totals.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Total.GreaterThan(out[j-1].Total); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DebtPaidTotal sums the month's expenses in the debt payment category,
// paid or not, matching the trend series of the dashboard.
func DebtPaidTotal(l models.MonthlyLedger) decimal.Decimal {
	total := decimal.Zero
	for _, p := range []models.Period{l.Period1, l.Period2} {
		for _, e := range p.Expenses {
			if e.Category == models.CategoryDebtPayment {
				total = total.Add(e.Amount)
			}
		}
	}
	return total
}
