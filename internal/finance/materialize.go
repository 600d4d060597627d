package finance

import (
	"time"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetNamespace seeds the UUIDv5 ids of materialized entries so that
// applying the same budget to the same month twice yields an identical
// document.
var budgetNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

var two = decimal.NewFromInt(2)

// MaterializeBudget builds a fresh monthly ledger from the recurring
// budget variables. The result replaces any existing month wholesale;
// existing ledger state is never consulted.
//
// Monthly frequency places every amount whole into period 1. Biweekly
// halves incomes across both periods; an expense with a tentative payment
// day is a dated bill and lands whole in the period holding that day,
// while expenses without one are running costs split half and half.
func MaterializeBudget(cfg models.EntityConfig, freq models.PayFrequency, ref time.Time) models.MonthlyLedger {
	ledger := models.BlankLedger()
	monthly := freq != models.PayBiweekly

	for _, inc := range cfg.BudgetVariables.Incomes {
		if monthly {
			ledger.Period1.Incomes = append(ledger.Period1.Incomes, models.Income{
				ID:          materializedID(inc.ID, models.Period1),
				Description: inc.Name,
				Amount:      inc.TotalAmount,
				Date:        tentativeDate(ref, 0, models.Period1),
			})
			continue
		}
		half := inc.TotalAmount.Div(two)
		ledger.Period1.Incomes = append(ledger.Period1.Incomes, models.Income{
			ID:          materializedID(inc.ID, models.Period1),
			Description: inc.Name,
			Amount:      half,
			Date:        tentativeDate(ref, 0, models.Period1),
		})
		ledger.Period2.Incomes = append(ledger.Period2.Incomes, models.Income{
			ID:          materializedID(inc.ID, models.Period2),
			Description: inc.Name,
			Amount:      half,
			Date:        tentativeDate(ref, 0, models.Period2),
		})
	}

	for _, exp := range cfg.BudgetVariables.Expenses {
		switch {
		case monthly:
			ledger.Period1.Expenses = append(ledger.Period1.Expenses,
				materializedExpense(exp, exp.TotalAmount, models.Period1, ref))
		case exp.PaymentDay > 0:
			key := models.PeriodForDay(exp.PaymentDay)
			p := ledger.Period(key)
			p.Expenses = append(p.Expenses,
				materializedExpense(exp, exp.TotalAmount, key, ref))
		default:
			half := exp.TotalAmount.Div(two)
			ledger.Period1.Expenses = append(ledger.Period1.Expenses,
				materializedExpense(exp, half, models.Period1, ref))
			ledger.Period2.Expenses = append(ledger.Period2.Expenses,
				materializedExpense(exp, half, models.Period2, ref))
		}
	}

	return ledger
}

func materializedExpense(exp models.BudgetExpense, amount decimal.Decimal, key models.PeriodKey, ref time.Time) models.Expense {
	return models.Expense{
		ID:          materializedID(exp.ID, key),
		Description: exp.Name,
		Amount:      amount,
		Category:    exp.Category,
		Paid:        false,
		Date:        tentativeDate(ref, exp.PaymentDay, key),
	}
}

func materializedID(variableID string, key models.PeriodKey) string {
	return uuid.NewSHA1(budgetNamespace, []byte(variableID+":"+string(key))).String()
}

// tentativeDate guesses a date in ref's month for a budget item. Day 0
// falls back to the first day of the target period; days are clamped to
// the period and to the month's length.
func tentativeDate(ref time.Time, day int, key models.PeriodKey) string {
	if day <= 0 {
		day = 1
	}
	if key == models.Period2 && day < 16 {
		day = 16
	}
	lastDay := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
