package finance

import (
	"testing"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func income(amount string) models.Income {
	return models.Income{ID: "i", Description: "income", Amount: dec(amount)}
}

func expense(amount string, paid bool) models.Expense {
	return models.Expense{ID: "e", Description: "expense", Amount: dec(amount), Category: "other", Paid: paid}
}

func TestAggregatePeriod_Empty(t *testing.T) {
	got := AggregatePeriod(models.Period{})

	if !got.TotalIncome.IsZero() || !got.TotalPaidExpenses.IsZero() || !got.Available.IsZero() {
		t.Fatalf("empty period should aggregate to zeros, got %+v", got)
	}
}

func TestAggregatePeriod(t *testing.T) {
	tests := []struct {
		name       string
		period     models.Period
		wantIncome string
		wantPaid   string
	}{
		{
			name: "only incomes",
			period: models.Period{
				Incomes: []models.Income{income("1000.50"), income("2000")},
			},
			wantIncome: "3000.50",
			wantPaid:   "0",
		},
		{
			name: "unpaid expenses excluded from paid total",
			period: models.Period{
				Incomes:  []models.Income{income("5000")},
				Expenses: []models.Expense{expense("1200", true), expense("800", false), expense("300.25", true)},
			},
			wantIncome: "5000",
			wantPaid:   "1500.25",
		},
		{
			name: "expenses exceed income",
			period: models.Period{
				Incomes:  []models.Income{income("100")},
				Expenses: []models.Expense{expense("250", true)},
			},
			wantIncome: "100",
			wantPaid:   "250",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregatePeriod(tt.period)
			if !got.TotalIncome.Equal(dec(tt.wantIncome)) {
				t.Errorf("TotalIncome = %s, want %s", got.TotalIncome, tt.wantIncome)
			}
			if !got.TotalPaidExpenses.Equal(dec(tt.wantPaid)) {
				t.Errorf("TotalPaidExpenses = %s, want %s", got.TotalPaidExpenses, tt.wantPaid)
			}
			wantAvailable := got.TotalIncome.Sub(got.TotalPaidExpenses)
			if !got.Available.Equal(wantAvailable) {
				t.Errorf("Available = %s, want income-paid = %s", got.Available, wantAvailable)
			}
		})
	}
}

func TestAggregateMonth(t *testing.T) {
	ledger := models.MonthlyLedger{
		Period1: models.Period{
			Incomes:  []models.Income{income("2000000")},
			Expenses: []models.Expense{expense("500000", true), expense("300000", false)},
			Savings:  dec("100000"),
		},
		Period2: models.Period{
			Incomes:  []models.Income{income("2000000")},
			Expenses: []models.Expense{expense("700000", true)},
			Savings:  dec("150000"),
		},
	}

	got := AggregateMonth(ledger)

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"TotalIncome", got.TotalIncome, "4000000"},
		{"TotalExpenses", got.TotalExpenses, "1500000"},
		{"TotalPaidExpenses", got.TotalPaidExpenses, "1200000"},
		{"PendingDebt", got.PendingDebt, "300000"},
		{"TotalSavings", got.TotalSavings, "250000"},
		{"FinalTotal", got.FinalTotal, "2550000"},
		{"Available", got.Available, "2800000"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestAggregateMonth_EmptyLedger(t *testing.T) {
	got := AggregateMonth(models.BlankLedger())
	if !got.TotalIncome.IsZero() || !got.TotalExpenses.IsZero() || !got.FinalTotal.IsZero() {
		t.Fatalf("blank ledger should aggregate to zeros, got %+v", got)
	}
}

func TestCategoryTotals(t *testing.T) {
	ledger := models.MonthlyLedger{
		Period1: models.Period{
			Expenses: []models.Expense{
				{ID: "1", Amount: dec("100"), Category: "groceries"},
				{ID: "2", Amount: dec("50"), Category: "transport"},
				{ID: "3", Amount: dec("200"), Category: ""},
			},
		},
		Period2: models.Period{
			Expenses: []models.Expense{
				{ID: "4", Amount: dec("300"), Category: "groceries"},
			},
		},
	}

	got := CategoryTotals(ledger, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category != "groceries" || !got[0].Total.Equal(dec("400")) {
		t.Errorf("top category = %s %s, want groceries 400", got[0].Category, got[0].Total)
	}
	if got[1].Category != "other" || !got[1].Total.Equal(dec("200")) {
		t.Errorf("second category = %s %s, want other 200 (blank mapped)", got[1].Category, got[1].Total)
	}
}

func TestDebtPaidTotal(t *testing.T) {
	ledger := models.MonthlyLedger{
		Period1: models.Period{
			Expenses: []models.Expense{
				{ID: "1", Amount: dec("400"), Category: models.CategoryDebtPayment, Paid: true},
				{ID: "2", Amount: dec("100"), Category: "groceries", Paid: true},
			},
		},
		Period2: models.Period{
			Expenses: []models.Expense{
				{ID: "3", Amount: dec("600"), Category: models.CategoryDebtPayment, Paid: false},
			},
		},
	}

	if got := DebtPaidTotal(ledger); !got.Equal(dec("1000")) {
		t.Fatalf("DebtPaidTotal = %s, want 1000", got)
	}
}
