package models

import "github.com/shopspring/decimal"

// Expense categories with linking behavior. Regular categories are
// free-form strings validated against the entity's configured list.
const (
	CategoryDebtPayment = "debt_payment"
	CategoryGoalDeposit = "goal_deposit"
)

// Income is a ledger entry for money coming in during a period
type Income struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date,omitempty"` // ISO YYYY-MM-DD
}

// Expense is a ledger entry for money going out. DebtID and GoalID are
// weak references into the entity config; deleting the target leaves the
// link dangling and lookups simply miss.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Paid        bool            `json:"paid"`
	DebtID      string          `json:"debt_id,omitempty"`
	GoalID      string          `json:"goal_id,omitempty"`
	Date        string          `json:"date,omitempty"` // ISO YYYY-MM-DD
}

// Period is one half of a monthly ledger (a "quincena")
type Period struct {
	Incomes  []Income        `json:"incomes"`
	Expenses []Expense       `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// MonthlyLedger holds one calendar month of transactions, keyed externally
// by entity and YearMonth. Under monthly pay frequency only Period1 is
// used; Period2 stays present but empty.
type MonthlyLedger struct {
	Period1 Period `json:"q1"`
	Period2 Period `json:"q2"`
}

// BlankLedger returns an empty month document
func BlankLedger() MonthlyLedger {
	return MonthlyLedger{
		Period1: Period{Incomes: []Income{}, Expenses: []Expense{}, Savings: decimal.Zero},
		Period2: Period{Incomes: []Income{}, Expenses: []Expense{}, Savings: decimal.Zero},
	}
}

// Period returns a pointer to the addressed half of the ledger
func (l *MonthlyLedger) Period(key PeriodKey) *Period {
	if key == Period2 {
		return &l.Period2
	}
	return &l.Period1
}
