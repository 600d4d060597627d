package models

import "github.com/shopspring/decimal"

// ProjectExpense is one planned cost inside a project
type ProjectExpense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Project tracks a one-off undertaking (a renovation, an event) with a
// running deposit against its planned costs.
type Project struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Deposit  decimal.Decimal  `json:"deposit"`
	Expenses []ProjectExpense `json:"expenses"`
}

// Total sums the planned costs
func (p Project) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Remaining is what is still owed after the deposit
func (p Project) Remaining() decimal.Decimal {
	return p.Total().Sub(p.Deposit)
}
