package models

import "github.com/shopspring/decimal"

// BudgetIncome is a recurring monthly income template
type BudgetIncome struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// BudgetExpense is a recurring monthly expense template. PaymentDay is the
// tentative day of month the bill falls due (0 = unset).
type BudgetExpense struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Category    string          `json:"category"`
	PaymentDay  int             `json:"payment_day,omitempty"`
}

// BudgetVariables groups the recurring templates used to materialize a
// fresh month via apply-budget
type BudgetVariables struct {
	Incomes  []BudgetIncome  `json:"incomes"`
	Expenses []BudgetExpense `json:"expenses"`
}

// EntityConfig is the per-entity configuration document: the single source
// of truth for categories, recurring budget, debts, goals and projects.
// It is read and written whole, guarded by a revision stamp.
type EntityConfig struct {
	Currency        string          `json:"currency"`
	EmploymentType  EmploymentType  `json:"employment_type"`
	PayFrequency    PayFrequency    `json:"pay_frequency"`
	Categories      []string        `json:"categories"`
	BudgetVariables BudgetVariables `json:"budget_variables"`
	FinancialGoals  []FinancialGoal `json:"financial_goals"`
	Debts           []Debt          `json:"debts"`
	Projects        []Project       `json:"projects"`
}

// HasCategory reports whether name is a configured category or one of the
// linking categories (debt payment, goal deposit), which are always valid.
func (c EntityConfig) HasCategory(name string) bool {
	if name == CategoryDebtPayment || name == CategoryGoalDeposit {
		return true
	}
	for _, cat := range c.Categories {
		if cat == name {
			return true
		}
	}
	return false
}

// FindDebt returns the debt with the given id, or nil
func (c *EntityConfig) FindDebt(id string) *Debt {
	for i := range c.Debts {
		if c.Debts[i].ID == id {
			return &c.Debts[i]
		}
	}
	return nil
}

// FindGoal returns the goal with the given id, or nil
func (c *EntityConfig) FindGoal(id string) *FinancialGoal {
	for i := range c.FinancialGoals {
		if c.FinancialGoals[i].ID == id {
			return &c.FinancialGoals[i]
		}
	}
	return nil
}

// TemplateConfig returns the starter configuration cloned into new
// entities of the given kind.
func TemplateConfig(kind EntityKind) EntityConfig {
	cfg := EntityConfig{
		Currency:       "COP",
		EmploymentType: EmploymentEmployee,
		PayFrequency:   PayMonthly,
		Categories: []string{
			"utilities", "groceries", "transport", "eating_out",
			"delivery", "gifts", "other",
		},
		BudgetVariables: BudgetVariables{Incomes: []BudgetIncome{}, Expenses: []BudgetExpense{}},
		FinancialGoals:  []FinancialGoal{},
		Debts:           []Debt{},
		Projects:        []Project{},
	}
	if kind == EntityKindBusiness {
		cfg.EmploymentType = EmploymentBusiness
		cfg.Categories = []string{
			"payroll", "taxes", "raw_materials", "logistics",
			"marketing", "rent", "utilities", "other",
		}
	}
	return cfg
}
