package models

import "github.com/shopspring/decimal"

// Debt is a large standing obligation tracked in the entity config.
// PaidAmount is kept in sync by ledger paid-toggles on linked expenses;
// direct edits (including overpayment) are accepted as-is.
type Debt struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Installments    int             `json:"installments"`
	AnnualRate      decimal.Decimal `json:"annual_interest_rate"` // percent, e.g. 12.5
	DueDay          int             `json:"due_day,omitempty"`    // day of month 1-31
	MonthsInArrears int             `json:"months_in_arrears"`
	Notes           string          `json:"notes"`
}

// Remaining is the outstanding balance
func (d Debt) Remaining() decimal.Decimal {
	return d.TotalAmount.Sub(d.PaidAmount)
}

// EstimatedInstallment is the naive per-installment amount. Zero when no
// installment count is set.
func (d Debt) EstimatedInstallment() decimal.Decimal {
	if d.Installments <= 0 {
		return decimal.Zero
	}
	return d.TotalAmount.Div(decimal.NewFromInt(int64(d.Installments))).Round(2)
}

// ProgressPercent is paid/total as a percentage, clamped to [0, 100]
func (d Debt) ProgressPercent() decimal.Decimal {
	if !d.TotalAmount.IsPositive() {
		return decimal.Zero
	}
	p := d.PaidAmount.Div(d.TotalAmount).Mul(decimal.NewFromInt(100)).Round(1)
	if p.IsNegative() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
