package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/gaston-app/budget-service/internal/finance"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryInput is one ledger entry as submitted by the client. Kind is
// "income" or "expense"; the expense-only fields are ignored for incomes.
type EntryInput struct {
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Paid        bool            `json:"paid"`
	DebtID      string          `json:"debt_id"`
	GoalID      string          `json:"goal_id"`
	Date        string          `json:"date"`
}

const (
	entryKindIncome  = "income"
	entryKindExpense = "expense"
)

func (in EntryInput) validate(cfg models.EntityConfig) error {
	if in.Kind != entryKindIncome && in.Kind != entryKindExpense {
		return validationErr("entry kind must be income or expense")
	}
	if in.Description == "" {
		return validationErr("description required")
	}
	if !in.Amount.IsPositive() {
		return validationErr("amount must be positive")
	}
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			return validationErr("invalid date %q, want YYYY-MM-DD", in.Date)
		}
	}
	if in.Kind == entryKindExpense && !cfg.HasCategory(in.Category) {
		return validationErr("unknown category %q", in.Category)
	}
	return nil
}

// loadLedger fetches a month's ledger, falling back to a blank document
// (revision 0) when none has been written yet.
func (s *Service) loadLedger(ctx context.Context, entityID int64, ym models.YearMonth) (models.MonthlyLedger, int64, error) {
	ledger, revision, err := s.repo.GetLedger(ctx, entityID, ym)
	if errors.Is(err, repository.ErrNotFound) {
		return models.BlankLedger(), 0, nil
	}
	if err != nil {
		return models.MonthlyLedger{}, 0, err
	}
	return ledger, revision, nil
}

// GetLedger returns one month's ledger, blank if never written
func (s *Service) GetLedger(ctx context.Context, userID, entityID int64, ym models.YearMonth) (models.MonthlyLedger, error) {
	if err := ym.Validate(); err != nil {
		return models.MonthlyLedger{}, validationErr("%v", err)
	}
	if _, err := s.authorizeEntity(ctx, userID, entityID); err != nil {
		return models.MonthlyLedger{}, err
	}
	ledger, _, err := s.loadLedger(ctx, entityID, ym)
	return ledger, err
}

// ListLedgerMonths returns every month the entity has a ledger document
// for, oldest first
func (s *Service) ListLedgerMonths(ctx context.Context, userID, entityID int64) ([]models.YearMonth, error) {
	if _, err := s.authorizeEntity(ctx, userID, entityID); err != nil {
		return nil, err
	}
	return s.repo.ListLedgerMonths(ctx, entityID)
}

// mutateLedger applies fn to a month's ledger under a revision guard,
// retrying on conflict with a fresh read
func (s *Service) mutateLedger(ctx context.Context, userID, entityID int64, ym models.YearMonth, fn func(*models.MonthlyLedger) error) (models.MonthlyLedger, error) {
	if err := ym.Validate(); err != nil {
		return models.MonthlyLedger{}, validationErr("%v", err)
	}
	if _, err := s.authorizeEntity(ctx, userID, entityID); err != nil {
		return models.MonthlyLedger{}, err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		ledger, revision, err := s.loadLedger(ctx, entityID, ym)
		if err != nil {
			return models.MonthlyLedger{}, err
		}
		if err := fn(&ledger); err != nil {
			return models.MonthlyLedger{}, err
		}
		if _, err := s.repo.SaveLedger(ctx, entityID, ym, ledger, revision); err != nil {
			if errors.Is(err, repository.ErrRevisionConflict) {
				s.log.Warnf("Ledger revision conflict on entity %d %s, retrying", entityID, ym)
				continue
			}
			return models.MonthlyLedger{}, err
		}
		return ledger, nil
	}
	return models.MonthlyLedger{}, repository.ErrRevisionConflict
}

// AddEntry appends an entry to one period of the month. Creating a
// goal-deposit expense also records the deposit on the linked goal.
func (s *Service) AddEntry(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, in EntryInput) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	if err := in.validate(cfg); err != nil {
		return models.MonthlyLedger{}, err
	}

	ledger, err := s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		p := l.Period(key)
		if in.Kind == entryKindIncome {
			p.Incomes = append(p.Incomes, models.Income{
				ID:          uuid.NewString(),
				Description: in.Description,
				Amount:      in.Amount,
				Date:        in.Date,
			})
			return nil
		}
		p.Expenses = append(p.Expenses, models.Expense{
			ID:          uuid.NewString(),
			Description: in.Description,
			Amount:      in.Amount,
			Category:    in.Category,
			Paid:        in.Paid,
			DebtID:      in.DebtID,
			GoalID:      in.GoalID,
			Date:        in.Date,
		})
		return nil
	})
	if err != nil {
		return models.MonthlyLedger{}, err
	}

	if in.Kind == entryKindExpense && in.Category == models.CategoryGoalDeposit && in.GoalID != "" {
		note := fmt.Sprintf("Ledger deposit: %s", in.Description)
		if _, err := s.AddGoalFunds(ctx, userID, entityID, in.GoalID, in.Amount, note); err != nil {
			// Dangling goal links are tolerated; the entry stands either way.
			s.log.Warnf("Goal deposit side effect failed for entity %d: %v", entityID, err)
		}
	}
	return ledger, nil
}

// UpdateEntry replaces an entry in place, keeping its id and kind
func (s *Service) UpdateEntry(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, entryID string, in EntryInput) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	if err := in.validate(cfg); err != nil {
		return models.MonthlyLedger{}, err
	}

	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		p := l.Period(key)
		if in.Kind == entryKindIncome {
			for i := range p.Incomes {
				if p.Incomes[i].ID == entryID {
					p.Incomes[i] = models.Income{
						ID:          entryID,
						Description: in.Description,
						Amount:      in.Amount,
						Date:        in.Date,
					}
					return nil
				}
			}
		} else {
			for i := range p.Expenses {
				if p.Expenses[i].ID == entryID {
					p.Expenses[i] = models.Expense{
						ID:          entryID,
						Description: in.Description,
						Amount:      in.Amount,
						Category:    in.Category,
						Paid:        p.Expenses[i].Paid,
						DebtID:      in.DebtID,
						GoalID:      in.GoalID,
						Date:        in.Date,
					}
					return nil
				}
			}
		}
		return fmt.Errorf("entry %s: %w", entryID, repository.ErrNotFound)
	})
}

// DeleteEntry removes an entry from a period
func (s *Service) DeleteEntry(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, entryID string) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		p := l.Period(key)
		for i := range p.Incomes {
			if p.Incomes[i].ID == entryID {
				p.Incomes = append(p.Incomes[:i], p.Incomes[i+1:]...)
				return nil
			}
		}
		for i := range p.Expenses {
			if p.Expenses[i].ID == entryID {
				p.Expenses = append(p.Expenses[:i], p.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("entry %s: %w", entryID, repository.ErrNotFound)
	})
}

// TogglePaid flips an expense's paid flag. When the expense is linked to
// a debt, the debt's paid amount moves with it: marking paid adds the
// expense amount, unmarking subtracts it again.
func (s *Service) TogglePaid(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, entryID string) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}

	var debtID string
	var delta decimal.Decimal
	ledger, err := s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		debtID, delta = "", decimal.Zero
		p := l.Period(key)
		for i := range p.Expenses {
			if p.Expenses[i].ID != entryID {
				continue
			}
			p.Expenses[i].Paid = !p.Expenses[i].Paid
			if p.Expenses[i].DebtID != "" {
				debtID = p.Expenses[i].DebtID
				delta = p.Expenses[i].Amount
				if !p.Expenses[i].Paid {
					delta = delta.Neg()
				}
			}
			return nil
		}
		return fmt.Errorf("entry %s: %w", entryID, repository.ErrNotFound)
	})
	if err != nil {
		return models.MonthlyLedger{}, err
	}

	if debtID != "" {
		_, err := s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
			debt := cfg.FindDebt(debtID)
			if debt == nil {
				// Dangling link: the debt was deleted after the expense
				// was created. The toggle itself still counts.
				return nil
			}
			debt.PaidAmount = debt.PaidAmount.Add(delta)
			return nil
		})
		if err != nil {
			s.log.Warnf("Debt sync failed for entity %d debt %s: %v", entityID, debtID, err)
		}
	}
	return ledger, nil
}

// SetSavings records the amount set aside in one period
func (s *Service) SetSavings(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, amount decimal.Decimal) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}
	if amount.IsNegative() {
		return models.MonthlyLedger{}, validationErr("savings must not be negative")
	}
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		l.Period(key).Savings = amount
		return nil
	})
}

// ApplyBudget replaces the month wholesale with the materialized
// recurring budget. Existing entries are discarded.
func (s *Service) ApplyBudget(ctx context.Context, userID, entityID int64, ym models.YearMonth) (models.MonthlyLedger, error) {
	if err := ym.Validate(); err != nil {
		return models.MonthlyLedger{}, validationErr("%v", err)
	}
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return models.MonthlyLedger{}, err
	}
	ref, err := ym.Time()
	if err != nil {
		return models.MonthlyLedger{}, validationErr("%v", err)
	}

	materialized := finance.MaterializeBudget(cfg, cfg.PayFrequency, ref)
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		*l = materialized
		return nil
	})
}

// CopyPeriod copies period 1's entries into period 2, minting new ids and
// resetting paid flags. Period 2's existing entries are replaced.
func (s *Service) CopyPeriod(ctx context.Context, userID, entityID int64, ym models.YearMonth) (models.MonthlyLedger, error) {
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		l.Period2 = clonePeriod(l.Period1, l.Period2.Savings)
		return nil
	})
}

// CopyMonth replicates this month's entries into each target month,
// minting new ids, resetting paid flags and zeroing savings. Target
// months are replaced wholesale.
func (s *Service) CopyMonth(ctx context.Context, userID, entityID int64, ym models.YearMonth, targets []models.YearMonth) error {
	if len(targets) == 0 {
		return validationErr("at least one target month required")
	}
	for _, target := range targets {
		if err := target.Validate(); err != nil {
			return validationErr("%v", err)
		}
		if target == ym {
			return validationErr("cannot copy a month onto itself")
		}
	}

	source, err := s.GetLedger(ctx, userID, entityID, ym)
	if err != nil {
		return err
	}

	for _, target := range targets {
		copied := models.MonthlyLedger{
			Period1: clonePeriod(source.Period1, decimal.Zero),
			Period2: clonePeriod(source.Period2, decimal.Zero),
		}
		if _, err := s.mutateLedger(ctx, userID, entityID, target, func(l *models.MonthlyLedger) error {
			*l = copied
			return nil
		}); err != nil {
			return fmt.Errorf("copy to %s: %w", target, err)
		}
	}
	return nil
}

func clonePeriod(src models.Period, savings decimal.Decimal) models.Period {
	out := models.Period{
		Incomes:  make([]models.Income, len(src.Incomes)),
		Expenses: make([]models.Expense, len(src.Expenses)),
		Savings:  savings,
	}
	for i, in := range src.Incomes {
		in.ID = uuid.NewString()
		out.Incomes[i] = in
	}
	for i, e := range src.Expenses {
		e.ID = uuid.NewString()
		e.Paid = false
		out.Expenses[i] = e
	}
	return out
}

// ClearPeriod resets one period to empty
func (s *Service) ClearPeriod(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey) (models.MonthlyLedger, error) {
	if !models.ValidPeriod(key) {
		return models.MonthlyLedger{}, validationErr("unknown period %q", key)
	}
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		*l.Period(key) = models.Period{Incomes: []models.Income{}, Expenses: []models.Expense{}, Savings: decimal.Zero}
		return nil
	})
}

// ClearMonth resets the whole month to a blank document
func (s *Service) ClearMonth(ctx context.Context, userID, entityID int64, ym models.YearMonth) (models.MonthlyLedger, error) {
	return s.mutateLedger(ctx, userID, entityID, ym, func(l *models.MonthlyLedger) error {
		*l = models.BlankLedger()
		return nil
	})
}

// QuickAdd routes an entry by its date: the date picks both the month
// document and the period within it.
func (s *Service) QuickAdd(ctx context.Context, userID, entityID int64, in EntryInput) (models.YearMonth, models.MonthlyLedger, error) {
	if in.Date == "" {
		return "", models.MonthlyLedger{}, validationErr("date required for quick add")
	}
	day, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return "", models.MonthlyLedger{}, validationErr("invalid date %q, want YYYY-MM-DD", in.Date)
	}

	ym := models.YearMonthOf(day)
	key := models.PeriodForDay(day.Day())
	ledger, err := s.AddEntry(ctx, userID, entityID, ym, key, in)
	if err != nil {
		return "", models.MonthlyLedger{}, err
	}
	return ym, ledger, nil
}

// MakeRecurring promotes a ledger entry to a recurring budget variable
func (s *Service) MakeRecurring(ctx context.Context, userID, entityID int64, ym models.YearMonth, key models.PeriodKey, entryID string) (models.EntityConfig, error) {
	if !models.ValidPeriod(key) {
		return models.EntityConfig{}, validationErr("unknown period %q", key)
	}
	ledger, err := s.GetLedger(ctx, userID, entityID, ym)
	if err != nil {
		return models.EntityConfig{}, err
	}

	p := ledger.Period(key)
	for _, in := range p.Incomes {
		if in.ID == entryID {
			return s.UpsertBudgetIncome(ctx, userID, entityID, models.BudgetIncome{
				Name:        in.Description,
				TotalAmount: in.Amount,
			})
		}
	}
	for _, e := range p.Expenses {
		if e.ID == entryID {
			day := 0
			if t, err := time.Parse("2006-01-02", e.Date); err == nil {
				day = t.Day()
			}
			return s.UpsertBudgetExpense(ctx, userID, entityID, models.BudgetExpense{
				Name:        e.Description,
				TotalAmount: e.Amount,
				Category:    e.Category,
				PaymentDay:  day,
			})
		}
	}
	return models.EntityConfig{}, fmt.Errorf("entry %s: %w", entryID, repository.ErrNotFound)
}

// ExportCSV renders one month's ledger as CSV
func (s *Service) ExportCSV(ctx context.Context, userID, entityID int64, ym models.YearMonth) ([]byte, error) {
	ledger, err := s.GetLedger(ctx, userID, entityID, ym)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "period", "kind", "description", "category", "amount", "status"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, key := range []models.PeriodKey{models.Period1, models.Period2} {
		p := ledger.Period(key)
		for _, in := range p.Incomes {
			if err := w.Write([]string{in.Date, string(key), entryKindIncome, in.Description, "", in.Amount.String(), ""}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		for _, e := range p.Expenses {
			status := "pending"
			if e.Paid {
				status = "paid"
			}
			if err := w.Write([]string{e.Date, string(key), entryKindExpense, e.Description, e.Category, e.Amount.String(), status}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
