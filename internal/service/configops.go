package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// saveAttempts bounds the optimistic-concurrency retry loop on document
// writes
const saveAttempts = 3

// loadConfig fetches the entity config, falling back to the kind's
// starter template (revision 0) when none has been written yet.
func (s *Service) loadConfig(ctx context.Context, entity models.Entity) (models.EntityConfig, int64, error) {
	cfg, revision, err := s.repo.GetConfig(ctx, entity.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.TemplateConfig(entity.Kind), 0, nil
	}
	if err != nil {
		return models.EntityConfig{}, 0, err
	}
	return cfg, revision, nil
}

// GetConfig returns the entity configuration
func (s *Service) GetConfig(ctx context.Context, userID, entityID int64) (models.EntityConfig, error) {
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.EntityConfig{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	return cfg, err
}

// mutateConfig applies fn to the current config under a revision guard,
// retrying on conflict with a fresh read. Every successful save also
// refreshes the current month's config snapshot so planned-vs-actual
// history stays honest.
func (s *Service) mutateConfig(ctx context.Context, userID, entityID int64, fn func(*models.EntityConfig) error) (models.EntityConfig, error) {
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.EntityConfig{}, err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		cfg, revision, err := s.loadConfig(ctx, entity)
		if err != nil {
			return models.EntityConfig{}, err
		}
		if err := fn(&cfg); err != nil {
			return models.EntityConfig{}, err
		}
		if _, err := s.repo.SaveConfig(ctx, entityID, cfg, revision); err != nil {
			if errors.Is(err, repository.ErrRevisionConflict) {
				s.log.Warnf("Config revision conflict on entity %d, retrying", entityID)
				continue
			}
			return models.EntityConfig{}, err
		}
		ym := models.YearMonthOf(time.Now().UTC())
		if err := s.repo.SaveConfigSnapshot(ctx, entityID, ym, cfg); err != nil {
			return models.EntityConfig{}, err
		}
		return cfg, nil
	}
	return models.EntityConfig{}, repository.ErrRevisionConflict
}

// ReplaceConfig overwrites the whole configuration document
func (s *Service) ReplaceConfig(ctx context.Context, userID, entityID int64, incoming models.EntityConfig) (models.EntityConfig, error) {
	if incoming.Currency == "" {
		return models.EntityConfig{}, validationErr("currency required")
	}
	if !models.ValidFrequency(incoming.PayFrequency) {
		return models.EntityConfig{}, validationErr("unknown pay frequency %q", incoming.PayFrequency)
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		*cfg = incoming
		return nil
	})
}

// AddCategory appends an expense category
func (s *Service) AddCategory(ctx context.Context, userID, entityID int64, name string) (models.EntityConfig, error) {
	if name == "" {
		return models.EntityConfig{}, validationErr("category name required")
	}
	if name == models.CategoryDebtPayment || name == models.CategoryGoalDeposit {
		return models.EntityConfig{}, validationErr("%q is reserved", name)
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for _, cat := range cfg.Categories {
			if cat == name {
				return validationErr("category %q already exists", name)
			}
		}
		cfg.Categories = append(cfg.Categories, name)
		return nil
	})
}

// RemoveCategory deletes an expense category. Existing ledger entries in
// the category are left untouched.
func (s *Service) RemoveCategory(ctx context.Context, userID, entityID int64, name string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i, cat := range cfg.Categories {
			if cat == name {
				cfg.Categories = append(cfg.Categories[:i], cfg.Categories[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("category %q: %w", name, repository.ErrNotFound)
	})
}

// UpsertDebt creates or replaces a tracked debt. An empty id means
// create.
func (s *Service) UpsertDebt(ctx context.Context, userID, entityID int64, debt models.Debt) (models.EntityConfig, error) {
	if debt.Name == "" {
		return models.EntityConfig{}, validationErr("debt name required")
	}
	if !debt.TotalAmount.IsPositive() {
		return models.EntityConfig{}, validationErr("debt total amount must be positive")
	}
	if debt.AnnualRate.IsNegative() || debt.Installments < 0 || debt.MonthsInArrears < 0 {
		return models.EntityConfig{}, validationErr("debt fields must not be negative")
	}
	if debt.DueDay < 0 || debt.DueDay > 31 {
		return models.EntityConfig{}, validationErr("due day must be between 1 and 31")
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		if debt.ID == "" {
			debt.ID = uuid.NewString()
			cfg.Debts = append(cfg.Debts, debt)
			return nil
		}
		existing := cfg.FindDebt(debt.ID)
		if existing == nil {
			return fmt.Errorf("debt %s: %w", debt.ID, repository.ErrNotFound)
		}
		*existing = debt
		return nil
	})
}

// DeleteDebt removes a debt. Ledger expenses linked to it keep their
// dangling reference.
func (s *Service) DeleteDebt(ctx context.Context, userID, entityID int64, debtID string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i := range cfg.Debts {
			if cfg.Debts[i].ID == debtID {
				cfg.Debts = append(cfg.Debts[:i], cfg.Debts[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("debt %s: %w", debtID, repository.ErrNotFound)
	})
}

// UpsertGoal creates or replaces a financial goal. An empty id means
// create; on update the deposit log of the stored goal is preserved.
func (s *Service) UpsertGoal(ctx context.Context, userID, entityID int64, goal models.FinancialGoal) (models.EntityConfig, error) {
	if goal.Name == "" {
		return models.EntityConfig{}, validationErr("goal name required")
	}
	if !goal.TargetAmount.IsPositive() {
		return models.EntityConfig{}, validationErr("goal target must be positive")
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		if goal.ID == "" {
			goal.ID = uuid.NewString()
			if goal.Logs == nil {
				goal.Logs = []models.GoalLog{}
			}
			cfg.FinancialGoals = append(cfg.FinancialGoals, goal)
			return nil
		}
		existing := cfg.FindGoal(goal.ID)
		if existing == nil {
			return fmt.Errorf("goal %s: %w", goal.ID, repository.ErrNotFound)
		}
		goal.Logs = existing.Logs
		*existing = goal
		return nil
	})
}

// DeleteGoal removes a financial goal
func (s *Service) DeleteGoal(ctx context.Context, userID, entityID int64, goalID string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i := range cfg.FinancialGoals {
			if cfg.FinancialGoals[i].ID == goalID {
				cfg.FinancialGoals = append(cfg.FinancialGoals[:i], cfg.FinancialGoals[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("goal %s: %w", goalID, repository.ErrNotFound)
	})
}

// AddGoalFunds records a deposit toward a goal: appends a log entry and
// bumps the cached total. Crossing the target fires a notification.
func (s *Service) AddGoalFunds(ctx context.Context, userID, entityID int64, goalID string, amount decimal.Decimal, note string) (models.EntityConfig, error) {
	if !amount.IsPositive() {
		return models.EntityConfig{}, validationErr("deposit amount must be positive")
	}

	var reached models.FinancialGoal
	var crossed bool
	cfg, err := s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		goal := cfg.FindGoal(goalID)
		if goal == nil {
			return fmt.Errorf("goal %s: %w", goalID, repository.ErrNotFound)
		}
		wasReached := goal.Reached()
		goal.Logs = append([]models.GoalLog{{
			ID:     uuid.NewString(),
			Date:   time.Now().UTC().Format("2006-01-02"),
			Amount: amount,
			Note:   note,
		}}, goal.Logs...)
		goal.CurrentAmount = goal.CurrentAmount.Add(amount)
		if !wasReached && goal.Reached() {
			reached = *goal
			crossed = true
		}
		return nil
	})
	if err != nil {
		return models.EntityConfig{}, err
	}

	if crossed && s.notifier != nil {
		entity, err := s.repo.GetEntity(ctx, entityID)
		if err == nil {
			if owner, err := s.repo.GetUserByID(ctx, entity.OwnerID); err == nil {
				if err := s.notifier.SendGoalReached(owner.Email, reached); err != nil {
					s.log.Warnf("Goal notification failed: %v", err)
				}
			}
		}
	}
	return cfg, nil
}

// UpsertProject creates or replaces a project, expenses included. An
// empty id means create.
func (s *Service) UpsertProject(ctx context.Context, userID, entityID int64, project models.Project) (models.EntityConfig, error) {
	if project.Name == "" {
		return models.EntityConfig{}, validationErr("project name required")
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		if project.Expenses == nil {
			project.Expenses = []models.ProjectExpense{}
		}
		for i := range project.Expenses {
			if project.Expenses[i].ID == "" {
				project.Expenses[i].ID = uuid.NewString()
			}
		}
		if project.ID == "" {
			project.ID = uuid.NewString()
			cfg.Projects = append(cfg.Projects, project)
			return nil
		}
		for i := range cfg.Projects {
			if cfg.Projects[i].ID == project.ID {
				cfg.Projects[i] = project
				return nil
			}
		}
		return fmt.Errorf("project %s: %w", project.ID, repository.ErrNotFound)
	})
}

// DeleteProject removes a project
func (s *Service) DeleteProject(ctx context.Context, userID, entityID int64, projectID string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i := range cfg.Projects {
			if cfg.Projects[i].ID == projectID {
				cfg.Projects = append(cfg.Projects[:i], cfg.Projects[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("project %s: %w", projectID, repository.ErrNotFound)
	})
}

// UpsertBudgetIncome creates or replaces a recurring income template
func (s *Service) UpsertBudgetIncome(ctx context.Context, userID, entityID int64, inc models.BudgetIncome) (models.EntityConfig, error) {
	if inc.Name == "" || !inc.TotalAmount.IsPositive() {
		return models.EntityConfig{}, validationErr("budget income needs a name and positive amount")
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		if inc.ID == "" {
			inc.ID = uuid.NewString()
			cfg.BudgetVariables.Incomes = append(cfg.BudgetVariables.Incomes, inc)
			return nil
		}
		for i := range cfg.BudgetVariables.Incomes {
			if cfg.BudgetVariables.Incomes[i].ID == inc.ID {
				cfg.BudgetVariables.Incomes[i] = inc
				return nil
			}
		}
		return fmt.Errorf("budget income %s: %w", inc.ID, repository.ErrNotFound)
	})
}

// DeleteBudgetIncome removes a recurring income template
func (s *Service) DeleteBudgetIncome(ctx context.Context, userID, entityID int64, id string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i := range cfg.BudgetVariables.Incomes {
			if cfg.BudgetVariables.Incomes[i].ID == id {
				cfg.BudgetVariables.Incomes = append(cfg.BudgetVariables.Incomes[:i], cfg.BudgetVariables.Incomes[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("budget income %s: %w", id, repository.ErrNotFound)
	})
}

// UpsertBudgetExpense creates or replaces a recurring expense template
func (s *Service) UpsertBudgetExpense(ctx context.Context, userID, entityID int64, exp models.BudgetExpense) (models.EntityConfig, error) {
	if exp.Name == "" || !exp.TotalAmount.IsPositive() {
		return models.EntityConfig{}, validationErr("budget expense needs a name and positive amount")
	}
	if exp.PaymentDay < 0 || exp.PaymentDay > 31 {
		return models.EntityConfig{}, validationErr("payment day must be between 1 and 31")
	}
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		if !cfg.HasCategory(exp.Category) {
			return validationErr("unknown category %q", exp.Category)
		}
		if exp.ID == "" {
			exp.ID = uuid.NewString()
			cfg.BudgetVariables.Expenses = append(cfg.BudgetVariables.Expenses, exp)
			return nil
		}
		for i := range cfg.BudgetVariables.Expenses {
			if cfg.BudgetVariables.Expenses[i].ID == exp.ID {
				cfg.BudgetVariables.Expenses[i] = exp
				return nil
			}
		}
		return fmt.Errorf("budget expense %s: %w", exp.ID, repository.ErrNotFound)
	})
}

// DeleteBudgetExpense removes a recurring expense template
func (s *Service) DeleteBudgetExpense(ctx context.Context, userID, entityID int64, id string) (models.EntityConfig, error) {
	return s.mutateConfig(ctx, userID, entityID, func(cfg *models.EntityConfig) error {
		for i := range cfg.BudgetVariables.Expenses {
			if cfg.BudgetVariables.Expenses[i].ID == id {
				cfg.BudgetVariables.Expenses = append(cfg.BudgetVariables.Expenses[:i], cfg.BudgetVariables.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("budget expense %s: %w", id, repository.ErrNotFound)
	})
}
