package service

import (
	"context"
	"errors"
	"time"

	"github.com/gaston-app/budget-service/internal/finance"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/shopspring/decimal"
)

// MonthInsights bundles the month rollup with its per-period summaries
type MonthInsights struct {
	Month   models.MonthSummary  `json:"month"`
	Period1 models.PeriodSummary `json:"q1"`
	Period2 models.PeriodSummary `json:"q2"`
}

// MonthSummary aggregates one month's ledger
func (s *Service) MonthSummary(ctx context.Context, userID, entityID int64, ym models.YearMonth) (MonthInsights, error) {
	ledger, err := s.GetLedger(ctx, userID, entityID, ym)
	if err != nil {
		return MonthInsights{}, err
	}
	return MonthInsights{
		Month:   finance.AggregateMonth(ledger),
		Period1: finance.AggregatePeriod(ledger.Period1),
		Period2: finance.AggregatePeriod(ledger.Period2),
	}, nil
}

// historyMonths is the trend window of the dashboard
const historyMonths = 12

// Dashboard builds the entity overview: debt and goal totals from the
// config, the current month's cash flow, and a trend series over the
// trailing year. Planned figures come from each month's config snapshot
// when one was recorded.
func (s *Service) Dashboard(ctx context.Context, userID, entityID int64, now time.Time) (models.Dashboard, error) {
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return models.Dashboard{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return models.Dashboard{}, err
	}

	dash := models.Dashboard{
		TotalOutstandingDebt: decimal.Zero,
		TotalGoalSavings:     decimal.Zero,
		History:              make([]models.HistoryPoint, 0, historyMonths),
		Goals:                cfg.FinancialGoals,
	}
	for _, d := range cfg.Debts {
		dash.TotalOutstandingDebt = dash.TotalOutstandingDebt.Add(d.Remaining())
	}
	for _, g := range cfg.FinancialGoals {
		dash.TotalGoalSavings = dash.TotalGoalSavings.Add(g.CurrentAmount)
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(historyMonths - 1), 0)
	for i := 0; i < historyMonths; i++ {
		month := start.AddDate(0, i, 0)
		ym := models.YearMonthOf(month)

		point := models.HistoryPoint{
			YearMonth:       ym,
			Income:          decimal.Zero,
			Expenses:        decimal.Zero,
			Savings:         decimal.Zero,
			DebtPaid:        decimal.Zero,
			PlannedIncome:   decimal.Zero,
			PlannedExpenses: decimal.Zero,
		}

		ledger, _, err := s.repo.GetLedger(ctx, entityID, ym)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return models.Dashboard{}, err
		}
		if err == nil {
			summary := finance.AggregateMonth(ledger)
			point.Income = summary.TotalIncome
			point.Expenses = summary.TotalExpenses
			point.Savings = summary.TotalSavings
			point.DebtPaid = finance.DebtPaidTotal(ledger)
		}

		snapshot, err := s.repo.GetConfigSnapshot(ctx, entityID, ym)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return models.Dashboard{}, err
		}
		if err == nil {
			for _, inc := range snapshot.BudgetVariables.Incomes {
				point.PlannedIncome = point.PlannedIncome.Add(inc.TotalAmount)
			}
			for _, exp := range snapshot.BudgetVariables.Expenses {
				point.PlannedExpenses = point.PlannedExpenses.Add(exp.TotalAmount)
			}
		}

		dash.History = append(dash.History, point)
	}

	currentYM := models.YearMonthOf(now)
	currentLedger, _, err := s.repo.GetLedger(ctx, entityID, currentYM)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.Dashboard{}, err
	}
	if err == nil {
		summary := finance.AggregateMonth(currentLedger)
		dash.CurrentMonthIncome = summary.TotalIncome
		dash.CurrentMonthNet = summary.FinalTotal
		dash.TopCategories = finance.CategoryTotals(currentLedger, 5)
	} else {
		dash.CurrentMonthIncome = decimal.Zero
		dash.CurrentMonthNet = decimal.Zero
		dash.TopCategories = []models.CategoryTotal{}
	}

	return dash, nil
}

// DebtAdviceItem pairs a debt with its classification
type DebtAdviceItem struct {
	Debt   models.Debt    `json:"debt"`
	Advice finance.Advice `json:"advice"`
}

// DebtAdvice classifies every tracked debt. Zero-valued thresholds fall
// back to the defaults.
func (s *Service) DebtAdvice(ctx context.Context, userID, entityID int64, thresholds finance.Thresholds) ([]DebtAdviceItem, error) {
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return nil, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return nil, err
	}

	if thresholds.HighRate.IsZero() && thresholds.MediumRate.IsZero() {
		thresholds = finance.DefaultThresholds()
	}
	if thresholds.MediumRate.GreaterThan(thresholds.HighRate) {
		return nil, validationErr("medium threshold above high threshold")
	}

	items := make([]DebtAdviceItem, 0, len(cfg.Debts))
	for _, d := range cfg.Debts {
		items = append(items, DebtAdviceItem{Debt: d, Advice: finance.ClassifyDebt(d, thresholds)})
	}
	return items, nil
}

// SimulateDebtPayoff runs the amortization simulator against a saved
// debt: its remaining balance over its installment term at its rate.
func (s *Service) SimulateDebtPayoff(ctx context.Context, userID, entityID int64, debtID string, extra decimal.Decimal) (finance.Simulation, error) {
	entity, err := s.authorizeEntity(ctx, userID, entityID)
	if err != nil {
		return finance.Simulation{}, err
	}
	cfg, _, err := s.loadConfig(ctx, entity)
	if err != nil {
		return finance.Simulation{}, err
	}
	debt := cfg.FindDebt(debtID)
	if debt == nil {
		return finance.Simulation{}, repository.ErrNotFound
	}

	return finance.Simulate(finance.SimulationInput{
		Principal:    debt.Remaining(),
		AnnualRate:   debt.AnnualRate,
		TermMonths:   debt.Installments,
		ExtraPayment: extra,
	})
}
