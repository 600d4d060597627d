package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/finance"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory repository.Store for service tests
type fakeStore struct {
	users      map[int64]models.User
	entities   map[int64]models.Entity
	configs    map[int64]versionedConfig
	snapshots  map[string]models.EntityConfig
	ledgers    map[string]versionedLedger
	nextUser   int64
	nextEntity int64
}

type versionedConfig struct {
	cfg      models.EntityConfig
	revision int64
}

type versionedLedger struct {
	ledger   models.MonthlyLedger
	revision int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[int64]models.User{},
		entities:  map[int64]models.Entity{},
		configs:   map[int64]versionedConfig{},
		snapshots: map[string]models.EntityConfig{},
		ledgers:   map[string]versionedLedger{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, email, name, hash string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return models.User{}, repository.ErrDuplicateEmail
		}
	}
	f.nextUser++
	u := models.User{ID: f.nextUser, Email: email, Name: name, PasswordHash: hash}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateEntity(_ context.Context, ownerID int64, name string, kind models.EntityKind) (models.Entity, error) {
	f.nextEntity++
	e := models.Entity{ID: f.nextEntity, OwnerID: ownerID, Name: name, Kind: kind}
	f.entities[e.ID] = e
	return e, nil
}

func (f *fakeStore) GetEntity(_ context.Context, id int64) (models.Entity, error) {
	e, ok := f.entities[id]
	if !ok {
		return models.Entity{}, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListEntities(_ context.Context, ownerID int64) ([]models.Entity, error) {
	out := []models.Entity{}
	for _, e := range f.entities {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllEntities(_ context.Context) ([]models.Entity, error) {
	out := []models.Entity{}
	for _, e := range f.entities {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) GetConfig(_ context.Context, entityID int64) (models.EntityConfig, int64, error) {
	vc, ok := f.configs[entityID]
	if !ok {
		return models.EntityConfig{}, 0, repository.ErrNotFound
	}
	return vc.cfg, vc.revision, nil
}

func (f *fakeStore) SaveConfig(_ context.Context, entityID int64, cfg models.EntityConfig, revision int64) (int64, error) {
	vc, ok := f.configs[entityID]
	if revision == 0 {
		if ok {
			return 0, repository.ErrRevisionConflict
		}
		f.configs[entityID] = versionedConfig{cfg: cfg, revision: 1}
		return 1, nil
	}
	if !ok || vc.revision != revision {
		return 0, repository.ErrRevisionConflict
	}
	f.configs[entityID] = versionedConfig{cfg: cfg, revision: revision + 1}
	return revision + 1, nil
}

func snapshotKey(entityID int64, ym models.YearMonth) string {
	return fmt.Sprintf("%d/%s", entityID, ym)
}

func (f *fakeStore) GetConfigSnapshot(_ context.Context, entityID int64, ym models.YearMonth) (models.EntityConfig, error) {
	cfg, ok := f.snapshots[snapshotKey(entityID, ym)]
	if !ok {
		return models.EntityConfig{}, repository.ErrNotFound
	}
	return cfg, nil
}

func (f *fakeStore) SaveConfigSnapshot(_ context.Context, entityID int64, ym models.YearMonth, cfg models.EntityConfig) error {
	f.snapshots[snapshotKey(entityID, ym)] = cfg
	return nil
}

func (f *fakeStore) GetLedger(_ context.Context, entityID int64, ym models.YearMonth) (models.MonthlyLedger, int64, error) {
	vl, ok := f.ledgers[snapshotKey(entityID, ym)]
	if !ok {
		return models.MonthlyLedger{}, 0, repository.ErrNotFound
	}
	return vl.ledger, vl.revision, nil
}

func (f *fakeStore) SaveLedger(_ context.Context, entityID int64, ym models.YearMonth, ledger models.MonthlyLedger, revision int64) (int64, error) {
	key := snapshotKey(entityID, ym)
	vl, ok := f.ledgers[key]
	if revision == 0 {
		if ok {
			return 0, repository.ErrRevisionConflict
		}
		f.ledgers[key] = versionedLedger{ledger: ledger, revision: 1}
		return 1, nil
	}
	if !ok || vl.revision != revision {
		return 0, repository.ErrRevisionConflict
	}
	f.ledgers[key] = versionedLedger{ledger: ledger, revision: revision + 1}
	return revision + 1, nil
}

func (f *fakeStore) ListLedgerMonths(_ context.Context, entityID int64) ([]models.YearMonth, error) {
	out := []models.YearMonth{}
	for id := range f.ledgers {
		var eid int64
		var ym string
		if _, err := fmt.Sscanf(id, "%d/%s", &eid, &ym); err == nil && eid == entityID {
			out = append(out, models.YearMonth(ym))
		}
	}
	return out, nil
}

type fakeNotifier struct {
	goalEmails []string
}

func (f *fakeNotifier) SendGoalReached(to string, _ models.FinancialGoal) error {
	f.goalEmails = append(f.goalEmails, to)
	return nil
}

func (f *fakeNotifier) SendPaymentReminder(string, models.Debt, time.Time) error {
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testService(t *testing.T) (*Service, *fakeStore, *fakeNotifier, int64, int64) {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, quietLogger(), &config.Config{JWTSecret: "test-secret"}, notifier)

	ctx := context.Background()
	user, err := svc.Register(ctx, "owner@example.com", "Owner", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	entity, err := svc.CreateEntity(ctx, user.ID, "Household", models.EntityKindPersonal)
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	return svc, store, notifier, user.ID, entity.ID
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _, _ := testService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "owner@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}

	if _, err := svc.Login(ctx, "owner@example.com", "wrong-password"); err == nil {
		t.Error("Login with wrong password should fail")
	}
	if _, err := svc.Register(ctx, "owner@example.com", "Again", "password123"); err == nil {
		t.Error("duplicate registration should fail")
	}
	if _, err := svc.Register(ctx, "short@example.com", "Short", "short"); err == nil {
		t.Error("short password should fail validation")
	}
}

func TestCreateEntitySeedsTemplate(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	cfg, err := svc.GetConfig(ctx, userID, entityID)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Currency != "COP" || cfg.PayFrequency != models.PayMonthly {
		t.Errorf("template not applied: currency=%s freq=%s", cfg.Currency, cfg.PayFrequency)
	}
	if len(cfg.Categories) == 0 {
		t.Error("template categories missing")
	}
}

func TestEntityOwnership(t *testing.T) {
	svc, _, _, _, entityID := testService(t)
	ctx := context.Background()

	intruder, err := svc.Register(ctx, "other@example.com", "Other", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.GetConfig(ctx, intruder.ID, entityID); err != ErrForbidden {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestTogglePaidSyncsLinkedDebt(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	cfg, err := svc.UpsertDebt(ctx, userID, entityID, models.Debt{
		Name:        "Car loan",
		TotalAmount: mustDec("5000000"),
		AnnualRate:  mustDec("14"),
	})
	if err != nil {
		t.Fatalf("UpsertDebt: %v", err)
	}
	debtID := cfg.Debts[0].ID

	ym := models.YearMonth("2026-08")
	ledger, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind:        "expense",
		Description: "Loan installment",
		Amount:      mustDec("400000"),
		Category:    models.CategoryDebtPayment,
		DebtID:      debtID,
	})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	entryID := ledger.Period1.Expenses[0].ID

	ledger, err = svc.TogglePaid(ctx, userID, entityID, ym, models.Period1, entryID)
	if err != nil {
		t.Fatalf("TogglePaid: %v", err)
	}
	if !ledger.Period1.Expenses[0].Paid {
		t.Fatal("expense should be paid after toggle")
	}
	cfg, err = svc.GetConfig(ctx, userID, entityID)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if got := cfg.Debts[0].PaidAmount; !got.Equal(mustDec("400000")) {
		t.Errorf("debt PaidAmount after pay = %s, want 400000", got)
	}

	// Toggling back subtracts the amount again.
	if _, err = svc.TogglePaid(ctx, userID, entityID, ym, models.Period1, entryID); err != nil {
		t.Fatalf("TogglePaid back: %v", err)
	}
	cfg, _ = svc.GetConfig(ctx, userID, entityID)
	if got := cfg.Debts[0].PaidAmount; !got.IsZero() {
		t.Errorf("debt PaidAmount after unpay = %s, want 0", got)
	}
}

func TestAddGoalFundsNotifiesOnTarget(t *testing.T) {
	svc, _, notifier, userID, entityID := testService(t)
	ctx := context.Background()

	cfg, err := svc.UpsertGoal(ctx, userID, entityID, models.FinancialGoal{
		Name:         "Emergency fund",
		TargetAmount: mustDec("1000000"),
	})
	if err != nil {
		t.Fatalf("UpsertGoal: %v", err)
	}
	goalID := cfg.FinancialGoals[0].ID

	cfg, err = svc.AddGoalFunds(ctx, userID, entityID, goalID, mustDec("400000"), "first deposit")
	if err != nil {
		t.Fatalf("AddGoalFunds: %v", err)
	}
	goal := cfg.FinancialGoals[0]
	if !goal.CurrentAmount.Equal(mustDec("400000")) {
		t.Errorf("CurrentAmount = %s, want 400000", goal.CurrentAmount)
	}
	if len(goal.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(goal.Logs))
	}
	if len(notifier.goalEmails) != 0 {
		t.Error("notification fired before target reached")
	}

	if _, err = svc.AddGoalFunds(ctx, userID, entityID, goalID, mustDec("600000"), "reached"); err != nil {
		t.Fatalf("AddGoalFunds: %v", err)
	}
	if len(notifier.goalEmails) != 1 || notifier.goalEmails[0] != "owner@example.com" {
		t.Errorf("goal notification emails = %v, want owner@example.com once", notifier.goalEmails)
	}

	// Further deposits past the target do not re-notify.
	if _, err = svc.AddGoalFunds(ctx, userID, entityID, goalID, mustDec("50000"), "over"); err != nil {
		t.Fatalf("AddGoalFunds: %v", err)
	}
	if len(notifier.goalEmails) != 1 {
		t.Errorf("notification fired again on an already-reached goal")
	}
}

func TestApplyBudgetReplacesMonth(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	if _, err := svc.UpsertBudgetIncome(ctx, userID, entityID, models.BudgetIncome{
		Name: "Salary", TotalAmount: mustDec("3000000"),
	}); err != nil {
		t.Fatalf("UpsertBudgetIncome: %v", err)
	}
	if _, err := svc.UpsertBudgetExpense(ctx, userID, entityID, models.BudgetExpense{
		Name: "Rent", TotalAmount: mustDec("1200000"), Category: "utilities", PaymentDay: 3,
	}); err != nil {
		t.Fatalf("UpsertBudgetExpense: %v", err)
	}

	ym := models.YearMonth("2026-09")
	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "expense", Description: "Stray", Amount: mustDec("99"), Category: "other",
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	ledger, err := svc.ApplyBudget(ctx, userID, entityID, ym)
	if err != nil {
		t.Fatalf("ApplyBudget: %v", err)
	}
	if len(ledger.Period1.Incomes) != 1 || len(ledger.Period1.Expenses) != 1 {
		t.Fatalf("materialized month = %d incomes %d expenses, want 1 and 1",
			len(ledger.Period1.Incomes), len(ledger.Period1.Expenses))
	}
	for _, e := range ledger.Period1.Expenses {
		if e.Description == "Stray" {
			t.Error("apply-budget must replace existing entries")
		}
	}

	again, err := svc.ApplyBudget(ctx, userID, entityID, ym)
	if err != nil {
		t.Fatalf("ApplyBudget again: %v", err)
	}
	if again.Period1.Incomes[0].ID != ledger.Period1.Incomes[0].ID {
		t.Error("materialized ids must be deterministic across applies")
	}
}

func TestQuickAddRoutesByDate(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	ym, ledger, err := svc.QuickAdd(ctx, userID, entityID, EntryInput{
		Kind:        "expense",
		Description: "Dinner",
		Amount:      mustDec("85000"),
		Category:    "eating_out",
		Date:        "2026-07-22",
	})
	if err != nil {
		t.Fatalf("QuickAdd: %v", err)
	}
	if ym != "2026-07" {
		t.Errorf("month = %s, want 2026-07", ym)
	}
	if len(ledger.Period2.Expenses) != 1 || len(ledger.Period1.Expenses) != 0 {
		t.Errorf("day 22 should land in period 2")
	}
}

func TestCopyMonthResetsState(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	ym := models.YearMonth("2026-05")
	ledger, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "expense", Description: "Rent", Amount: mustDec("1200000"), Category: "utilities", Paid: true,
	})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := svc.SetSavings(ctx, userID, entityID, ym, models.Period1, mustDec("200000")); err != nil {
		t.Fatalf("SetSavings: %v", err)
	}

	if err := svc.CopyMonth(ctx, userID, entityID, ym, []models.YearMonth{"2026-06"}); err != nil {
		t.Fatalf("CopyMonth: %v", err)
	}

	copied, err := svc.GetLedger(ctx, userID, entityID, "2026-06")
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(copied.Period1.Expenses) != 1 {
		t.Fatalf("copied expenses = %d, want 1", len(copied.Period1.Expenses))
	}
	got := copied.Period1.Expenses[0]
	if got.Paid {
		t.Error("copied expense should have paid reset")
	}
	if got.ID == ledger.Period1.Expenses[0].ID {
		t.Error("copied expense should get a new id")
	}
	if !copied.Period1.Savings.IsZero() {
		t.Error("copied month should have savings zeroed")
	}

	if err := svc.CopyMonth(ctx, userID, entityID, ym, []models.YearMonth{ym}); err == nil {
		t.Error("copying a month onto itself should fail")
	}
}

func TestMakeRecurringPromotesEntry(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	ym := models.YearMonth("2026-04")
	ledger, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "expense", Description: "Internet", Amount: mustDec("120000"), Category: "utilities", Date: "2026-04-10",
	})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	cfg, err := svc.MakeRecurring(ctx, userID, entityID, ym, models.Period1, ledger.Period1.Expenses[0].ID)
	if err != nil {
		t.Fatalf("MakeRecurring: %v", err)
	}
	if len(cfg.BudgetVariables.Expenses) != 1 {
		t.Fatalf("budget expenses = %d, want 1", len(cfg.BudgetVariables.Expenses))
	}
	promoted := cfg.BudgetVariables.Expenses[0]
	if promoted.Name != "Internet" || promoted.PaymentDay != 10 {
		t.Errorf("promoted = %+v, want name Internet day 10", promoted)
	}
}

func TestAddEntryRejectsUnknownCategory(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	_, err := svc.AddEntry(ctx, userID, entityID, "2026-08", models.Period1, EntryInput{
		Kind: "expense", Description: "Mystery", Amount: mustDec("10"), Category: "nonexistent",
	})
	if err == nil {
		t.Fatal("unknown category should be rejected")
	}
}

func TestExportCSV(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	ym := models.YearMonth("2026-03")
	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "income", Description: "Salary", Amount: mustDec("3000000"), Date: "2026-03-01",
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period2, EntryInput{
		Kind: "expense", Description: "Rent", Amount: mustDec("1200000"), Category: "utilities", Paid: true, Date: "2026-03-20",
	}); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	out, err := svc.ExportCSV(ctx, userID, entityID, ym)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	want := "date,period,kind,description,category,amount,status\n" +
		"2026-03-01,q1,income,Salary,,3000000,\n" +
		"2026-03-20,q2,expense,Rent,utilities,1200000,paid\n"
	if string(out) != want {
		t.Errorf("csv = %q, want %q", out, want)
	}
}

// conflictingStore wraps fakeStore, failing the next N document saves
// with a revision conflict to exercise the retry loops
type conflictingStore struct {
	*fakeStore
	ledgerConflicts int
	configConflicts int
}

func (c *conflictingStore) SaveLedger(ctx context.Context, entityID int64, ym models.YearMonth, ledger models.MonthlyLedger, revision int64) (int64, error) {
	if c.ledgerConflicts > 0 {
		c.ledgerConflicts--
		return 0, repository.ErrRevisionConflict
	}
	return c.fakeStore.SaveLedger(ctx, entityID, ym, ledger, revision)
}

func (c *conflictingStore) SaveConfig(ctx context.Context, entityID int64, cfg models.EntityConfig, revision int64) (int64, error) {
	if c.configConflicts > 0 {
		c.configConflicts--
		return 0, repository.ErrRevisionConflict
	}
	return c.fakeStore.SaveConfig(ctx, entityID, cfg, revision)
}

func conflictService(t *testing.T) (*Service, *conflictingStore, int64, int64) {
	t.Helper()
	store := &conflictingStore{fakeStore: newFakeStore()}
	svc := NewService(store, quietLogger(), &config.Config{JWTSecret: "test-secret"}, nil)

	ctx := context.Background()
	user, err := svc.Register(ctx, "owner@example.com", "Owner", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	entity, err := svc.CreateEntity(ctx, user.ID, "Household", models.EntityKindPersonal)
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	return svc, store, user.ID, entity.ID
}

func TestLedgerWriteRetriesOnConflict(t *testing.T) {
	svc, store, userID, entityID := conflictService(t)
	ctx := context.Background()

	// A single lost race is absorbed by a re-read and retry.
	store.ledgerConflicts = 1
	ledger, err := svc.AddEntry(ctx, userID, entityID, "2026-08", models.Period1, EntryInput{
		Kind: "income", Description: "Salary", Amount: mustDec("3000000"),
	})
	if err != nil {
		t.Fatalf("AddEntry after one conflict: %v", err)
	}
	if len(ledger.Period1.Incomes) != 1 {
		t.Fatalf("incomes = %d, want 1", len(ledger.Period1.Incomes))
	}

	// Persistent conflicts exhaust the retries and surface to the caller.
	store.ledgerConflicts = saveAttempts
	_, err = svc.AddEntry(ctx, userID, entityID, "2026-08", models.Period1, EntryInput{
		Kind: "income", Description: "Bonus", Amount: mustDec("100"),
	})
	if !errors.Is(err, repository.ErrRevisionConflict) {
		t.Fatalf("err = %v, want ErrRevisionConflict after exhausted retries", err)
	}
}

func TestConfigWriteRetriesOnConflict(t *testing.T) {
	svc, store, userID, entityID := conflictService(t)
	ctx := context.Background()

	store.configConflicts = 1
	cfg, err := svc.AddCategory(ctx, userID, entityID, "subscriptions")
	if err != nil {
		t.Fatalf("AddCategory after one conflict: %v", err)
	}
	if !cfg.HasCategory("subscriptions") {
		t.Fatal("category missing after retried save")
	}

	store.configConflicts = saveAttempts
	_, err = svc.AddCategory(ctx, userID, entityID, "pets")
	if !errors.Is(err, repository.ErrRevisionConflict) {
		t.Fatalf("err = %v, want ErrRevisionConflict after exhausted retries", err)
	}
}

func TestDashboard(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()
	now := time.Now().UTC()
	ym := models.YearMonthOf(now)

	if _, err := svc.UpsertDebt(ctx, userID, entityID, models.Debt{
		Name: "Car loan", TotalAmount: mustDec("1000000"), PaidAmount: mustDec("400000"), AnnualRate: mustDec("14"),
	}); err != nil {
		t.Fatalf("UpsertDebt: %v", err)
	}
	cfg, err := svc.UpsertGoal(ctx, userID, entityID, models.FinancialGoal{
		Name: "Trip", TargetAmount: mustDec("1000000"),
	})
	if err != nil {
		t.Fatalf("UpsertGoal: %v", err)
	}
	if _, err := svc.AddGoalFunds(ctx, userID, entityID, cfg.FinancialGoals[0].ID, mustDec("250000"), ""); err != nil {
		t.Fatalf("AddGoalFunds: %v", err)
	}
	// This save also snapshots the config under the current month, which
	// feeds the planned series.
	if _, err := svc.UpsertBudgetIncome(ctx, userID, entityID, models.BudgetIncome{
		Name: "Salary", TotalAmount: mustDec("2800000"),
	}); err != nil {
		t.Fatalf("UpsertBudgetIncome: %v", err)
	}

	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "income", Description: "Salary", Amount: mustDec("3000000"),
	}); err != nil {
		t.Fatalf("AddEntry income: %v", err)
	}
	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period1, EntryInput{
		Kind: "expense", Description: "Market", Amount: mustDec("1000000"), Category: "groceries", Paid: true,
	}); err != nil {
		t.Fatalf("AddEntry groceries: %v", err)
	}
	if _, err := svc.AddEntry(ctx, userID, entityID, ym, models.Period2, EntryInput{
		Kind: "expense", Description: "Loan installment", Amount: mustDec("500000"), Category: models.CategoryDebtPayment, Paid: true,
	}); err != nil {
		t.Fatalf("AddEntry debt payment: %v", err)
	}
	if _, err := svc.SetSavings(ctx, userID, entityID, ym, models.Period1, mustDec("200000")); err != nil {
		t.Fatalf("SetSavings: %v", err)
	}

	dash, err := svc.Dashboard(ctx, userID, entityID, now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if !dash.TotalOutstandingDebt.Equal(mustDec("600000")) {
		t.Errorf("TotalOutstandingDebt = %s, want 600000", dash.TotalOutstandingDebt)
	}
	if !dash.TotalGoalSavings.Equal(mustDec("250000")) {
		t.Errorf("TotalGoalSavings = %s, want 250000", dash.TotalGoalSavings)
	}
	if !dash.CurrentMonthIncome.Equal(mustDec("3000000")) {
		t.Errorf("CurrentMonthIncome = %s, want 3000000", dash.CurrentMonthIncome)
	}
	// net = income - paid expenses - savings
	if !dash.CurrentMonthNet.Equal(mustDec("1300000")) {
		t.Errorf("CurrentMonthNet = %s, want 1300000", dash.CurrentMonthNet)
	}

	if len(dash.History) != historyMonths {
		t.Fatalf("history = %d points, want %d", len(dash.History), historyMonths)
	}
	last := dash.History[len(dash.History)-1]
	if last.YearMonth != ym {
		t.Fatalf("last history point = %s, want %s", last.YearMonth, ym)
	}
	if !last.Income.Equal(mustDec("3000000")) || !last.Expenses.Equal(mustDec("1500000")) {
		t.Errorf("last point income/expenses = %s/%s, want 3000000/1500000", last.Income, last.Expenses)
	}
	if !last.Savings.Equal(mustDec("200000")) {
		t.Errorf("last point savings = %s, want 200000", last.Savings)
	}
	if !last.DebtPaid.Equal(mustDec("500000")) {
		t.Errorf("last point debt paid = %s, want 500000", last.DebtPaid)
	}
	if !last.PlannedIncome.Equal(mustDec("2800000")) {
		t.Errorf("last point planned income = %s, want 2800000", last.PlannedIncome)
	}
	first := dash.History[0]
	if !first.Income.IsZero() || !first.PlannedIncome.IsZero() {
		t.Errorf("months without documents should report zeros, got %+v", first)
	}

	if len(dash.TopCategories) != 2 {
		t.Fatalf("top categories = %d, want 2", len(dash.TopCategories))
	}
	if dash.TopCategories[0].Category != "groceries" || !dash.TopCategories[0].Total.Equal(mustDec("1000000")) {
		t.Errorf("top category = %+v, want groceries 1000000", dash.TopCategories[0])
	}
}

func TestDebtAdviceThresholds(t *testing.T) {
	svc, _, _, userID, entityID := testService(t)
	ctx := context.Background()

	if _, err := svc.UpsertDebt(ctx, userID, entityID, models.Debt{
		Name: "Card", TotalAmount: mustDec("1000000"), AnnualRate: mustDec("15"),
	}); err != nil {
		t.Fatalf("UpsertDebt: %v", err)
	}

	items, err := svc.DebtAdvice(ctx, userID, entityID, finance.Thresholds{})
	if err != nil {
		t.Fatalf("DebtAdvice: %v", err)
	}
	if len(items) != 1 || items[0].Advice.Tier != finance.TierMedium {
		t.Fatalf("default advice = %+v, want medium", items)
	}

	items, err = svc.DebtAdvice(ctx, userID, entityID, finance.Thresholds{
		HighRate: mustDec("10"), MediumRate: mustDec("5"),
	})
	if err != nil {
		t.Fatalf("DebtAdvice custom: %v", err)
	}
	if items[0].Advice.Tier != finance.TierHigh {
		t.Errorf("custom advice tier = %s, want high", items[0].Advice.Tier)
	}
}
