package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gaston-app/budget-service/internal/config"
	"github.com/gaston-app/budget-service/internal/handler"
	"github.com/gaston-app/budget-service/internal/integrations/banrep"
	"github.com/gaston-app/budget-service/internal/middleware"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/gaston-app/budget-service/internal/scheduler"
	"github.com/gaston-app/budget-service/internal/service"
	"github.com/gaston-app/budget-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, sender)
	trmClient := banrep.NewClient(cfg, logger)
	h := handler.NewHandler(svc, trmClient, logger)

	// Start the debt reminder scheduler
	sched := scheduler.New(repo, sender, logger, cfg)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/trm", h.TRMRate).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/entities", h.CreateEntity).Methods("POST")
	authRouter.HandleFunc("/entities", h.ListEntities).Methods("GET")
	// Entity configuration
	authRouter.HandleFunc("/entities/{entityID}/config", h.GetConfig).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/config", h.ReplaceConfig).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/categories", h.AddCategory).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/categories/{name}", h.RemoveCategory).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/debts", h.UpsertDebt).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/debts/{debtID}", h.UpsertDebt).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/debts/{debtID}", h.DeleteDebt).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/goals", h.UpsertGoal).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/goals/{goalID}", h.UpsertGoal).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/goals/{goalID}", h.DeleteGoal).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/goals/{goalID}/funds", h.AddGoalFunds).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/projects", h.UpsertProject).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/projects/{projectID}", h.UpsertProject).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/projects/{projectID}", h.DeleteProject).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/budget/incomes", h.UpsertBudgetIncome).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/budget/incomes/{variableID}", h.UpsertBudgetIncome).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/budget/incomes/{variableID}", h.DeleteBudgetIncome).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/budget/expenses", h.UpsertBudgetExpense).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/budget/expenses/{variableID}", h.UpsertBudgetExpense).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/budget/expenses/{variableID}", h.DeleteBudgetExpense).Methods("DELETE")
	// Monthly ledgers
	authRouter.HandleFunc("/entities/{entityID}/ledgers", h.ListLedgerMonths).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}", h.GetLedger).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/entries", h.AddEntry).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/entries/{entryID}", h.UpdateEntry).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/entries/{entryID}", h.DeleteEntry).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/entries/{entryID}/toggle-paid", h.TogglePaid).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/entries/{entryID}/make-recurring", h.MakeRecurring).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}/savings", h.SetSavings).Methods("PUT")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/periods/{period}", h.ClearPeriod).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/apply-budget", h.ApplyBudget).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/copy-period", h.CopyPeriod).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/copy", h.CopyMonth).Methods("POST")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}", h.ClearMonth).Methods("DELETE")
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/export.csv", h.ExportCSV).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/quick-add", h.QuickAdd).Methods("POST")
	// Insights
	authRouter.HandleFunc("/entities/{entityID}/ledgers/{yearMonth}/summary", h.MonthSummary).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/debt-advice", h.DebtAdvice).Methods("GET")
	authRouter.HandleFunc("/entities/{entityID}/debts/{debtID}/simulate", h.SimulateDebt).Methods("POST")
	authRouter.HandleFunc("/simulate", h.Simulate).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
