package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// GetConfig returns the entity configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.GetConfig(r.Context(), uid, eid)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// ReplaceConfig overwrites the entity configuration
func (h *Handler) ReplaceConfig(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var incoming models.EntityConfig
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.svc.ReplaceConfig(r.Context(), uid, eid, incoming)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// AddCategory appends an expense category
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.svc.AddCategory(r.Context(), uid, eid, req.Name)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, cfg)
}

// RemoveCategory deletes an expense category
func (h *Handler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.RemoveCategory(r.Context(), uid, eid, mux.Vars(r)["name"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpsertDebt creates or updates a debt
func (h *Handler) UpsertDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var debt models.Debt
	if err := json.NewDecoder(r.Body).Decode(&debt); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := mux.Vars(r)["debtID"]; id != "" {
		debt.ID = id
	}

	cfg, err := h.svc.UpsertDebt(r.Context(), uid, eid, debt)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteDebt removes a debt
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.DeleteDebt(r.Context(), uid, eid, mux.Vars(r)["debtID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpsertGoal creates or updates a financial goal
func (h *Handler) UpsertGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var goal models.FinancialGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := mux.Vars(r)["goalID"]; id != "" {
		goal.ID = id
	}

	cfg, err := h.svc.UpsertGoal(r.Context(), uid, eid, goal)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteGoal removes a financial goal
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.DeleteGoal(r.Context(), uid, eid, mux.Vars(r)["goalID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// AddGoalFunds records a deposit toward a goal
func (h *Handler) AddGoalFunds(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.svc.AddGoalFunds(r.Context(), uid, eid, mux.Vars(r)["goalID"], req.Amount, req.Note)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpsertProject creates or updates a project
func (h *Handler) UpsertProject(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := mux.Vars(r)["projectID"]; id != "" {
		project.ID = id
	}

	cfg, err := h.svc.UpsertProject(r.Context(), uid, eid, project)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteProject removes a project
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.DeleteProject(r.Context(), uid, eid, mux.Vars(r)["projectID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpsertBudgetIncome creates or updates a recurring income template
func (h *Handler) UpsertBudgetIncome(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var inc models.BudgetIncome
	if err := json.NewDecoder(r.Body).Decode(&inc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := mux.Vars(r)["variableID"]; id != "" {
		inc.ID = id
	}

	cfg, err := h.svc.UpsertBudgetIncome(r.Context(), uid, eid, inc)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteBudgetIncome removes a recurring income template
func (h *Handler) DeleteBudgetIncome(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.DeleteBudgetIncome(r.Context(), uid, eid, mux.Vars(r)["variableID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpsertBudgetExpense creates or updates a recurring expense template
func (h *Handler) UpsertBudgetExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var exp models.BudgetExpense
	if err := json.NewDecoder(r.Body).Decode(&exp); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id := mux.Vars(r)["variableID"]; id != "" {
		exp.ID = id
	}

	cfg, err := h.svc.UpsertBudgetExpense(r.Context(), uid, eid, exp)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// DeleteBudgetExpense removes a recurring expense template
func (h *Handler) DeleteBudgetExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.DeleteBudgetExpense(r.Context(), uid, eid, mux.Vars(r)["variableID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
