package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func monthVar(r *http.Request) models.YearMonth {
	return models.YearMonth(mux.Vars(r)["yearMonth"])
}

func periodVar(r *http.Request) models.PeriodKey {
	return models.PeriodKey(mux.Vars(r)["period"])
}

// ledgerArgs pulls the common auth + path parameters of ledger routes
func (h *Handler) ledgerArgs(w http.ResponseWriter, r *http.Request) (int64, int64, models.YearMonth, bool) {
	uid, ok := userID(w, r)
	if !ok {
		return 0, 0, "", false
	}
	eid, ok := entityID(w, r)
	if !ok {
		return 0, 0, "", false
	}
	return uid, eid, monthVar(r), true
}

// ListLedgerMonths returns the months the entity has ledgers for
func (h *Handler) ListLedgerMonths(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	months, err := h.svc.ListLedgerMonths(r.Context(), uid, eid)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, months)
}

// GetLedger returns one month's ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.GetLedger(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// AddEntry appends an entry to a period
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}
	var in service.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger, err := h.svc.AddEntry(r.Context(), uid, eid, ym, periodVar(r), in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ledger)
}

// UpdateEntry replaces an entry
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}
	var in service.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger, err := h.svc.UpdateEntry(r.Context(), uid, eid, ym, periodVar(r), mux.Vars(r)["entryID"], in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// DeleteEntry removes an entry
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.DeleteEntry(r.Context(), uid, eid, ym, periodVar(r), mux.Vars(r)["entryID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// TogglePaid flips an expense's paid flag
func (h *Handler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.TogglePaid(r.Context(), uid, eid, ym, periodVar(r), mux.Vars(r)["entryID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// SetSavings records one period's savings
func (h *Handler) SetSavings(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ledger, err := h.svc.SetSavings(r.Context(), uid, eid, ym, periodVar(r), req.Amount)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// ApplyBudget replaces the month with the materialized recurring budget
func (h *Handler) ApplyBudget(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.ApplyBudget(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// CopyPeriod copies period 1 into period 2
func (h *Handler) CopyPeriod(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.CopyPeriod(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// CopyMonth replicates the month into target months
func (h *Handler) CopyMonth(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}
	var req struct {
		Targets []models.YearMonth `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.CopyMonth(r.Context(), uid, eid, ym, req.Targets); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"copied": len(req.Targets)})
}

// ClearPeriod empties one period
func (h *Handler) ClearPeriod(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.ClearPeriod(r.Context(), uid, eid, ym, periodVar(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// ClearMonth empties the whole month
func (h *Handler) ClearMonth(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	ledger, err := h.svc.ClearMonth(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledger)
}

// QuickAdd routes an entry by its date
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var in service.EntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ym, ledger, err := h.svc.QuickAdd(r.Context(), uid, eid, in)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"year_month": ym, "ledger": ledger})
}

// MakeRecurring promotes an entry to a budget variable
func (h *Handler) MakeRecurring(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	cfg, err := h.svc.MakeRecurring(r.Context(), uid, eid, ym, periodVar(r), mux.Vars(r)["entryID"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// ExportCSV streams the month as CSV
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	out, err := h.svc.ExportCSV(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger-%s.csv"`, ym))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
