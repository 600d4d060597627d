package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gaston-app/budget-service/internal/finance"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// MonthSummary returns the month rollup with per-period summaries
func (h *Handler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	uid, eid, ym, ok := h.ledgerArgs(w, r)
	if !ok {
		return
	}

	insights, err := h.svc.MonthSummary(r.Context(), uid, eid, ym)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, insights)
}

// Dashboard returns the entity overview
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}

	dash, err := h.svc.Dashboard(r.Context(), uid, eid, time.Now().UTC())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

// parseThresholds reads optional high/medium rate cutoffs from the query
// string. Absent parameters leave the zero value, which the service
// replaces with the defaults.
func parseThresholds(r *http.Request) (finance.Thresholds, error) {
	var t finance.Thresholds
	if raw := r.URL.Query().Get("high_rate"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return t, err
		}
		t.HighRate = v
	}
	if raw := r.URL.Query().Get("medium_rate"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return t, err
		}
		t.MediumRate = v
	}
	return t, nil
}

// DebtAdvice classifies every tracked debt
func (h *Handler) DebtAdvice(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	thresholds, err := parseThresholds(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid threshold parameter")
		return
	}

	items, err := h.svc.DebtAdvice(r.Context(), uid, eid, thresholds)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// simulationResponse wraps a schedule with an optional non-convergence
// warning
type simulationResponse struct {
	finance.Simulation
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) respondSimulation(w http.ResponseWriter, sim finance.Simulation, err error) {
	switch {
	case errors.Is(err, finance.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, finance.ErrNonConvergence):
		respondJSON(w, http.StatusOK, simulationResponse{
			Simulation: sim,
			Warning:    "schedule did not converge; showing truncated schedule",
		})
	case err != nil:
		h.respondServiceError(w, err)
	default:
		respondJSON(w, http.StatusOK, simulationResponse{Simulation: sim})
	}
}

// SimulateDebt runs the amortization simulator against a saved debt
func (h *Handler) SimulateDebt(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	eid, ok := entityID(w, r)
	if !ok {
		return
	}
	var req struct {
		ExtraPayment decimal.Decimal `json:"extra_payment"`
	}
	if r.Body != nil {
		// Body is optional; an empty body means no extra payment.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sim, err := h.svc.SimulateDebtPayoff(r.Context(), uid, eid, mux.Vars(r)["debtID"], req.ExtraPayment)
	h.respondSimulation(w, sim, err)
}

// Simulate runs the amortization simulator on raw parameters
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}
	var in finance.SimulationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sim, err := finance.Simulate(in)
	h.respondSimulation(w, sim, err)
}

// RateSource provides the current exchange rate
type RateSource interface {
	GetRate() (float64, error)
}

// TRMRate returns the current COP/USD representative market rate
func (h *Handler) TRMRate(w http.ResponseWriter, r *http.Request) {
	if h.rates == nil {
		respondError(w, http.StatusServiceUnavailable, "rate source not configured")
		return
	}
	rate, err := h.rates.GetRate()
	if err != nil {
		h.log.Errorf("TRM lookup failed: %v", err)
		respondError(w, http.StatusBadGateway, "rate source unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"rate": rate})
}
