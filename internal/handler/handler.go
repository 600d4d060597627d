package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gaston-app/budget-service/internal/middleware"
	"github.com/gaston-app/budget-service/internal/models"
	"github.com/gaston-app/budget-service/internal/repository"
	"github.com/gaston-app/budget-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler exposes the service over HTTP
type Handler struct {
	svc   *service.Service
	rates RateSource
	log   *logrus.Logger
}

// NewHandler creates the HTTP handler set. rates may be nil when the
// exchange-rate integration is disabled.
func NewHandler(svc *service.Service, rates RateSource, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, rates: rates, log: log}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP statuses
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrRevisionConflict):
		respondError(w, http.StatusConflict, "document was modified concurrently, retry")
	case errors.Is(err, repository.ErrDuplicateEmail):
		respondError(w, http.StatusConflict, "email already registered")
	default:
		h.log.Errorf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// userID pulls the authenticated user from the request context
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
	}
	return id, ok
}

// entityID parses the {entityID} path variable
func entityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["entityID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entity id")
		return 0, false
	}
	return id, true
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateEntity creates a budget entity for the authenticated user
func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string            `json:"name"`
		Kind models.EntityKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entity, err := h.svc.CreateEntity(r.Context(), uid, req.Name, req.Kind)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entity)
}

// ListEntities lists the authenticated user's entities
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	entities, err := h.svc.ListEntities(r.Context(), uid)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entities)
}
