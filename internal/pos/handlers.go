package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tablepay/internal/apperr"
	"tablepay/internal/domain"
	"tablepay/internal/lifecycle"
	"tablepay/internal/logger"
	"tablepay/internal/report"
	"tablepay/internal/session"
)

const requestTimeout = 10 * time.Second

type OrderHandler struct {
	engine *lifecycle.Engine
	log    logger.Logger
}

func NewOrderHandler(engine *lifecycle.Engine, log logger.Logger) *OrderHandler {
	return &OrderHandler{engine: engine, log: log}
}

// orderView decorates an order with the derived dashboard fields.
type orderView struct {
	domain.Order
	ElapsedMinutes int  `json:"elapsed_minutes"`
	IsUrgent       bool `json:"is_urgent"`
}

type listResponse struct {
	Orders []orderView           `json:"orders"`
	Counts map[domain.Status]int `json:"counts"`
}

func toListResponse(orders []domain.Order) listResponse {
	now := time.Now()
	views := make([]orderView, len(orders))
	for i, o := range orders {
		views[i] = orderView{
			Order:          o,
			ElapsedMinutes: lifecycle.ElapsedMinutes(o, now),
			IsUrgent:       lifecycle.IsUrgent(o, now),
		}
	}
	return listResponse{Orders: views, Counts: lifecycle.CountByStatus(orders)}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lifecycle.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Action("parse_failed").Error("Failed to parse order request", err)
		jsonError(w, http.StatusBadRequest, "failed to parse JSON")
		return
	}

	sess, _ := session.FromContext(r.Context())

	ctx, cancel := timeoutCtx(r)
	defer cancel()

	order, err := h.engine.Create(ctx, sess, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

type transitionRequest struct {
	ExpectedFrom domain.Status `json:"expected_from"`
	To           domain.Status `json:"to"`
}

func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "failed to parse JSON")
		return
	}

	sess, _ := session.FromContext(r.Context())

	ctx, cancel := timeoutCtx(r)
	defer cancel()

	if err := h.engine.Transition(ctx, sess, id, req.ExpectedFrom, req.To); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.To)})
}

func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.engine.ListActive)
}

func (h *OrderHandler) ListReady(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.engine.ListReady)
}

func (h *OrderHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.engine.ListCompletedToday)
}

func (h *OrderHandler) StatusLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ctx, cancel := timeoutCtx(r)
	defer cancel()

	entries, err := h.engine.StatusLog(ctx, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *OrderHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	orders, err := h.engine.ListCompletedToday(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(orders))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, query func(context.Context) ([]domain.Order, error)) {
	ctx, cancel := timeoutCtx(r)
	defer cancel()

	orders, err := query(ctx)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(orders))
}

func timeoutCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrRoleNotAllowed):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrBadStatus),
		errors.Is(err, apperr.ErrBadPaymentMode),
		errors.Is(err, apperr.ErrBadQuantity),
		errors.Is(err, apperr.ErrBadPrice),
		errors.Is(err, apperr.ErrFieldIsEmpty),
		errors.Is(err, apperr.ErrEmptyOrder):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, "internal error, please retry")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
