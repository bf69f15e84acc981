package handler

import (
	"net/http"
	"strconv"

	"checkout-engine/internal/model"
	"checkout-engine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order follow-up HTTP requests.
type OrderHandler struct {
	orders   service.OrderService
	checkout service.CheckoutService
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, checkout service.CheckoutService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		checkout: checkout,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListAwaitingPreference handles GET /api/orders/pending-preference requests.
func (h *OrderHandler) ListAwaitingPreference(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "limit must be a positive integer", h.logger)
			return
		}
		limit = n
	}

	orders, err := h.orders.ListAwaitingPreference(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// RetryPreference handles POST /api/orders/{id}/preference requests.
func (h *OrderHandler) RetryPreference(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.RetryPreference(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result.Gateway)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
