package handler

import (
	"encoding/json"
	"net/http"

	"checkout-engine/internal/model"
	"checkout-engine/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if result.Gateway != nil {
		writeJSON(w, http.StatusCreated, result.Gateway)
		return
	}
	writeJSON(w, http.StatusCreated, result.Pickup)
}
