package handler

import (
	"encoding/json"
	"net/http"

	"checkout-engine/internal/middleware"
	"checkout-engine/internal/model"
	"checkout-engine/internal/payment"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().
		Str("error_code", code).
		Str("error", message).
		Int("status", status).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.GetRequestID(r.Context()),
	})
}

// writeServiceError maps a service error to its HTTP response.
// Domain errors keep their status and code; anything else is a generic 500 whose
// details only reach the logs.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	requestID := middleware.GetRequestID(r.Context())

	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", requestID).
			Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         model.ErrCodeInternalError,
			Message:       "internal server error",
			CorrelationID: requestID,
		})
		return
	}

	resp := model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		CorrelationID: requestID,
	}
	if de.OrderID != nil {
		resp.OrderID = de.OrderID.String()
	}

	if de.Code == model.ErrCodePreferenceCreationFailed {
		if reason := payment.FailureReason(err); reason != "" {
			resp.Message = de.Message + ": " + reason
		}
	}

	event := logger.Warn()
	if de.Status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("error_code", de.Code).
		Int("status", de.Status).
		Str("order_id", resp.OrderID).
		Str("request_id", requestID).
		Msg("request failed")

	writeJSON(w, de.Status, resp)
}
