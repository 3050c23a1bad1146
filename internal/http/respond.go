package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_storefront/internal/address"
	"github.com/fjod/go_storefront/internal/backend"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/geo"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps service errors onto HTTP statuses. Validation
// errors are 400s, rejected wizard guards are 409s, backend business errors
// keep their status and verbatim message, transport failures are retryable
// 502s.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, address.ErrIncompleteSelection),
		errors.Is(err, address.ErrLabelRequired),
		errors.Is(err, geo.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())

	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, checkout.ErrNoAddress),
		errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrIntentRequired),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "guard_rejected", err.Error())

	case errors.Is(err, backend.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())

	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			status := apiErr.Status
			if status < 400 {
				status = http.StatusUnprocessableEntity
			}
			respondError(w, status, "backend_rejected", apiErr.Message)
			return
		}
		if backend.Retryable(err) {
			respondJSON(w, http.StatusBadGateway, ErrorResponse{
				Error:     err.Error(),
				Code:      "backend_unavailable",
				Retryable: true,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
