package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
)

type CheckoutHandler struct {
	orc *checkout.Orchestrator
}

func NewCheckoutHandler(orc *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orc: orc}
}

type CheckoutStateDTO struct {
	Stage   domain.CheckoutStage `json:"stage"`
	Draft   domain.CheckoutDraft `json:"draft"`
	Summary domain.PriceSummary  `json:"summary"`
}

type SelectAddressRequestDTO struct {
	AddressID int64 `json:"address_id"`
}

type SelectShippingRequestDTO struct {
	Method domain.ShippingMethod `json:"method"`
}

type SelectPaymentRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

func (h *CheckoutHandler) state() CheckoutStateDTO {
	return CheckoutStateDTO{
		Stage:   h.orc.Stage(),
		Draft:   h.orc.Draft(),
		Summary: h.orc.Summary(),
	}
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	if err := h.orc.Advance(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Return(w http.ResponseWriter, r *http.Request) {
	if err := h.orc.Return(); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req SelectAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.orc.SelectAddress(req.AddressID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	var req SelectShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.orc.SelectShipping(req.Method); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_shipping", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req SelectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.orc.SelectPayment(r.Context(), req.Method); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

// RequestIntent retries payment-intent acquisition on explicit user action.
func (h *CheckoutHandler) RequestIntent(w http.ResponseWriter, r *http.Request) {
	if err := h.orc.RequestIntent(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	order, err := h.orc.Confirm(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
