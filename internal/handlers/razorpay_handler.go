package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"repair-backend/internal/models"
	"repair-backend/internal/services"
)

type RazorpayHandler struct {
	Service *services.RazorpayService
}

func NewRazorpayHandler(s *services.RazorpayService) *RazorpayHandler {
	return &RazorpayHandler{Service: s}
}

// Status tells the frontend whether online payment collection is available.
func (h *RazorpayHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": h.Service.IsEnabled(r.Context())})
}

// CreateOrder opens a gateway order for an outstanding balance.
func (h *RazorpayHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CreateOrder(r.Context(), &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrOnlinePaymentsDisabled) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// VerifyPayment confirms a gateway callback and settles the order balance.
func (h *RazorpayHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	txn, err := h.Service.VerifyPayment(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}
