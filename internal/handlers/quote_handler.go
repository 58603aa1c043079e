package handlers

import (
	"fmt"
	"net/http"

	"repair-backend/internal/services"

	"github.com/gorilla/mux"
)

type QuoteHandler struct {
	Service *services.QuoteService
}

func NewQuoteHandler(s *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{Service: s}
}

// Download renders and streams the quote PDF for an order.
func (h *QuoteHandler) Download(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	data, err := h.Service.GenerateQuotePDF(r.Context(), orderID, actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bao-gia-%s.pdf", orderID))
	w.Write(data)
}
