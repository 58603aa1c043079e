package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
	"repair-backend/internal/services"
	"repair-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type CashTransactionHandler struct {
	Repo  *repositories.CashTransactionRepository
	Audit *services.AuditService
}

func NewCashTransactionHandler(repo *repositories.CashTransactionRepository, audit *services.AuditService) *CashTransactionHandler {
	return &CashTransactionHandler{Repo: repo, Audit: audit}
}

// Create posts a manual ledger row (an expense, or income outside repairs).
func (h *CashTransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCashTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type != models.TxnTypeIncome && req.Type != models.TxnTypeExpense {
		http.Error(w, "type must be income or expense", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be greater than zero", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	category := req.Category
	if category == "" {
		category = "manual"
	}
	txn := &models.CashTransaction{
		Type:             req.Type,
		Category:         category,
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		Description:      req.Description,
		RecordedByUserID: actor.UserID,
		TransactionDate:  timeutil.Now(),
	}
	if err := h.Repo.Create(r.Context(), txn); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.Audit.Log(r.Context(), &models.AuditLog{
		UserID:   actor.UserID,
		UserName: actor.Name,
		Action:   models.ActionCreate,
		Entity:   "cash_transaction",
		EntityID: strconv.Itoa(txn.ID),
		Metadata: map[string]any{"type": txn.Type, "amount": txn.Amount},
	})
	writeJSON(w, http.StatusCreated, txn)
}

// List returns ledger rows for a date range; defaults to the current day.
func (h *CashTransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := timeutil.StartOfDay(timeutil.Now())
	to := from.AddDate(0, 0, 1)
	if v := q.Get("from"); v != "" {
		if t, err := time.ParseInLocation(timeutil.DateLayout, v, timeutil.ICT); err == nil {
			from = timeutil.StartOfDay(t)
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.ParseInLocation(timeutil.DateLayout, v, timeutil.ICT); err == nil {
			to = timeutil.StartOfDay(t).AddDate(0, 0, 1)
		}
	}

	txns, err := h.Repo.ListBetween(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if txns == nil {
		txns = []*models.CashTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// ListByOrder returns every payment posted against a repair order.
func (h *CashTransactionHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Repo.ListByOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if txns == nil {
		txns = []*models.CashTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}
