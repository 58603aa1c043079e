package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"repair-backend/internal/models"
	"repair-backend/internal/repair"
	"repair-backend/internal/services"

	"github.com/gorilla/mux"
)

type RepairOrderHandler struct {
	Service *services.RepairOrderService
}

func NewRepairOrderHandler(s *services.RepairOrderService) *RepairOrderHandler {
	return &RepairOrderHandler{Service: s}
}

func orderStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, repair.ErrTerminal):
		return http.StatusLocked
	case errors.Is(err, services.ErrSaveInFlight):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Save creates or updates a repair order. A terminal transition that would
// deduct stock answers 409 with a confirmation payload first.
func (h *RepairOrderHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRepairOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	order, conf, err := h.Service.Save(r.Context(), &req, actor, clientIP(r), r.UserAgent())
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	if conf != nil {
		writeConfirmation(w, conf)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, order)
}

func (h *RepairOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("phone"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*models.RepairOrder{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *RepairOrderHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	var req models.AddMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	order, conf, err := h.Service.AddMaterial(r.Context(), mux.Vars(r)["id"], &req, actor)
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	if conf != nil {
		writeConfirmation(w, conf)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) RemoveMaterial(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "Invalid line index", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	order, err := h.Service.RemoveMaterial(r.Context(), mux.Vars(r)["id"], index, actor)
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) AddOutsourcing(w http.ResponseWriter, r *http.Request) {
	var req models.AddOutsourcingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	order, conf, err := h.Service.AddOutsourcing(r.Context(), mux.Vars(r)["id"], &req, actor)
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	if conf != nil {
		writeConfirmation(w, conf)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) RemoveOutsourcing(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "Invalid line index", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	order, err := h.Service.RemoveOutsourcing(r.Context(), mux.Vars(r)["id"], index, actor)
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) Shortages(w http.ResponseWriter, r *http.Request) {
	shortages, err := h.Service.Shortages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	if shortages == nil {
		shortages = []repair.ShortageInfo{}
	}
	writeJSON(w, http.StatusOK, shortages)
}

func (h *RepairOrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *RepairOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	order, err := h.Service.Cancel(r.Context(), mux.Vars(r)["id"], actor)
	if err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *RepairOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"], actor); err != nil {
		http.Error(w, err.Error(), orderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
