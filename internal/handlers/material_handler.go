package handlers

import (
	"encoding/json"
	"net/http"

	"repair-backend/internal/models"
	"repair-backend/internal/services"

	"github.com/gorilla/mux"
)

type MaterialHandler struct {
	Service *services.MaterialService
}

func NewMaterialHandler(s *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{Service: s}
}

func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	material, err := h.Service.CreateMaterial(r.Context(), &req, actor.UserID, actor.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	material, err := h.Service.GetMaterial(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	materials, err := h.Service.ListMaterials(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if materials == nil {
		materials = []*models.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *MaterialHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := h.Service.ListLowStock(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if materials == nil {
		materials = []*models.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	material, err := h.Service.UpdateMaterial(r.Context(), mux.Vars(r)["id"], &req, actor.UserID, actor.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (h *MaterialHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	stock, err := h.Service.AdjustStock(r.Context(), mux.Vars(r)["id"], &req, actor.UserID, actor.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"stock": stock})
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.Service.DeleteMaterial(r.Context(), mux.Vars(r)["id"], actor.UserID, actor.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
