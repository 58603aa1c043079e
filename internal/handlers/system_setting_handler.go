package handlers

import (
	"encoding/json"
	"net/http"

	"repair-backend/internal/models"
	"repair-backend/internal/services"

	"github.com/gorilla/mux"
)

type SystemSettingHandler struct {
	Service *services.SystemSettingService
}

func NewSystemSettingHandler(s *services.SystemSettingService) *SystemSettingHandler {
	return &SystemSettingHandler{Service: s}
}

func (h *SystemSettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if settings == nil {
		settings = []*models.SystemSetting{}
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SystemSettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.Service.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *SystemSettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	key := mux.Vars(r)["key"]
	if err := h.Service.Set(r.Context(), key, req.SettingValue, actor.UserID, actor.Name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"setting_key": key, "setting_value": req.SettingValue})
}
