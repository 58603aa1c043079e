package handlers

import (
	"encoding/json"
	"net/http"

	"repair-backend/internal/models"
	"repair-backend/internal/services"
)

type TOTPHandler struct {
	Service     *services.TOTPService
	UserService *services.UserService
}

func NewTOTPHandler(s *services.TOTPService, userService *services.UserService) *TOTPHandler {
	return &TOTPHandler{Service: s, UserService: userService}
}

// Setup starts 2FA enrollment for the authenticated user.
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	user, err := h.UserService.GetUser(r.Context(), actor.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	resp, err := h.Service.GenerateSetup(r.Context(), user)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Enable verifies the first authenticator code and switches 2FA on.
func (h *TOTPHandler) Enable(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.Service.VerifyAndEnable(r.Context(), actor.UserID, req.Code); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

// Disable turns 2FA off after password and code re-verification.
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.Service.Disable(r.Context(), actor.UserID, req.Password, req.Code); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": false})
}

// Status reports whether 2FA is on for the authenticated user.
func (h *TOTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	status, err := h.Service.Status(r.Context(), actor.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
