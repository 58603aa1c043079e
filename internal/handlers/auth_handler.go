package handlers

import (
	"encoding/json"
	"net/http"

	"repair-backend/internal/models"
	"repair-backend/internal/services"
)

type AuthHandler struct {
	UserService *services.UserService
	TOTPService *services.TOTPService
}

func NewAuthHandler(userService *services.UserService, totpService *services.TOTPService) *AuthHandler {
	return &AuthHandler{UserService: userService, TOTPService: totpService}
}

// Signup creates the first account; closed once a user exists.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.UserService.Signup(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login verifies credentials. Accounts with 2FA get a temp token and finish
// at /auth/login/2fa.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, step1, err := h.UserService.Login(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if step1 != nil {
		writeJSON(w, http.StatusOK, step1)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Verify2FA completes a 2FA login with the temp token and authenticator code.
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.TOTPService.VerifyLogin(r.Context(), req.TempToken, req.Code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, user)
}
