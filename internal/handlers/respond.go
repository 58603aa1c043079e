package handlers

import (
	"encoding/json"
	"net/http"

	"repair-backend/internal/middleware"
	"repair-backend/internal/repair"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeConfirmation answers a two-phase operation that needs the user's
// acknowledgment. 409 so the client can tell it apart from success and
// validation failure; re-sending with the confirm flag applies the action.
func writeConfirmation(w http.ResponseWriter, conf *repair.Confirmation) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"confirmation_required": true,
		"confirmation":          conf,
	})
}

// actorFromRequest builds the acting user from the auth context.
func actorFromRequest(r *http.Request) (repair.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return repair.Actor{}, false
	}
	name, _ := middleware.GetNameFromContext(r.Context())
	return repair.Actor{UserID: userID, Name: name}, true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
