package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"repair-backend/internal/models"
	"repair-backend/internal/services"
	"repair-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	Service *services.AuditService
}

func NewAuditLogHandler(s *services.AuditService) *AuditLogHandler {
	return &AuditLogHandler{Service: s}
}

// filterFromQuery maps query parameters onto a log filter.
func filterFromQuery(r *http.Request) *models.AuditLogFilter {
	q := r.URL.Query()
	filter := &models.AuditLogFilter{
		Action:      q.Get("action"),
		Entity:      q.Get("entity"),
		SearchQuery: q.Get("search"),
	}
	if userID, err := strconv.Atoi(q.Get("user_id")); err == nil {
		filter.UserID = userID
	}
	if from := q.Get("date_from"); from != "" {
		if t, err := time.ParseInLocation("2006-01-02", from, timeutil.ICT); err == nil {
			t = timeutil.StartOfDay(t)
			filter.DateFrom = &t
		}
	}
	if to := q.Get("date_to"); to != "" {
		if t, err := time.ParseInLocation("2006-01-02", to, timeutil.ICT); err == nil {
			t = timeutil.EndOfDay(t)
			filter.DateTo = &t
		}
	}
	return filter
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Service.GetLogs(r.Context(), filterFromQuery(r), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditLogHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entries, err := h.Service.GetLogsByEntity(r.Context(), vars["entity"], vars["entity_id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditLogHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(mux.Vars(r)["user_id"])
	entries, err := h.Service.GetUserActivity(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditLogHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.GetRecentActivity(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditLogHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStatistics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ClearOld purges entries beyond the retention window. Admin only.
func (h *AuditLogHandler) ClearOld(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.ClearOldLogs(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// Export downloads the filtered log set as a JSON file.
func (h *AuditLogHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	data, err := h.Service.ExportLogs(r.Context(), filterFromQuery(r), actor.Name, actor.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("audit-logs-%s.json", timeutil.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(data)
}
