package handlers

import (
	"fmt"
	"net/http"
	"time"

	"repair-backend/internal/services"
	"repair-backend/internal/timeutil"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// period parses ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the current month.
func period(r *http.Request) (time.Time, time.Time) {
	now := timeutil.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, timeutil.ICT)
	to := from.AddDate(0, 1, 0)

	q := r.URL.Query()
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
	return from, to
}

// Revenue returns the aggregated period report as JSON.
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	from, to := period(r)
	data, err := h.Service.BuildRevenueReport(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// RevenuePDF streams the period report as a landscape PDF.
func (h *ReportHandler) RevenuePDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	from, to := period(r)
	data, err := h.Service.BuildRevenueReport(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pdf, err := h.Service.GenerateRevenuePDF(r.Context(), data, actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bao-cao-%s.pdf", from.Format("200601")))
	w.Write(pdf)
}

// RevenueCSV streams the period's order table as CSV.
func (h *ReportHandler) RevenueCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	from, to := period(r)
	data, err := h.Service.BuildRevenueReport(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	csvData, err := h.Service.GenerateRevenueCSV(r.Context(), data, actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bao-cao-%s.csv", from.Format("200601")))
	w.Write(csvData)
}

// DayBookCSV streams the cash ledger of the period as CSV.
func (h *ReportHandler) DayBookCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	from, to := period(r)
	csvData, err := h.Service.GenerateDayBookCSV(r.Context(), from, to, actor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=so-quy-%s.csv", from.Format("200601")))
	w.Write(csvData)
}
