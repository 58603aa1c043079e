package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"repair-backend/internal/metrics"
	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
	"repair-backend/internal/timeutil"
)

// MaxAuditLogs caps the stored log set; oldest entries are dropped first.
const MaxAuditLogs = 10000

// DefaultRetentionDays is used when the retention setting is missing or bad.
const DefaultRetentionDays = 90

type AuditService struct {
	Repo        *repositories.AuditLogRepository
	SettingRepo *repositories.SystemSettingRepository
}

func NewAuditService(repo *repositories.AuditLogRepository, settingRepo *repositories.SystemSettingRepository) *AuditService {
	return &AuditService{Repo: repo, SettingRepo: settingRepo}
}

// Log stamps and appends an entry, then trims the store back under the cap.
// Audit writes never fail the business operation that produced them; failures
// are logged and swallowed.
func (s *AuditService) Log(ctx context.Context, entry *models.AuditLog) {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("audit-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = timeutil.Now()
	}
	if err := s.Repo.Insert(ctx, entry); err != nil {
		log.Printf("[Audit] Failed to write log entry: %v", err)
		return
	}
	metrics.AuditLogsWritten.WithLabelValues(entry.Action).Inc()

	count, err := s.Repo.Count(ctx)
	if err == nil && count > MaxAuditLogs {
		if dropped, err := s.Repo.TrimToCap(ctx, MaxAuditLogs); err != nil {
			log.Printf("[Audit] Failed to trim log store: %v", err)
		} else if dropped > 0 {
			log.Printf("[Audit] Dropped %d oldest entries (cap %d)", dropped, MaxAuditLogs)
		}
	}
}

// GetLogs returns filtered entries newest-first, capped at limit (default 100).
func (s *AuditService) GetLogs(ctx context.Context, filter *models.AuditLogFilter, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.Repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	entries = FilterLogs(entries, filter)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *AuditService) GetLogsByEntity(ctx context.Context, entity, entityID string) ([]*models.AuditLog, error) {
	return s.Repo.ListByEntity(ctx, entity, entityID)
}

// GetUserActivity returns a user's latest 50 actions.
func (s *AuditService) GetUserActivity(ctx context.Context, userID int) ([]*models.AuditLog, error) {
	return s.Repo.ListByUser(ctx, userID, 50)
}

// GetRecentActivity returns the latest 20 entries across all users.
func (s *AuditService) GetRecentActivity(ctx context.Context) ([]*models.AuditLog, error) {
	return s.Repo.List(ctx, 20)
}

// ClearOldLogs purges entries older than the configured retention window and
// returns how many were removed.
func (s *AuditService) ClearOldLogs(ctx context.Context) (int, error) {
	days := DefaultRetentionDays
	if s.SettingRepo != nil {
		if setting, err := s.SettingRepo.Get(ctx, models.SettingAuditRetentionDays); err == nil {
			var parsed int
			if _, err := fmt.Sscanf(setting.SettingValue, "%d", &parsed); err == nil && parsed > 0 {
				days = parsed
			}
		}
	}
	cutoff := timeutil.Now().AddDate(0, 0, -days)
	return s.Repo.DeleteOlderThan(ctx, cutoff)
}

func (s *AuditService) GetStatistics(ctx context.Context) (*models.AuditLogStatistics, error) {
	entries, err := s.Repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	return Statistics(entries), nil
}

// ExportLogs serializes the filtered set as indented JSON for download.
func (s *AuditService) ExportLogs(ctx context.Context, filter *models.AuditLogFilter, actor string, actorID int) ([]byte, error) {
	entries, err := s.Repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	entries = FilterLogs(entries, filter)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	s.Log(ctx, &models.AuditLog{
		UserID:   actorID,
		UserName: actor,
		Action:   models.ActionExport,
		Entity:   "audit_log",
		Metadata: map[string]any{"count": len(entries)},
	})
	return data, nil
}

// FilterLogs applies the filter predicates (AND) over the entries, keeping
// the input order. A nil filter keeps everything.
func FilterLogs(entries []*models.AuditLog, filter *models.AuditLogFilter) []*models.AuditLog {
	if filter == nil {
		return entries
	}
	out := make([]*models.AuditLog, 0, len(entries))
	for _, e := range entries {
		if matchesFilter(e, filter) {
			out = append(out, e)
		}
	}
	return out
}

func matchesFilter(e *models.AuditLog, f *models.AuditLogFilter) bool {
	if f.UserID != 0 && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Entity != "" && e.Entity != f.Entity {
		return false
	}
	if f.DateFrom != nil && e.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.Timestamp.After(*f.DateTo) {
		return false
	}
	if f.SearchQuery != "" {
		q := strings.ToLower(strings.TrimSpace(f.SearchQuery))
		if !strings.Contains(strings.ToLower(e.EntityName), q) &&
			!strings.Contains(strings.ToLower(e.Action), q) &&
			!strings.Contains(strings.ToLower(e.Entity), q) &&
			!strings.Contains(strings.ToLower(e.UserName), q) {
			return false
		}
	}
	return true
}

// Statistics aggregates the entries by action, entity and user, and keeps
// the ten most recent.
func Statistics(entries []*models.AuditLog) *models.AuditLogStatistics {
	stats := &models.AuditLogStatistics{
		Total:    len(entries),
		ByAction: make(map[string]int),
		ByEntity: make(map[string]int),
		ByUser:   make(map[string]int),
	}
	for _, e := range entries {
		stats.ByAction[e.Action]++
		stats.ByEntity[e.Entity]++
		if e.UserName != "" {
			stats.ByUser[e.UserName]++
		}
	}

	recent := append([]*models.AuditLog(nil), entries...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	stats.MostRecent = recent
	return stats
}
