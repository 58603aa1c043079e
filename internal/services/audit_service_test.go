package services

import (
	"testing"
	"time"

	"repair-backend/internal/models"
)

func auditFixture() []*models.AuditLog {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return []*models.AuditLog{
		{
			ID:         "audit-1",
			Timestamp:  base,
			UserID:     1,
			UserName:   "Admin",
			Action:     models.ActionCreate,
			Entity:     "material",
			EntityID:   "mat-1",
			EntityName: "Pin A",
		},
		{
			ID:         "audit-2",
			Timestamp:  base.Add(time.Hour),
			UserID:     2,
			UserName:   "Thợ Tuấn",
			Action:     models.ActionUpdate,
			Entity:     "material",
			EntityID:   "mat-2",
			EntityName: "Pin B",
		},
		{
			ID:         "audit-3",
			Timestamp:  base.Add(2 * time.Hour),
			UserID:     1,
			UserName:   "Admin",
			Action:     models.ActionDelete,
			Entity:     "material",
			EntityID:   "mat-3",
			EntityName: "Cáp C",
		},
	}
}

func TestFilterLogsNilFilterKeepsAll(t *testing.T) {
	entries := auditFixture()
	got := FilterLogs(entries, nil)
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
}

func TestFilterLogsActionAndSearch(t *testing.T) {
	entries := auditFixture()

	got := FilterLogs(entries, &models.AuditLogFilter{
		Action:      models.ActionUpdate,
		SearchQuery: "pin",
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].EntityName != "Pin B" {
		t.Errorf("expected Pin B, got %s", got[0].EntityName)
	}
}

func TestFilterLogsTable(t *testing.T) {
	entries := auditFixture()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)

	tests := []struct {
		name    string
		filter  *models.AuditLogFilter
		wantIDs []string
	}{
		{
			name:    "by user",
			filter:  &models.AuditLogFilter{UserID: 1},
			wantIDs: []string{"audit-1", "audit-3"},
		},
		{
			name:    "by entity",
			filter:  &models.AuditLogFilter{Entity: "material"},
			wantIDs: []string{"audit-1", "audit-2", "audit-3"},
		},
		{
			name:    "date window",
			filter:  &models.AuditLogFilter{DateFrom: &from, DateTo: &to},
			wantIDs: []string{"audit-2"},
		},
		{
			name:    "search matches diacritics",
			filter:  &models.AuditLogFilter{SearchQuery: "cáp"},
			wantIDs: []string{"audit-3"},
		},
		{
			name:    "search across user name",
			filter:  &models.AuditLogFilter{SearchQuery: "tuấn"},
			wantIDs: []string{"audit-2"},
		},
		{
			name:    "no match",
			filter:  &models.AuditLogFilter{Action: models.ActionUpdate, UserID: 1},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterLogs(entries, tt.filter)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d entries, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("entry %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	stats := Statistics(auditFixture())

	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByAction[models.ActionCreate] != 1 || stats.ByAction[models.ActionUpdate] != 1 || stats.ByAction[models.ActionDelete] != 1 {
		t.Errorf("unexpected action counts: %v", stats.ByAction)
	}
	if stats.ByEntity["material"] != 3 {
		t.Errorf("expected 3 material entries, got %d", stats.ByEntity["material"])
	}
	if stats.ByUser["Admin"] != 2 {
		t.Errorf("expected Admin count 2, got %d", stats.ByUser["Admin"])
	}
	if len(stats.MostRecent) != 3 {
		t.Fatalf("expected 3 recent entries, got %d", len(stats.MostRecent))
	}
	if stats.MostRecent[0].ID != "audit-3" {
		t.Errorf("expected newest first, got %s", stats.MostRecent[0].ID)
	}
}

func TestStatisticsCapsMostRecent(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entries := make([]*models.AuditLog, 0, 15)
	for i := 0; i < 15; i++ {
		entries = append(entries, &models.AuditLog{
			ID:        "audit-n",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			UserID:    1,
			Action:    models.ActionCreate,
			Entity:    "customer",
		})
	}

	stats := Statistics(entries)
	if len(stats.MostRecent) != 10 {
		t.Fatalf("expected 10 recent entries, got %d", len(stats.MostRecent))
	}
	want := base.Add(14 * time.Minute)
	if !stats.MostRecent[0].Timestamp.Equal(want) {
		t.Errorf("expected newest %v first, got %v", want, stats.MostRecent[0].Timestamp)
	}
}
