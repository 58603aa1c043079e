package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"repair-backend/internal/models"
)

func clearAuditLogs(t *testing.T, ctx context.Context, repo *AuditLogRepository) {
	t.Helper()
	if _, err := repo.DB.Exec(ctx, "DELETE FROM audit_logs"); err != nil {
		t.Fatalf("clear audit_logs: %v", err)
	}
}

func TestDeleteOlderThanStrictCutoff(t *testing.T) {
	pool := testPool(t)
	repo := NewAuditLogRepository(pool)
	ctx := context.Background()
	clearAuditLogs(t, ctx, repo)

	cutoff := time.Now().UTC().Truncate(time.Second)
	entries := []struct {
		id string
		ts time.Time
	}{
		{"ret-old", cutoff.Add(-time.Hour)},
		{"ret-edge", cutoff},
		{"ret-new", cutoff.Add(time.Hour)},
	}
	for _, e := range entries {
		err := repo.Insert(ctx, &models.AuditLog{
			ID:        e.id,
			Timestamp: e.ts,
			Action:    models.ActionCreate,
			Entity:    "material",
			EntityID:  e.id,
		})
		if err != nil {
			t.Fatalf("insert %s: %v", e.id, err)
		}
	}

	removed, err := repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1 (only strictly before the cutoff)", removed)
	}

	remaining, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d entries, want 2", len(remaining))
	}
	// Newest first; the entry exactly at the cutoff is retained.
	if remaining[0].ID != "ret-new" || remaining[1].ID != "ret-edge" {
		t.Errorf("remaining ids = %s, %s, want ret-new, ret-edge", remaining[0].ID, remaining[1].ID)
	}
}

func TestTrimToCapDropsOldestFirst(t *testing.T) {
	pool := testPool(t)
	repo := NewAuditLogRepository(pool)
	ctx := context.Background()
	clearAuditLogs(t, ctx, repo)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 15; i++ {
		err := repo.Insert(ctx, &models.AuditLog{
			ID:        fmt.Sprintf("cap-%02d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Action:    models.ActionUpdate,
			Entity:    "customer",
			EntityID:  fmt.Sprintf("%d", i),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	removed, err := repo.TrimToCap(ctx, 10)
	if err != nil {
		t.Fatalf("TrimToCap: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}

	remaining, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if remaining[0].ID != "cap-14" {
		t.Errorf("newest = %s, want cap-14", remaining[0].ID)
	}
	if oldest := remaining[len(remaining)-1].ID; oldest != "cap-05" {
		t.Errorf("oldest remaining = %s, want cap-05 (cap-00..cap-04 dropped)", oldest)
	}
}
