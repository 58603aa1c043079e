package repositories

import (
	"context"
	"encoding/json"
	"time"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

func (r *AuditLogRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	var changesJSON, metadataJSON []byte
	var err error
	if entry.Changes != nil {
		changesJSON, err = json.Marshal(entry.Changes)
		if err != nil {
			return err
		}
	}
	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
	}
	_, err = r.DB.Exec(ctx,
		`INSERT INTO audit_logs(id, timestamp, user_id, user_name, action, entity, entity_id,
             entity_name, changes, metadata, ip_address, user_agent)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.ID, entry.Timestamp, entry.UserID, entry.UserName, entry.Action, entry.Entity,
		entry.EntityID, entry.EntityName, changesJSON, metadataJSON, entry.IPAddress, entry.UserAgent)
	return err
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var entry models.AuditLog
	var changesJSON, metadataJSON []byte
	err := row.Scan(&entry.ID, &entry.Timestamp, &entry.UserID, &entry.UserName, &entry.Action,
		&entry.Entity, &entry.EntityID, &entry.EntityName, &changesJSON, &metadataJSON,
		&entry.IPAddress, &entry.UserAgent)
	if err != nil {
		return nil, err
	}
	if len(changesJSON) > 0 {
		if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
			return nil, err
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, err
		}
	}
	return &entry, nil
}

const auditLogColumns = `id, timestamp, user_id, user_name, action, entity, entity_id,
    COALESCE(entity_name, ''), changes, metadata, COALESCE(ip_address, ''), COALESCE(user_agent, '')`

// List returns entries newest-first, capped at limit (0 means no cap).
func (r *AuditLogRepository) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	query := `SELECT ` + auditLogColumns + ` FROM audit_logs ORDER BY timestamp DESC`
	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = r.DB.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.DB.Query(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *AuditLogRepository) ListByEntity(ctx context.Context, entity, entityID string) ([]*models.AuditLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+auditLogColumns+` FROM audit_logs
         WHERE entity=$1 AND entity_id=$2 ORDER BY timestamp DESC`, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *AuditLogRepository) ListByUser(ctx context.Context, userID, limit int) ([]*models.AuditLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+auditLogColumns+` FROM audit_logs
         WHERE user_id=$1 ORDER BY timestamp DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *AuditLogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count)
	return count, err
}

// DeleteOlderThan removes entries with timestamp before the cutoff and
// returns how many were removed.
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM audit_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// TrimToCap drops oldest entries until at most cap remain.
func (r *AuditLogRepository) TrimToCap(ctx context.Context, cap int) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM audit_logs WHERE id IN (
             SELECT id FROM audit_logs ORDER BY timestamp DESC OFFSET $1
         )`, cap)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
