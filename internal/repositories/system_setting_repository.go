package repositories

import (
	"context"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SystemSettingRepository struct {
	DB *pgxpool.Pool
}

func NewSystemSettingRepository(db *pgxpool.Pool) *SystemSettingRepository {
	return &SystemSettingRepository{DB: db}
}

func (r *SystemSettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, setting_key, setting_value, COALESCE(description, ''), updated_at, COALESCE(updated_by_user_id, 0)
         FROM system_settings WHERE setting_key=$1`, key)

	var s models.SystemSetting
	err := row.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.UpdatedAt, &s.UpdatedByUserID)
	return &s, err
}

func (r *SystemSettingRepository) List(ctx context.Context) ([]*models.SystemSetting, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, setting_key, setting_value, COALESCE(description, ''), updated_at, COALESCE(updated_by_user_id, 0)
         FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.SystemSetting
	for rows.Next() {
		var s models.SystemSetting
		err := rows.Scan(&s.ID, &s.SettingKey, &s.SettingValue, &s.Description, &s.UpdatedAt, &s.UpdatedByUserID)
		if err != nil {
			return nil, err
		}
		settings = append(settings, &s)
	}
	return settings, nil
}

func (r *SystemSettingRepository) Set(ctx context.Context, key, value string, updatedBy int) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO system_settings(setting_key, setting_value, updated_by_user_id)
         VALUES($1, $2, $3)
         ON CONFLICT (setting_key)
         DO UPDATE SET setting_value=EXCLUDED.setting_value,
                       updated_by_user_id=EXCLUDED.updated_by_user_id,
                       updated_at=CURRENT_TIMESTAMP`,
		key, value, updatedBy)
	return err
}
