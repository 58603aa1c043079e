package services

import (
	"context"
	"errors"

	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
)

type SystemSettingService struct {
	Repo  *repositories.SystemSettingRepository
	Audit *AuditService
}

func NewSystemSettingService(repo *repositories.SystemSettingRepository, audit *AuditService) *SystemSettingService {
	return &SystemSettingService{Repo: repo, Audit: audit}
}

func (s *SystemSettingService) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	return s.Repo.Get(ctx, key)
}

func (s *SystemSettingService) List(ctx context.Context) ([]*models.SystemSetting, error) {
	return s.Repo.List(ctx)
}

func (s *SystemSettingService) Set(ctx context.Context, key, value string, actorID int, actorName string) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	if err := s.Repo.Set(ctx, key, value, actorID); err != nil {
		return err
	}
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionUpdate,
		Entity:     "system_setting",
		EntityID:   key,
		EntityName: key,
		Metadata:   map[string]any{"value": value},
	})
	return nil
}
