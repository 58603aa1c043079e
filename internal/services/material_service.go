package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"repair-backend/internal/cache"
	"repair-backend/internal/models"
	"repair-backend/internal/repositories"
)

type MaterialService struct {
	Repo        *repositories.MaterialRepository
	SettingRepo *repositories.SystemSettingRepository
	Audit       *AuditService
}

func NewMaterialService(repo *repositories.MaterialRepository, settingRepo *repositories.SystemSettingRepository, audit *AuditService) *MaterialService {
	return &MaterialService{Repo: repo, SettingRepo: settingRepo, Audit: audit}
}

func newMaterialID() string {
	return fmt.Sprintf("mat-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

func (s *MaterialService) CreateMaterial(ctx context.Context, req *models.CreateMaterialRequest, actorID int, actorName string) (*models.Material, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("material name is required")
	}
	if req.Stock < 0 {
		return nil, errors.New("stock cannot be negative")
	}
	if existing, _ := s.Repo.GetByName(ctx, name); existing != nil {
		return nil, errors.New("material with this name already exists")
	}
	material := &models.Material{
		ID:            newMaterialID(),
		Name:          name,
		SKU:           req.SKU,
		Stock:         req.Stock,
		RetailPrice:   req.RetailPrice,
		PurchasePrice: req.PurchasePrice,
	}
	if err := s.Repo.Create(ctx, material); err != nil {
		return nil, err
	}
	cache.InvalidateMaterialCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionCreate,
		Entity:     "material",
		EntityID:   material.ID,
		EntityName: material.Name,
	})
	return material, nil
}

func (s *MaterialService) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	return s.Repo.Get(ctx, id)
}

// ListMaterials serves from the Redis cache when warm.
func (s *MaterialService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	if data, ok := cache.GetCached(ctx, cache.MaterialsListKey); ok {
		var materials []*models.Material
		if err := json.Unmarshal(data, &materials); err == nil {
			return materials, nil
		}
	}
	materials, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(materials); err == nil {
		cache.SetCached(ctx, cache.MaterialsListKey, data, 5*time.Minute)
	}
	return materials, nil
}

// ListLowStock returns materials at or below the configured threshold.
func (s *MaterialService) ListLowStock(ctx context.Context) ([]*models.Material, error) {
	threshold := 5.0
	if s.SettingRepo != nil {
		if setting, err := s.SettingRepo.Get(ctx, models.SettingLowStockThreshold); err == nil {
			if parsed, err := strconv.ParseFloat(setting.SettingValue, 64); err == nil && parsed >= 0 {
				threshold = parsed
			}
		}
	}
	return s.Repo.ListLowStock(ctx, threshold)
}

func (s *MaterialService) UpdateMaterial(ctx context.Context, id string, req *models.UpdateMaterialRequest, actorID int, actorName string) (*models.Material, error) {
	material, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *material
	material.Name = strings.TrimSpace(req.Name)
	material.SKU = req.SKU
	material.RetailPrice = req.RetailPrice
	material.PurchasePrice = req.PurchasePrice
	if err := s.Repo.Update(ctx, material); err != nil {
		return nil, err
	}
	cache.InvalidateMaterialCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionUpdate,
		Entity:     "material",
		EntityID:   id,
		EntityName: material.Name,
		Changes:    &models.AuditLogChanges{Before: before, After: material},
	})
	return material, nil
}

// AdjustStock applies a signed stock delta (restock or correction) and
// returns the new level.
func (s *MaterialService) AdjustStock(ctx context.Context, id string, req *models.AdjustStockRequest, actorID int, actorName string) (float64, error) {
	if req.Delta == 0 {
		return 0, errors.New("delta cannot be zero")
	}
	material, err := s.Repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	stock, err := s.Repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return 0, err
	}
	cache.InvalidateMaterialCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionUpdate,
		Entity:     "material",
		EntityID:   id,
		EntityName: material.Name,
		Metadata:   map[string]any{"delta": req.Delta, "reason": req.Reason, "stock": stock},
	})
	return stock, nil
}

func (s *MaterialService) DeleteMaterial(ctx context.Context, id string, actorID int, actorName string) error {
	material, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateMaterialCaches(ctx)
	s.Audit.Log(ctx, &models.AuditLog{
		UserID:     actorID,
		UserName:   actorName,
		Action:     models.ActionDelete,
		Entity:     "material",
		EntityID:   id,
		EntityName: material.Name,
	})
	return nil
}
