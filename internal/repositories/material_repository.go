package repositories

import (
	"context"
	"errors"
	"fmt"

	"repair-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type MaterialRepository struct {
	DB *pgxpool.Pool
}

func NewMaterialRepository(db *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO materials(id, name, sku, stock, retail_price, purchase_price)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING created_at, updated_at`,
		m.ID, m.Name, m.SKU, m.Stock, m.RetailPrice, m.PurchasePrice,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MaterialRepository) Get(ctx context.Context, id string) (*models.Material, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(sku, ''), stock, retail_price, purchase_price, created_at, updated_at
         FROM materials WHERE id=$1`, id)

	var m models.Material
	err := row.Scan(&m.ID, &m.Name, &m.SKU, &m.Stock, &m.RetailPrice, &m.PurchasePrice, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// GetByName matches case-insensitively; catalog names are unique under LOWER().
func (r *MaterialRepository) GetByName(ctx context.Context, name string) (*models.Material, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(sku, ''), stock, retail_price, purchase_price, created_at, updated_at
         FROM materials WHERE LOWER(name)=LOWER($1)`, name)

	var m models.Material
	err := row.Scan(&m.ID, &m.Name, &m.SKU, &m.Stock, &m.RetailPrice, &m.PurchasePrice, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) List(ctx context.Context) ([]*models.Material, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(sku, ''), stock, retail_price, purchase_price, created_at, updated_at
         FROM materials ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		var m models.Material
		err := rows.Scan(&m.ID, &m.Name, &m.SKU, &m.Stock, &m.RetailPrice, &m.PurchasePrice, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		materials = append(materials, &m)
	}
	return materials, nil
}

// ListLowStock returns materials at or below the threshold.
func (r *MaterialRepository) ListLowStock(ctx context.Context, threshold float64) ([]*models.Material, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(sku, ''), stock, retail_price, purchase_price, created_at, updated_at
         FROM materials WHERE stock <= $1 ORDER BY stock, name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []*models.Material
	for rows.Next() {
		var m models.Material
		err := rows.Scan(&m.ID, &m.Name, &m.SKU, &m.Stock, &m.RetailPrice, &m.PurchasePrice, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		materials = append(materials, &m)
	}
	return materials, nil
}

func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE materials SET name=$1, sku=$2, retail_price=$3, purchase_price=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		m.Name, m.SKU, m.RetailPrice, m.PurchasePrice, m.ID)
	return err
}

// AdjustStock changes stock by a signed delta. The guard prevents a
// correction from driving stock negative.
func (r *MaterialRepository) AdjustStock(ctx context.Context, id string, delta float64) (float64, error) {
	var stock float64
	err := r.DB.QueryRow(ctx,
		`UPDATE materials SET stock = stock + $1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND stock + $1 >= 0
         RETURNING stock`, delta, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("material %s: %w", id, ErrInsufficientStock)
	}
	return stock, err
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	return err
}
