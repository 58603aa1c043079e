package models

import "time"

type Material struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Stock         float64   `json:"stock"`
	RetailPrice   float64   `json:"retail_price"`
	PurchasePrice float64   `json:"purchase_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateMaterialRequest represents the request body for adding a catalog material
type CreateMaterialRequest struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	Stock         float64 `json:"stock"`
	RetailPrice   float64 `json:"retail_price"`
	PurchasePrice float64 `json:"purchase_price"`
}

// UpdateMaterialRequest represents the request body for updating a catalog material
type UpdateMaterialRequest struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	RetailPrice   float64 `json:"retail_price"`
	PurchasePrice float64 `json:"purchase_price"`
}

// AdjustStockRequest changes stock by a signed delta (restock or correction)
type AdjustStockRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}
