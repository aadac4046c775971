package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
}

// ProductResponse representación de un producto del catálogo.
type ProductResponse struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToProductResponse mapea la entidad al DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ProductID: p.ProductID,
		Name:      p.Name,
		SKU:       p.SKU,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}
