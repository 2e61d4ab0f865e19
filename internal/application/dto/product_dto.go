package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
// El stock inicial no se fija aquí: el stock solo entra por movimientos.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    int             `json:"min_stock"`
	IsAvailable *bool           `json:"is_available,omitempty"` // default true
}

// UpdateProductRequest body para PUT /api/products/:id.
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    int             `json:"min_stock"`
	IsAvailable *bool           `json:"is_available,omitempty"`
}

// ProductResponse representación pública de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	IsAvailable  bool            `json:"is_available"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse mapea un producto del dominio a la respuesta de la API.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		IsAvailable:  p.IsAvailable,
		LowStock:     p.CurrentStock <= p.MinStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
