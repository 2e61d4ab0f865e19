package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// quantity es positivo para IN/OUT; para ADJUSTMENT es el nuevo stock absoluto.
// purchase_cost es obligatorio en IN y no debe enviarse en otros tipos.
type RegisterMovementRequest struct {
	ProductID    string           `json:"product_id"`
	MovementType string           `json:"movement_type"`
	Quantity     int              `json:"quantity"`
	Reason       string           `json:"reason,omitempty"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost,omitempty"`
}

// MovementResponse representación de un movimiento del ledger.
type MovementResponse struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	MovementType string           `json:"movement_type"`
	Quantity     int              `json:"quantity"`
	Reason       string           `json:"reason,omitempty"`
	UserID       string           `json:"user_id"`
	UserName     string           `json:"user_name"`
	NewStock     int              `json:"new_stock"`
	PurchaseCost *decimal.Decimal `json:"purchase_cost,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ToMovementResponse mapea la vista del repositorio a la respuesta de la API.
func ToMovementResponse(v *repository.MovementView) MovementResponse {
	return MovementResponse{
		ID:           v.ID,
		ProductID:    v.ProductID,
		ProductName:  v.ProductName,
		MovementType: v.MovementType,
		Quantity:     v.Quantity,
		Reason:       v.Reason,
		UserID:       v.UserID,
		UserName:     v.UserName,
		NewStock:     v.NewStock,
		PurchaseCost: v.PurchaseCost,
		CreatedAt:    v.CreatedAt,
	}
}
