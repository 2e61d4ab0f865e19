package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// OrderItemRequest línea solicitada al crear una orden.
type OrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	ClientID       string             `json:"client_id"`
	PaymentMethod  string             `json:"payment_method"` // CASH | CARD | TRANSFER
	PaymentNote    string             `json:"payment_note,omitempty"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Items          []OrderItemRequest `json:"items"`
}

// CancelOrderRequest body para PATCH /api/orders/:id/cancel.
type CancelOrderRequest struct {
	CancelReason string `json:"cancel_reason,omitempty"`
}

// OrderItemResponse línea de una orden.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

// OrderResponse representación completa de una orden de venta.
type OrderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	ClientID        string              `json:"client_id"`
	ClientName      string              `json:"client_name,omitempty"`
	UserID          string              `json:"user_id"`
	UserName        string              `json:"user_name,omitempty"`
	Status          string              `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	PaymentNote     string              `json:"payment_note,omitempty"`
	OrderDate       time.Time           `json:"order_date"`
	DeliveredDate   *time.Time          `json:"delivered_date,omitempty"`
	CancelledDate   *time.Time          `json:"cancelled_date,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CancelledByID   string              `json:"cancelled_by_id,omitempty"`
	CancelledByName string              `json:"cancelled_by_name,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderTransitionResponse respuesta de confirmar/cancelar: la orden más los
// movimientos de inventario generados por la transición.
type OrderTransitionResponse struct {
	Order     OrderResponse             `json:"order"`
	Movements []OrderTransitionMovement `json:"movements"`
}

// OrderTransitionMovement resumen de un movimiento generado por una transición.
type OrderTransitionMovement struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	NewStock     int       `json:"new_stock"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToOrderResponse mapea una orden del dominio a la respuesta de la API.
func ToOrderResponse(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			ItemTotal: item.ItemTotal(),
		})
	}
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ClientID:       o.ClientID,
		UserID:         o.UserID,
		Status:         o.Status,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		PaymentNote:    o.PaymentNote,
		OrderDate:      o.OrderDate,
		DeliveredDate:  o.DeliveredDate,
		CancelledDate:  o.CancelledDate,
		CancelReason:   o.CancelReason,
		CancelledByID:  o.CancelledBy,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToOrderViewResponse mapea la vista enriquecida del repositorio.
func ToOrderViewResponse(v *repository.OrderView) OrderResponse {
	resp := ToOrderResponse(&v.Order)
	resp.ClientName = v.ClientName
	resp.UserName = v.UserName
	resp.CancelledByName = v.CancelledByName
	return resp
}

// ToOrderTransitionResponse arma la respuesta de una transición con sus movimientos.
func ToOrderTransitionResponse(o *entity.Order, movements []*entity.InventoryMovement) OrderTransitionResponse {
	movs := make([]OrderTransitionMovement, 0, len(movements))
	for _, m := range movements {
		movs = append(movs, OrderTransitionMovement{
			ID:           m.ID,
			ProductID:    m.ProductID,
			MovementType: m.MovementType,
			Quantity:     m.Quantity,
			NewStock:     m.NewStock,
			CreatedAt:    m.CreatedAt,
		})
	}
	return OrderTransitionResponse{
		Order:     ToOrderResponse(o),
		Movements: movs,
	}
}
