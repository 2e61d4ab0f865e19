package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain"
)

// Estados de una orden de venta. PENDING es el inicial; DELIVERED y
// CANCELLED son terminales. Las únicas transiciones legales son las que
// exponen los métodos MarkAs* de Order.
const (
	OrderStatusPending   = "PENDING"   // creada, stock verificado pero no descontado
	OrderStatusConfirmed = "CONFIRMED" // stock descontado, venta definitiva
	OrderStatusDelivered = "DELIVERED" // entregada al cliente (terminal)
	OrderStatusCancelled = "CANCELLED" // anulada (terminal)
)

// ValidOrderStatus indica si el estado es uno de los soportados.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Estados de pago de una orden.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// Métodos de pago soportados.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

// ValidPaymentMethod indica si el método de pago es uno de los soportados.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCash || m == PaymentMethodCard || m == PaymentMethodTransfer
}

// OrderItem es una línea de la orden: producto, cantidad y precio unitario
// acordado al momento de la venta.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ItemTotal devuelve Quantity * UnitPrice.
func (i *OrderItem) ItemTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order representa una orden de venta. El estado solo muta a través de los
// métodos MarkAs*, que rechazan transiciones ilegales con
// InvalidTransitionError; sus efectos sobre stock los orquesta el caso de uso
// dentro de la misma transacción.
type Order struct {
	ID             string
	OrderNumber    string // formato ORD-YYYYMMDD-XXXX
	ClientID       string
	UserID         string // usuario que registró la orden
	Status         string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentMethod  string
	PaymentStatus  string
	PaymentNote    string // máx. 500
	OrderDate      time.Time
	DeliveredDate  *time.Time
	CancelledDate  *time.Time
	CancelReason   string // máx. 500
	CancelledBy    string // usuario que ejecutó la cancelación
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CalculateTotals recalcula Subtotal y TotalAmount a partir de los items.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].ItemTotal())
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Sub(o.DiscountAmount)
}

// CanBeConfirmed: solo órdenes PENDING se pueden confirmar.
func (o *Order) CanBeConfirmed() bool { return o.Status == OrderStatusPending }

// CanBeCancelled: solo órdenes PENDING o CONFIRMED se pueden cancelar.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// CanBeDelivered: solo órdenes CONFIRMED se pueden marcar como entregadas.
func (o *Order) CanBeDelivered() bool { return o.Status == OrderStatusConfirmed }

// MarkAsConfirmed pasa la orden a CONFIRMED y el pago a PAID.
// Falla con InvalidTransitionError si la orden no está PENDING.
func (o *Order) MarkAsConfirmed(now time.Time) error {
	if !o.CanBeConfirmed() {
		return &domain.InvalidTransitionError{From: o.Status, Action: "confirmar"}
	}
	o.Status = OrderStatusConfirmed
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = now
	return nil
}

// MarkAsDelivered pasa la orden a DELIVERED y fija la fecha de entrega.
func (o *Order) MarkAsDelivered(now time.Time) error {
	if !o.CanBeDelivered() {
		return &domain.InvalidTransitionError{From: o.Status, Action: "entregar"}
	}
	o.Status = OrderStatusDelivered
	o.DeliveredDate = &now
	o.UpdatedAt = now
	return nil
}

// MarkAsCancelled pasa la orden a CANCELLED registrando motivo, usuario y
// fecha. Si el pago estaba completado queda REFUNDED.
func (o *Order) MarkAsCancelled(reason, cancelledBy string, now time.Time) error {
	if !o.CanBeCancelled() {
		return &domain.InvalidTransitionError{From: o.Status, Action: "cancelar"}
	}
	o.Status = OrderStatusCancelled
	o.CancelledDate = &now
	o.CancelReason = reason
	o.CancelledBy = cancelledBy
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.UpdatedAt = now
	return nil
}
