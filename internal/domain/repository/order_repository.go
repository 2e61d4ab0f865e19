package repository

import "github.com/stockia/stockia-api/internal/domain/entity"

// OrderView es una orden enriquecida con nombres de cliente y usuarios para
// la capa de presentación.
type OrderView struct {
	entity.Order
	ClientName      string
	UserName        string
	CancelledByName string
}

// OrderRepository define el puerto de persistencia para órdenes y sus items.
type OrderRepository interface {
	// Create persiste la orden con todos sus items.
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	GetByOrderNumber(orderNumber string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Order, error)
	// UpdateStatus persiste estado, pago y campos de transición (fechas,
	// motivo y usuario de cancelación). Los items no cambian.
	UpdateStatus(order *entity.Order) error
	ExistsByOrderNumber(orderNumber string) (bool, error)
	List(limit, offset int) ([]*OrderView, error)
	ListByStatus(status string, limit, offset int) ([]*OrderView, error)
	GetView(id string) (*OrderView, error)
}
