package repository

import "github.com/stockia/stockia-api/internal/domain/entity"

// MovementFilter filtra la búsqueda de movimientos; todos los campos son
// opcionales y se combinan con AND.
type MovementFilter struct {
	ProductID    string
	MovementType string
	UserID       string
}

// MovementView es un movimiento enriquecido con los nombres de producto y
// usuario para la capa de presentación.
type MovementView struct {
	entity.InventoryMovement
	ProductName string
	UserName    string
}

// InventoryMovementRepository define el puerto de persistencia del ledger.
// El ledger es append-only: no hay Update ni Delete.
type InventoryMovementRepository interface {
	// Create persiste un movimiento y asigna ID y Seq.
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*MovementView, error)
	// Search devuelve movimientos que cumplen el filtro, más recientes primero.
	Search(filter MovementFilter, limit, offset int) ([]*MovementView, error)
	// LastSnapshot devuelve el new_stock del último movimiento del producto.
	// ok=false si el producto no tiene movimientos.
	LastSnapshot(productID string) (newStock int, ok bool, err error)
}
