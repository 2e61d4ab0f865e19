package repository

import "github.com/stockia/stockia-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para productos.
// UpdateStock es la única escritura del contador de stock y solo debe
// invocarse dentro de la transacción que registra el movimiento asociado.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(id string, newStock int) error
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
}
