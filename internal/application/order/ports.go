package order

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de órdenes e inventario atados a esa tx. La creación persiste
// cabecera e items juntos; la confirmación y la anulación persisten el cambio
// de estado con todos sus movimientos, o nada.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// ReceiptLine línea del comprobante de venta en PDF.
type ReceiptLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// ReceiptGenerator genera el comprobante de venta de una orden.
type ReceiptGenerator interface {
	Generate(order *repository.OrderView, lines []ReceiptLine) ([]byte, error)
}
