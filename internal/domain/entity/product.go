package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// CurrentStock es derivado: solo cambia a través de movimientos de inventario,
// nunca por escritura directa.
type Product struct {
	ID           string
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta
	CurrentStock int
	MinStock     int  // umbral de alerta de stock bajo
	IsAvailable  bool // producto disponible para venta
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
