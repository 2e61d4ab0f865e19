package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste: Quantity es el nuevo stock absoluto
)

// ValidMovementType indica si el tipo es uno de los soportados.
func ValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT || t == MovementTypeADJUSTMENT
}

// InventoryMovement es un registro inmutable del ledger de inventario.
// Nunca se modifica ni se borra después de creado; las correcciones se
// modelan como nuevos movimientos compensatorios.
//
// Invariante: NewStock = stock previo del producto + delta implícito del tipo
// (IN suma Quantity, OUT resta Quantity, ADJUSTMENT fija Quantity como valor
// absoluto), y NewStock >= 0 siempre.
type InventoryMovement struct {
	ID           string
	Seq          int64 // secuencia monotónica asignada por el storage; ordena el ledger
	ProductID    string
	MovementType string
	Quantity     int
	Reason       string           // texto libre, máx. 255
	UserID       string           // actor que registró el movimiento
	NewStock     int              // stock resultante inmediatamente después de aplicar el movimiento
	PurchaseCost *decimal.Decimal // solo tiene sentido en IN
	CreatedAt    time.Time
}

// SignedDelta devuelve el delta efectivo que este movimiento aplicó sobre el
// stock previo (NewStock - previo). Útil para auditoría y compensaciones.
func (m *InventoryMovement) SignedDelta(previousStock int) int {
	return m.NewStock - previousStock
}
