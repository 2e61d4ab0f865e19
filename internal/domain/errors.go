package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrClientNotFound     = errors.New("cliente no encontrado")
	ErrOrderNotFound      = errors.New("orden no encontrada")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrLockTimeout        = errors.New("tiempo de espera del bloqueo agotado")
	ErrProjectionMismatch = errors.New("inconsistencia entre stock materializado y ledger")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrDuplicate          = errors.New("recurso duplicado")
)

// InsufficientStockError indica que una salida supera el stock disponible.
// Lleva producto, disponible y solicitado para que el llamador pueda ajustar.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto '%s': disponible %d, solicitado %d",
		e.ProductName, e.Available, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError indica un intento de transición ilegal en el ciclo
// de vida de una orden. Nunca se corrige silenciosamente al estado válido.
type InvalidTransitionError struct {
	From   string // estado actual de la orden
	Action string // acción intentada: confirmar, cancelar, entregar
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede %s una orden en estado %s", e.Action, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ProjectionMismatchError indica que el contador de stock del producto no
// coincide con el último snapshot del ledger. Falla de integridad: se loggea
// y se expone, nunca se autocorrige.
type ProjectionMismatchError struct {
	ProductID string
	Counter   int // products.current_stock
	Ledger    int // new_stock del último movimiento (0 si no hay movimientos)
}

func (e *ProjectionMismatchError) Error() string {
	return fmt.Sprintf("producto %s: stock materializado %d difiere del ledger %d",
		e.ProductID, e.Counter, e.Ledger)
}

func (e *ProjectionMismatchError) Is(target error) bool { return target == ErrProjectionMismatch }
