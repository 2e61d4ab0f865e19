package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
	"github.com/stockia/stockia-api/pkg/logger"
)

// MovementService es el motor del ledger de inventario: registra movimientos
// (IN, OUT, ADJUSTMENT) de forma transaccional, serializado por producto, y
// mantiene el contador de stock del producto en la misma transacción que el
// append. El historial es append-only.
type MovementService struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	movementRepo repository.InventoryMovementRepository
	locks        *ProductLocks
	log          *logger.Logger
}

// NewMovementService construye el servicio de movimientos.
func NewMovementService(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	movementRepo repository.InventoryMovementRepository,
	locks *ProductLocks,
	log *logger.Logger,
) *MovementService {
	return &MovementService{
		txRunner:     txRunner,
		productRepo:  productRepo,
		userRepo:     userRepo,
		movementRepo: movementRepo,
		locks:        locks,
		log:          log,
	}
}

// MovementInput entrada para registrar un movimiento manual.
// Quantity es positivo para IN/OUT; para ADJUSTMENT es el nuevo stock absoluto.
// PurchaseCost es obligatorio en IN y no debe enviarse en otros tipos.
type MovementInput struct {
	ProductID    string
	MovementType string
	Quantity     int
	Reason       string
	PurchaseCost *decimal.Decimal
	UserID       string
}

// ValidateMovementInput valida el borrador antes de cualquier mutación.
// Función pura: no toca repositorios ni estado.
func ValidateMovementInput(in MovementInput) error {
	if in.ProductID == "" || in.UserID == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidMovementType(in.MovementType) {
		return domain.ErrInvalidInput
	}
	if len(in.Reason) > 255 {
		return domain.ErrInvalidInput
	}
	switch in.MovementType {
	case entity.MovementTypeIN:
		if in.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if in.PurchaseCost == nil || !in.PurchaseCost.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeOUT:
		if in.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if in.PurchaseCost != nil {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeADJUSTMENT:
		// Quantity es el nuevo valor absoluto de stock; cero es válido.
		if in.Quantity < 0 {
			return domain.ErrInvalidQuantity
		}
		if in.PurchaseCost != nil {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// RegisterMovement registra un movimiento manual: valida el borrador, toma la
// sección crítica del producto y dentro de una transacción bloquea la fila
// del producto, calcula el stock resultante, actualiza el contador y persiste
// el movimiento. Todo o nada.
func (s *MovementService) RegisterMovement(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	if err := ValidateMovementInput(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	var mov *entity.InventoryMovement
	err = s.locks.WithProductLock(ctx, in.ProductID, func() error {
		return s.txRunner.Run(ctx, func(
			movRepo repository.InventoryMovementRepository,
			productRepo repository.ProductRepository,
		) error {
			product, err := productRepo.GetForUpdate(in.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}

			newStock, err := resolveNewStock(product, in.MovementType, in.Quantity)
			if err != nil {
				return err
			}

			if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
				return err
			}
			m := &entity.InventoryMovement{
				ID:           uuid.New().String(),
				ProductID:    product.ID,
				MovementType: in.MovementType,
				Quantity:     in.Quantity,
				Reason:       in.Reason,
				UserID:       in.UserID,
				NewStock:     newStock,
				PurchaseCost: in.PurchaseCost,
				CreatedAt:    time.Now(),
			}
			if err := movRepo.Create(m); err != nil {
				return err
			}
			mov = m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("product_id", mov.ProductID).
		Str("type", mov.MovementType).
		Int("quantity", mov.Quantity).
		Int("new_stock", mov.NewStock).
		Msg("movimiento de inventario registrado")
	return mov, nil
}

// resolveNewStock calcula el stock resultante de aplicar el movimiento sobre
// el producto. IN suma, OUT resta, ADJUSTMENT fija el valor absoluto. El
// resultado nunca puede ser negativo.
func resolveNewStock(product *entity.Product, movementType string, quantity int) (int, error) {
	switch movementType {
	case entity.MovementTypeIN:
		return product.CurrentStock + quantity, nil
	case entity.MovementTypeOUT:
		if quantity > product.CurrentStock {
			return 0, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.CurrentStock,
				Requested:   quantity,
			}
		}
		return product.CurrentStock - quantity, nil
	case entity.MovementTypeADJUSTMENT:
		if quantity < 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return quantity, nil
	}
	return 0, domain.ErrInvalidInput
}

// AppendOUTInTx registra una salida usando repositorios atados a la
// transacción del caller (integración órdenes-inventario). El caller es
// responsable de la sección crítica del producto; product debe venir de
// GetForUpdate dentro de la misma tx. Actualiza product.CurrentStock en
// memoria para que appends posteriores del mismo caller vean el valor nuevo.
func (s *MovementService) AppendOUTInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	quantity int,
	userID, reason string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity > product.CurrentStock {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.CurrentStock,
			Requested:   quantity,
		}
	}
	newStock := product.CurrentStock - quantity
	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, err
	}
	m := &entity.InventoryMovement{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		MovementType: entity.MovementTypeOUT,
		Quantity:     quantity,
		Reason:       reason,
		UserID:       userID,
		NewStock:     newStock,
		CreatedAt:    now,
	}
	if err := movRepo.Create(m); err != nil {
		return nil, err
	}
	product.CurrentStock = newStock
	return m, nil
}

// AppendINInTx registra una entrada compensatoria usando repositorios atados
// a la transacción del caller (restauración de stock al anular una orden).
// Mismas responsabilidades del caller que en AppendOUTInTx.
func (s *MovementService) AppendINInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	quantity int,
	userID, reason string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	newStock := product.CurrentStock + quantity
	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, err
	}
	m := &entity.InventoryMovement{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		MovementType: entity.MovementTypeIN,
		Quantity:     quantity,
		Reason:       reason,
		UserID:       userID,
		NewStock:     newStock,
		CreatedAt:    now,
	}
	if err := movRepo.Create(m); err != nil {
		return nil, err
	}
	product.CurrentStock = newStock
	return m, nil
}

// SearchMovements devuelve el historial filtrado por producto, tipo y/o
// usuario, más recientes primero.
func (s *MovementService) SearchMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*repository.MovementView, error) {
	if filter.MovementType != "" && !entity.ValidMovementType(filter.MovementType) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.movementRepo.Search(filter, limit, offset)
}

// GetMovementByID devuelve un movimiento por su ID.
func (s *MovementService) GetMovementByID(ctx context.Context, id string) (*repository.MovementView, error) {
	mov, err := s.movementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}
