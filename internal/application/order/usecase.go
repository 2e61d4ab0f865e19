package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockia/stockia-api/internal/application/inventory"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
	"github.com/stockia/stockia-api/pkg/logger"
)

// UseCase gobierna el ciclo de vida de las órdenes de venta:
// PENDING -> CONFIRMED -> DELIVERED, con cancelación desde PENDING o
// CONFIRMED. La creación solo verifica stock (reserva blanda); el descuento
// real ocurre al confirmar, dentro de una única transacción junto con los
// movimientos OUT del ledger; la anulación de una orden confirmada restaura
// exactamente lo descontado con movimientos IN compensatorios.
type UseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	movements   *inventory.MovementService
	locks       *inventory.ProductLocks
	receipts    ReceiptGenerator
	log         *logger.Logger
}

// NewUseCase construye el caso de uso de órdenes.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	movements *inventory.MovementService,
	locks *inventory.ProductLocks,
	receipts ReceiptGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		movements:   movements,
		locks:       locks,
		receipts:    receipts,
		log:         log,
	}
}

// CreateOrderItemInput línea solicitada al crear una orden.
type CreateOrderItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderInput entrada para crear una orden de venta.
type CreateOrderInput struct {
	ClientID       string
	PaymentMethod  string
	PaymentNote    string
	DiscountAmount decimal.Decimal
	Items          []CreateOrderItemInput
}

// CreateOrder crea una orden en estado PENDING. Verifica que cada línea no
// supere el stock actual (reserva blanda: no escribe en el ledger, una orden
// abandonada no cuesta nada) y que el descuento no exceda el subtotal.
func (uc *UseCase) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if len(in.PaymentNote) > 500 {
		return nil, domain.ErrInvalidInput
	}
	if in.DiscountAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	order := &entity.Order{
		ID:             uuid.New().String(),
		ClientID:       in.ClientID,
		UserID:         userID,
		Status:         entity.OrderStatusPending,
		DiscountAmount: in.DiscountAmount,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  entity.PaymentStatusPending,
		PaymentNote:    in.PaymentNote,
		OrderDate:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if !item.UnitPrice.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrProductNotFound
		}
		if !product.IsAvailable {
			return nil, domain.ErrInvalidInput
		}
		// Reserva blanda: la suficiencia se vuelve a verificar al confirmar.
		if item.Quantity > product.CurrentStock {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.CurrentStock,
				Requested:   item.Quantity,
			}
		}
		order.Items = append(order.Items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order.CalculateTotals()
	if order.DiscountAmount.GreaterThan(order.Subtotal) {
		return nil, domain.ErrInvalidInput
	}

	number, err := uc.generateOrderNumber(now)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = number

	// Cabecera e items se insertan en una misma transacción. Si una creación
	// concurrente del mismo día tomó el número entre la verificación y el
	// INSERT, se reintenta con el siguiente disponible.
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.RunOrder(ctx, func(
			_ repository.InventoryMovementRepository,
			_ repository.ProductRepository,
			orderRepo repository.OrderRepository,
		) error {
			return orderRepo.Create(order)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= 2 {
			return nil, err
		}
		number, err = uc.generateOrderNumber(now)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number
	}
	uc.log.Info().
		Str("order_number", order.OrderNumber).
		Str("client_id", order.ClientID).
		Int("items", len(order.Items)).
		Msg("orden creada")
	return order, nil
}

// generateOrderNumber genera un número único con formato ORD-YYYYMMDD-XXXX.
func (uc *UseCase) generateOrderNumber(now time.Time) (string, error) {
	prefix := "ORD-" + now.Format("20060102") + "-"
	for seq := 1; ; seq++ {
		number := fmt.Sprintf("%s%04d", prefix, seq)
		exists, err := uc.orderRepo.ExistsByOrderNumber(number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
}

// ConfirmOrder pasa una orden PENDING a CONFIRMED. Toma los bloqueos de todos
// los productos involucrados en orden ascendente de ID y, dentro de una única
// transacción, re-verifica suficiencia contra el stock vivo y registra un
// movimiento OUT por línea. Si alguna línea falla nada queda aplicado: ni
// movimientos ni cambio de estado.
func (uc *UseCase) ConfirmOrder(ctx context.Context, orderID, userID string) (*entity.Order, []*entity.InventoryMovement, error) {
	existing, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, domain.ErrOrderNotFound
	}
	// Chequeo rápido fuera de la tx; la decisión definitiva se toma con la
	// fila de la orden bloqueada.
	if !existing.CanBeConfirmed() {
		return nil, nil, &domain.InvalidTransitionError{From: existing.Status, Action: "confirmar"}
	}

	productIDs := make([]string, 0, len(existing.Items))
	for _, item := range existing.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var (
		confirmed *entity.Order
		movements []*entity.InventoryMovement
	)
	err = uc.locks.WithProductLocks(ctx, productIDs, func() error {
		return uc.txRunner.RunOrder(ctx, func(
			movRepo repository.InventoryMovementRepository,
			productRepo repository.ProductRepository,
			orderRepo repository.OrderRepository,
		) error {
			ord, err := orderRepo.GetForUpdate(orderID)
			if err != nil {
				return err
			}
			if ord == nil {
				return domain.ErrOrderNotFound
			}
			if !ord.CanBeConfirmed() {
				return &domain.InvalidTransitionError{From: ord.Status, Action: "confirmar"}
			}

			now := time.Now()
			reason := "Venta - Orden: " + ord.OrderNumber
			for _, item := range sortedByProduct(ord.Items) {
				product, err := productRepo.GetForUpdate(item.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return domain.ErrProductNotFound
				}
				mov, err := uc.movements.AppendOUTInTx(movRepo, productRepo, product, item.Quantity, userID, reason, now)
				if err != nil {
					return err
				}
				movements = append(movements, mov)
			}

			if err := ord.MarkAsConfirmed(now); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(ord); err != nil {
				return err
			}
			confirmed = ord
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	uc.log.Info().
		Str("order_number", confirmed.OrderNumber).
		Int("movements", len(movements)).
		Msg("orden confirmada")
	return confirmed, movements, nil
}

// CancelOrder anula una orden PENDING o CONFIRMED registrando motivo y
// usuario. Una orden PENDING no tiene efectos de stock que revertir; una
// CONFIRMED restaura con un movimiento IN por línea exactamente la cantidad
// descontada al confirmar, todo dentro de la misma transacción.
func (uc *UseCase) CancelOrder(ctx context.Context, orderID, userID, reason string) (*entity.Order, []*entity.InventoryMovement, error) {
	if len(reason) > 500 {
		return nil, nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	existing, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	if existing == nil {
		return nil, nil, domain.ErrOrderNotFound
	}
	if !existing.CanBeCancelled() {
		return nil, nil, &domain.InvalidTransitionError{From: existing.Status, Action: "cancelar"}
	}

	var (
		cancelled *entity.Order
		movements []*entity.InventoryMovement
	)

	runCancel := func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		ord, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrOrderNotFound
		}
		if !ord.CanBeCancelled() {
			return &domain.InvalidTransitionError{From: ord.Status, Action: "cancelar"}
		}

		now := time.Now()
		if ord.Status == entity.OrderStatusConfirmed {
			movReason := "Anulación de venta - Orden: " + ord.OrderNumber
			if reason != "" {
				movReason += " (" + reason + ")"
			}
			for _, item := range sortedByProduct(ord.Items) {
				product, err := productRepo.GetForUpdate(item.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return domain.ErrProductNotFound
				}
				mov, err := uc.movements.AppendINInTx(movRepo, productRepo, product, item.Quantity, userID, movReason, now)
				if err != nil {
					return err
				}
				movements = append(movements, mov)
			}
		}

		if err := ord.MarkAsCancelled(reason, userID, now); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ord); err != nil {
			return err
		}
		cancelled = ord
		return nil
	}

	if existing.Status == entity.OrderStatusConfirmed {
		productIDs := make([]string, 0, len(existing.Items))
		for _, item := range existing.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		err = uc.locks.WithProductLocks(ctx, productIDs, func() error {
			return uc.txRunner.RunOrder(ctx, runCancel)
		})
	} else {
		err = uc.txRunner.RunOrder(ctx, runCancel)
	}
	if err != nil {
		return nil, nil, err
	}

	uc.log.Info().
		Str("order_number", cancelled.OrderNumber).
		Str("cancelled_by", userID).
		Int("movements", len(movements)).
		Msg("orden anulada")
	return cancelled, movements, nil
}

// DeliverOrder pasa una orden CONFIRMED a DELIVERED. Sin efecto sobre stock:
// el descuento ocurrió al confirmar.
func (uc *UseCase) DeliverOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var delivered *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		_ repository.InventoryMovementRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		ord, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return domain.ErrOrderNotFound
		}
		if err := ord.MarkAsDelivered(time.Now()); err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ord); err != nil {
			return err
		}
		delivered = ord
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_number", delivered.OrderNumber).Msg("orden entregada")
	return delivered, nil
}

// GetOrder devuelve una orden con nombres de cliente y usuarios.
func (uc *UseCase) GetOrder(ctx context.Context, id string) (*repository.OrderView, error) {
	view, err := uc.orderRepo.GetView(id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrOrderNotFound
	}
	return view, nil
}

// GetOrderByNumber devuelve una orden por su número.
func (uc *UseCase) GetOrderByNumber(ctx context.Context, orderNumber string) (*repository.OrderView, error) {
	ord, err := uc.orderRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, domain.ErrOrderNotFound
	}
	return uc.GetOrder(ctx, ord.ID)
}

// ListOrders lista órdenes, más recientes primero.
func (uc *UseCase) ListOrders(ctx context.Context, limit, offset int) ([]*repository.OrderView, error) {
	limit, offset = normalizePage(limit, offset)
	return uc.orderRepo.List(limit, offset)
}

// ListOrdersByStatus lista órdenes en el estado dado, más recientes primero.
func (uc *UseCase) ListOrdersByStatus(ctx context.Context, status string, limit, offset int) ([]*repository.OrderView, error) {
	if !entity.ValidOrderStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	limit, offset = normalizePage(limit, offset)
	return uc.orderRepo.ListByStatus(status, limit, offset)
}

// GenerateOrderPDF genera el comprobante de venta en PDF.
func (uc *UseCase) GenerateOrderPDF(ctx context.Context, id string) ([]byte, error) {
	view, err := uc.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	lines := make([]ReceiptLine, 0, len(view.Items))
	for i := range view.Items {
		item := &view.Items[i]
		name := item.ProductID
		if product, err := uc.productRepo.GetByID(item.ProductID); err == nil && product != nil {
			name = product.Name
		}
		lines = append(lines, ReceiptLine{
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.ItemTotal(),
		})
	}
	return uc.receipts.Generate(view, lines)
}

func sortedByProduct(items []entity.OrderItem) []entity.OrderItem {
	out := make([]entity.OrderItem, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
