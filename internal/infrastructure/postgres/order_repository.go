package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `
		id, order_number, client_id, user_id, status,
		subtotal, discount_amount, total_amount,
		payment_method, payment_status, payment_note,
		order_date, delivered_date, cancelled_date, cancel_reason, cancelled_by,
		created_at, updated_at`

// Create inserta la orden y sus items.
func (r *OrderRepo) Create(order *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.OrderNumber, order.ClientID, order.UserID, order.Status,
		order.Subtotal, order.DiscountAmount, order.TotalAmount,
		order.PaymentMethod, order.PaymentStatus, nullIfEmpty(order.PaymentNote),
		order.OrderDate, order.DeliveredDate, order.CancelledDate,
		nullIfEmpty(order.CancelReason), nullIfEmpty(order.CancelledBy),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`
	for i := range order.Items {
		item := &order.Items[i]
		if _, err := r.q.Exec(ctx, itemQuery,
			item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice,
		); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden con sus items, o (nil, nil) si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(query, id)
}

// GetByOrderNumber obtiene una orden por su número legible.
func (r *OrderRepo) GetByOrderNumber(orderNumber string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.getOne(query, orderNumber)
}

// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
// Solo tiene sentido con un Querier transaccional.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

func (r *OrderRepo) getOne(query string, arg any) (*entity.Order, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus persiste los campos mutables por transición de estado.
func (r *OrderRepo) UpdateStatus(order *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $1, payment_status = $2,
		    delivered_date = $3, cancelled_date = $4,
		    cancel_reason = $5, cancelled_by = $6,
		    updated_at = $7
		WHERE id = $8`
	tag, err := r.q.Exec(context.Background(), query,
		order.Status, order.PaymentStatus,
		order.DeliveredDate, order.CancelledDate,
		nullIfEmpty(order.CancelReason), nullIfEmpty(order.CancelledBy),
		order.UpdatedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ExistsByOrderNumber verifica si el número de orden ya fue asignado.
func (r *OrderRepo) ExistsByOrderNumber(orderNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)`
	if err := r.q.QueryRow(context.Background(), query, orderNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists order number: %w", err)
	}
	return exists, nil
}

const orderViewColumns = `
		o.id, o.order_number, o.client_id, o.user_id, o.status,
		o.subtotal, o.discount_amount, o.total_amount,
		o.payment_method, o.payment_status, o.payment_note,
		o.order_date, o.delivered_date, o.cancelled_date, o.cancel_reason, o.cancelled_by,
		o.created_at, o.updated_at,
		c.name AS client_name, u.name AS user_name, cu.name AS cancelled_by_name`

const orderViewJoins = `
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		JOIN users u ON u.id = o.user_id
		LEFT JOIN users cu ON cu.id = o.cancelled_by`

// List devuelve órdenes enriquecidas, más recientes primero.
func (r *OrderRepo) List(limit, offset int) ([]*repository.OrderView, error) {
	query := `SELECT ` + orderViewColumns + orderViewJoins + `
		ORDER BY o.created_at DESC LIMIT $1 OFFSET $2`
	return r.listViews(query, limit, offset)
}

// ListByStatus devuelve órdenes en el estado dado, más recientes primero.
func (r *OrderRepo) ListByStatus(status string, limit, offset int) ([]*repository.OrderView, error) {
	query := `SELECT ` + orderViewColumns + orderViewJoins + `
		WHERE o.status = $1
		ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`
	return r.listViews(query, status, limit, offset)
}

// GetView obtiene una orden enriquecida con sus items, o (nil, nil) si no existe.
func (r *OrderRepo) GetView(id string) (*repository.OrderView, error) {
	query := `SELECT ` + orderViewColumns + orderViewJoins + ` WHERE o.id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	view, err := scanOrderView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order view: %w", err)
	}
	if err := r.loadItems(&view.Order); err != nil {
		return nil, err
	}
	return view, nil
}

func (r *OrderRepo) listViews(query string, args ...any) ([]*repository.OrderView, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var views []*repository.OrderView
	for rows.Next() {
		view, err := scanOrderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, view := range views {
		if err := r.loadItems(&view.Order); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (r *OrderRepo) loadItems(order *entity.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	order.Items = order.Items[:0]
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var paymentNote, cancelReason, cancelledBy *string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ClientID, &o.UserID, &o.Status,
		&o.Subtotal, &o.DiscountAmount, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &paymentNote,
		&o.OrderDate, &o.DeliveredDate, &o.CancelledDate, &cancelReason, &cancelledBy,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentNote = deref(paymentNote)
	o.CancelReason = deref(cancelReason)
	o.CancelledBy = deref(cancelledBy)
	return &o, nil
}

func scanOrderView(row pgx.Row) (*repository.OrderView, error) {
	var v repository.OrderView
	var paymentNote, cancelReason, cancelledBy, cancelledByName *string
	err := row.Scan(
		&v.ID, &v.OrderNumber, &v.ClientID, &v.UserID, &v.Status,
		&v.Subtotal, &v.DiscountAmount, &v.TotalAmount,
		&v.PaymentMethod, &v.PaymentStatus, &paymentNote,
		&v.OrderDate, &v.DeliveredDate, &v.CancelledDate, &cancelReason, &cancelledBy,
		&v.CreatedAt, &v.UpdatedAt,
		&v.ClientName, &v.UserName, &cancelledByName,
	)
	if err != nil {
		return nil, err
	}
	v.PaymentNote = deref(paymentNote)
	v.CancelReason = deref(cancelReason)
	v.CancelledBy = deref(cancelledBy)
	v.CancelledByName = deref(cancelledByName)
	return &v, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
