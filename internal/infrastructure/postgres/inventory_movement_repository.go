package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: este adaptador no expone UPDATE ni DELETE.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento. Asigna ID si viene vacío y recupera la
// secuencia monotónica (seq BIGSERIAL) que ordena el ledger por producto.
func (r *InventoryMovementRepo) Create(movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, movement_type, quantity, reason, user_id, new_stock, purchase_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	reason := (*string)(nil)
	if movement.Reason != "" {
		reason = &movement.Reason
	}
	err := r.q.QueryRow(context.Background(), query,
		movement.ID, movement.ProductID, movement.MovementType, movement.Quantity,
		reason, movement.UserID, movement.NewStock, movement.PurchaseCost, movement.CreatedAt,
	).Scan(&movement.Seq)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

const movementViewColumns = `
		m.id, m.seq, m.product_id, m.movement_type, m.quantity, m.reason,
		m.user_id, m.new_stock, m.purchase_cost, m.created_at,
		p.name AS product_name, u.name AS user_name`

const movementViewJoins = `
		FROM inventory_movements m
		JOIN products p ON p.id = m.product_id
		JOIN users u ON u.id = m.user_id`

// GetByID obtiene un movimiento con nombres de producto y usuario.
func (r *InventoryMovementRepo) GetByID(id string) (*repository.MovementView, error) {
	query := `SELECT ` + movementViewColumns + movementViewJoins + ` WHERE m.id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	view, err := scanMovementView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return view, nil
}

// Search devuelve movimientos que cumplen el filtro (combinado con AND),
// más recientes primero.
func (r *InventoryMovementRepo) Search(filter repository.MovementFilter, limit, offset int) ([]*repository.MovementView, error) {
	query := `SELECT ` + movementViewColumns + movementViewJoins + ` WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND m.product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.MovementType != "" {
		query += fmt.Sprintf(" AND m.movement_type = $%d", pos)
		args = append(args, filter.MovementType)
		pos++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND m.user_id = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.seq DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("search movements: %w", err)
	}
	defer rows.Close()
	var list []*repository.MovementView
	for rows.Next() {
		view, err := scanMovementView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, view)
	}
	return list, rows.Err()
}

// LastSnapshot devuelve el new_stock del último movimiento del producto.
func (r *InventoryMovementRepo) LastSnapshot(productID string) (int, bool, error) {
	query := `
		SELECT new_stock FROM inventory_movements
		WHERE product_id = $1
		ORDER BY seq DESC
		LIMIT 1`
	var newStock int
	err := r.q.QueryRow(context.Background(), query, productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("last snapshot: %w", err)
	}
	return newStock, true, nil
}

func scanMovementView(row pgx.Row) (*repository.MovementView, error) {
	var v repository.MovementView
	var reason *string
	err := row.Scan(
		&v.ID, &v.Seq, &v.ProductID, &v.MovementType, &v.Quantity, &reason,
		&v.UserID, &v.NewStock, &v.PurchaseCost, &v.CreatedAt,
		&v.ProductName, &v.UserName,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		v.Reason = *reason
	}
	return &v, nil
}
