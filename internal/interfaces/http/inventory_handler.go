package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stockia/stockia-api/internal/application/dto"
	"github.com/stockia/stockia-api/internal/application/inventory"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	movements *inventory.MovementService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementService) *InventoryHandler {
	return &InventoryHandler{movements: movements}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN suma stock (purchase_cost obligatorio), OUT resta,
//
//	ADJUSTMENT fija el stock absoluto. El usuario sale del token.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, movement_type, quantity, reason, purchase_cost (IN)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.movements.RegisterMovement(c.Context(), inventory.MovementInput{
		ProductID:    in.ProductID,
		MovementType: in.MovementType,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		PurchaseCost: in.PurchaseCost,
		UserID:       userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        mov.ID,
		"new_stock": mov.NewStock,
	})
}

// SearchMovements godoc
// @Summary      Historial de movimientos
// @Description  Filtros combinables por producto, tipo y usuario. Más recientes primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Filtrar por producto"
// @Param        movement_type  query  string  false  "IN | OUT | ADJUSTMENT"
// @Param        user_id        query  string  false  "Filtrar por usuario"
// @Param        limit          query  int     false  "máx. 200, default 50"
// @Param        offset         query  int     false  "default 0"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) SearchMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ProductID:    c.Query("product_id"),
		MovementType: c.Query("movement_type"),
		UserID:       c.Query("user_id"),
	}
	views, err := h.movements.SearchMovements(c.Context(), filter, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.ToMovementResponse(v))
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	view, err := h.movements.GetMovementByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(view))
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]int
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	quantity, err := h.movements.CurrentQuantity(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"product_id": productID,
		"stock":      quantity,
	})
}

// Reconcile godoc
// @Summary      Reconciliar stock contra el ledger
// @Description  Contrasta el contador materializado del producto contra el
//
//	snapshot del último movimiento. Una divergencia es una falla
//	de integridad y responde 500 con ambos valores.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  inventory.ReconcileResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	result, err := h.movements.ReconcileProduct(c.Context(), c.Params("id"))
	if err != nil {
		var mismatch *domain.ProjectionMismatchError
		if errors.As(err, &mismatch) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"code":   "PROJECTION_MISMATCH",
				"result": result,
			})
		}
		return respondError(c, err)
	}
	return c.JSON(result)
}
