package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stockia/stockia-api/internal/application/dto"
	"github.com/stockia/stockia-api/internal/application/order"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP de órdenes de venta (protegido).
type OrderHandler struct {
	uc *order.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de venta
// @Description  La orden nace PENDING: el stock se verifica pero no se
//
//	descuenta hasta la confirmación.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "client_id, payment_method, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]order.CreateOrderItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, order.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	created, err := h.uc.CreateOrder(c.Context(), userID, order.CreateOrderInput{
		ClientID:       in.ClientID,
		PaymentMethod:  in.PaymentMethod,
		PaymentNote:    in.PaymentNote,
		DiscountAmount: in.DiscountAmount,
		Items:          items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToOrderResponse(created))
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	view, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderViewResponse(view))
}

// GetByNumber godoc
// @Summary      Obtener orden por número
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de orden (ORD-YYYYMMDD-XXXX)"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	view, err := h.uc.GetOrderByNumber(c.Context(), c.Params("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderViewResponse(view))
}

// List godoc
// @Summary      Listar órdenes
// @Description  Con ?status= filtra por estado; sin él lista todas.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING | CONFIRMED | DELIVERED | CANCELLED"
// @Param        limit   query  int     false  "máx. 200, default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}   dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := c.QueryInt("limit"), c.QueryInt("offset")

	if status := c.Query("status"); status != "" {
		list, err := h.uc.ListOrdersByStatus(c.Context(), status, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toOrderResponses(list))
	}
	list, err := h.uc.ListOrders(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponses(list))
}

// ListByStatus godoc
// @Summary      Listar órdenes por estado
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  path   string  true   "PENDING | CONFIRMED | DELIVERED | CANCELLED"
// @Param        limit   query  int     false  "máx. 200, default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}   dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders/status/{status} [get]
func (h *OrderHandler) ListByStatus(c *fiber.Ctx) error {
	limit, offset := c.QueryInt("limit"), c.QueryInt("offset")
	list, err := h.uc.ListOrdersByStatus(c.Context(), c.Params("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponses(list))
}

func toOrderResponses(views []*repository.OrderView) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.ToOrderViewResponse(v))
	}
	return out
}

// Confirm godoc
// @Summary      Confirmar orden
// @Description  PENDING -> CONFIRMED. Descuenta stock con un movimiento OUT
//
//	por línea dentro de una única transacción; el pago pasa a PAID.
//
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderTransitionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/confirm [patch]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	confirmed, movements, err := h.uc.ConfirmOrder(c.Context(), c.Params("id"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderTransitionResponse(confirmed, movements))
}

// Cancel godoc
// @Summary      Anular orden
// @Description  PENDING o CONFIRMED -> CANCELLED. Una orden confirmada
//
//	restaura el stock con movimientos IN compensatorios.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true   "ID de la orden"
// @Param        body  body  dto.CancelOrderRequest  false  "cancel_reason"
// @Success      200   {object}  dto.OrderTransitionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [patch]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	cancelled, movements, err := h.uc.CancelOrder(c.Context(), c.Params("id"), userID, in.CancelReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderTransitionResponse(cancelled, movements))
}

// Deliver godoc
// @Summary      Marcar orden como entregada
// @Description  CONFIRMED -> DELIVERED. Sin efecto sobre stock.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/deliver [patch]
func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	delivered, err := h.uc.DeliverOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(delivered))
}

// GetPDF godoc
// @Summary      Comprobante de venta en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pdf [get]
func (h *OrderHandler) GetPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.GenerateOrderPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="orden.pdf"`)
	return c.Send(pdfBytes)
}
