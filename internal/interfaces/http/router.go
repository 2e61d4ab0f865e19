package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/stockia/stockia-api/internal/application/auth"
	"github.com/stockia/stockia-api/internal/application/inventory"
	"github.com/stockia/stockia-api/internal/application/order"
	"github.com/stockia/stockia-api/internal/application/usecase"
	"github.com/stockia/stockia-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	ClientUC  *usecase.ClientUseCase
	Movements *inventory.MovementService
	OrderUC   *order.UseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login público; el registro lo hace un administrador
	// (el primero se siembra en la migración inicial).
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	// Products (protegido; crear y editar solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleAdmin), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin), productHandler.Update)

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.SearchMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Get("/products/:id/stock", inventoryHandler.GetStock)
	invGroup.Get("/products/:id/reconcile", inventoryHandler.Reconcile)

	// Orders (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/number/:number", orderHandler.GetByNumber)
	orders.Get("/status/:status", orderHandler.ListByStatus)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/pdf", orderHandler.GetPDF)
	orders.Patch("/:id/confirm", orderHandler.Confirm)
	orders.Patch("/:id/cancel", orderHandler.Cancel)
	orders.Patch("/:id/deliver", orderHandler.Deliver)
}
