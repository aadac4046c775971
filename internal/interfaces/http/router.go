package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/stockledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Guard     *stockledger.MovementGuardUseCase
	Queries   *stockledger.StockQueryUseCase
	ProductUC *usecase.ProductUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Productos (catálogo mínimo, colaborador del motor)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Stock: ledger, proyección y adaptadores de origen
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Guard, deps.Queries)
	stock.Get("/", stockHandler.ListCurrentStock)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Post("/movements", stockHandler.RecordAdjustment)
	stock.Get("/movements/:id", stockHandler.GetMovement)
	stock.Post("/receipts", stockHandler.RecordReceipt)
	stock.Post("/reservations", stockHandler.RecordReservation)
	stock.Post("/reservations/release", stockHandler.ReleaseReservation)
	stock.Post("/shipments", stockHandler.RecordShipment)
	stock.Get("/:productID/available", stockHandler.GetAvailable)
}
