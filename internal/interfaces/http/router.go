package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	SiteUC        *usecase.SiteUseCase
	ReceptionUC   *inventory.ReceptionUseCase
	DeploymentUC  *inventory.DeploymentUseCase
	ReturnUC      *inventory.ReturnUseCase
	ReplacementUC *inventory.ReplacementUseCase
	ReservationUC *inventory.ReservationUseCase
	FulfillmentUC *inventory.FulfillmentUseCase
	QueryUC       *inventory.QueryUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo de productos
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Objetos de instalación
	sites := api.Group("/sites")
	siteHandler := NewSiteHandler(deps.SiteUC)
	sites.Post("/", siteHandler.Create)
	sites.Get("/", siteHandler.List)
	sites.Get("/:id", siteHandler.GetByID)

	// Ciclo de vida de lotes
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(
		deps.ReceptionUC,
		deps.DeploymentUC,
		deps.ReturnUC,
		deps.ReplacementUC,
		deps.ReservationUC,
		deps.QueryUC,
	)
	lots.Post("/receive", lotHandler.Receive)
	lots.Post("/deploy-batch", lotHandler.DeployBatch)
	lots.Post("/replace", lotHandler.Replace)
	lots.Get("/", lotHandler.List)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/history", lotHandler.History)
	lots.Get("/:id/replay", lotHandler.Replay)
	lots.Post("/:id/serial", lotHandler.AssignSerial)
	lots.Post("/:id/deploy", lotHandler.Deploy)
	lots.Post("/:id/return", lotHandler.Return)
	lots.Post("/:id/reserve", lotHandler.Reserve)
	lots.Post("/:id/release", lotHandler.Release)

	// Despacho de documentos
	fulfillments := api.Group("/fulfillments")
	fulfillmentHandler := NewFulfillmentHandler(deps.FulfillmentUC)
	fulfillments.Post("/", fulfillmentHandler.Fulfill)
}
