// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"ledgerpost/internal/domain/auth"
	"ledgerpost/internal/infrastructure/http/v1/handlers"
	"ledgerpost/internal/infrastructure/http/v1/middleware"
)

// Permission codes guarding the API.
const (
	PermDocumentsRead  = "documents.read"
	PermDocumentsWrite = "documents.write"
	PermDocumentsPost  = "documents.post"
	PermMastersRead    = "masters.read"
	PermMastersWrite   = "masters.write"
	PermLedgerRead     = "ledger.read"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Purchase       *handlers.PurchaseHandler
	SalesInvoice   *handlers.SalesInvoiceHandler
	PurchaseReturn *handlers.PurchaseReturnHandler
	Item           *handlers.ItemHandler
	Party          *handlers.PartyHandler
	Journal        *handlers.JournalHandler
	Health         *handlers.HealthHandler
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(h Handlers, jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)

	router.GET("/health/live", h.Health.Live)
	router.GET("/health/ready", h.Health.Ready)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtService))

	registerDocumentRoutes(api, h)
	registerMasterRoutes(api, h)
	registerLedgerRoutes(api, h)

	return router
}

func registerDocumentRoutes(api *gin.RouterGroup, h Handlers) {
	read := middleware.RequirePermission(PermDocumentsRead)
	write := middleware.RequirePermission(PermDocumentsWrite)
	post := middleware.RequirePermission(PermDocumentsPost)

	purchases := api.Group("/purchases")
	{
		purchases.GET("", read, h.Purchase.List)
		purchases.GET("/:id", read, h.Purchase.Get)
		purchases.POST("", write, h.Purchase.Create)
		purchases.PUT("/:id", write, h.Purchase.Update)
		purchases.DELETE("/:id", write, h.Purchase.Delete)
		purchases.POST("/:id/save-number", write, h.Purchase.SaveWithNumber)
		purchases.POST("/:id/confirm-costing", post, h.Purchase.ConfirmCosting)
		purchases.POST("/:id/cancel", post, h.Purchase.Cancel)
		purchases.POST("/:id/set-to-draft", post, h.Purchase.SetToDraft)
	}

	invoices := api.Group("/sales-invoices")
	{
		invoices.GET("", read, h.SalesInvoice.List)
		invoices.GET("/:id", read, h.SalesInvoice.Get)
		invoices.POST("", write, h.SalesInvoice.Create)
		invoices.PUT("/:id", write, h.SalesInvoice.Update)
		invoices.DELETE("/:id", write, h.SalesInvoice.Delete)
		invoices.POST("/:id/save-number", write, h.SalesInvoice.SaveWithNumber)
		invoices.POST("/:id/post", post, h.SalesInvoice.Post)
		invoices.POST("/:id/cancel", post, h.SalesInvoice.Cancel)
		invoices.POST("/:id/set-to-draft", post, h.SalesInvoice.SetToDraft)
	}

	returns := api.Group("/purchase-returns")
	{
		returns.GET("", read, h.PurchaseReturn.List)
		returns.GET("/:id", read, h.PurchaseReturn.Get)
		returns.POST("", write, h.PurchaseReturn.Create)
		returns.PUT("/:id", write, h.PurchaseReturn.Update)
		returns.DELETE("/:id", write, h.PurchaseReturn.Delete)
		returns.POST("/:id/save-number", write, h.PurchaseReturn.SaveWithNumber)
		returns.POST("/:id/post", post, h.PurchaseReturn.Post)
		returns.POST("/:id/cancel", post, h.PurchaseReturn.Cancel)
		returns.POST("/:id/set-to-draft", post, h.PurchaseReturn.SetToDraft)
	}
}

func registerMasterRoutes(api *gin.RouterGroup, h Handlers) {
	read := middleware.RequirePermission(PermMastersRead)
	write := middleware.RequirePermission(PermMastersWrite)

	items := api.Group("/items")
	{
		items.GET("", read, h.Item.List)
		items.GET("/:id", read, h.Item.Get)
		items.POST("", write, h.Item.Create)
		items.PUT("/:id", write, h.Item.Update)
		items.DELETE("/:id", write, h.Item.Delete)
		items.GET("/:id/movements", read, h.Item.Movements)
		items.GET("/:id/balance", read, h.Item.Balance)
	}

	parties := api.Group("/parties")
	{
		parties.GET("", read, h.Party.List)
		parties.GET("/:id", read, h.Party.Get)
		parties.POST("", write, h.Party.Create)
		parties.PUT("/:id", write, h.Party.Update)
		parties.DELETE("/:id", write, h.Party.Delete)
	}
}

func registerLedgerRoutes(api *gin.RouterGroup, h Handlers) {
	read := middleware.RequirePermission(PermLedgerRead)

	api.GET("/journals/:id", read, h.Journal.Get)
	api.GET("/journals/by-document/:id", read, h.Journal.GetByDocument)
	api.GET("/accounts/:id/ledger", read, h.Journal.AccountLedger)
}
