// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"salesdesk/internal/domain/catalogs/company"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/internal/domain/orders"
	"salesdesk/internal/infrastructure/http/v1/handlers"
	"salesdesk/internal/infrastructure/http/v1/middleware"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/pkg/logger"
)

// Roles understood by the API.
const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Domain services
	CompanyService *company.Service
	StoreService   *store.Service
	ProductService *product.Service
	OrderService   *orders.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1 - everything below requires a valid token
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerCatalogRoutes(v1, cfg)
		registerOrderRoutes(v1, cfg)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- COMPANIES ---
	{
		handler := handlers.NewCompanyHandler(baseHandler, cfg.CompanyService)
		registerCatalogCRUD(catalogs.Group("/companies"), handler)
	}

	// --- STORES ---
	{
		handler := handlers.NewStoreHandler(baseHandler, cfg.StoreService)
		group := catalogs.Group("/stores")
		registerCatalogCRUD(group, handler)
		group.GET("/:id/next-invoice", middleware.RequireStoreAccess("id"), handler.NextInvoice)

		catalogs.GET("/companies/:id/stores", handler.ListByCompany)
	}

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService)
		group := catalogs.Group("/products")
		registerCatalogCRUD(group, handler)
		group.PUT("/:id/stock", middleware.RequireRole(RoleManager), handler.SetStock)

		catalogs.GET("/stores/:id/products", middleware.RequireStoreAccess("id"), handler.ListByStore)
	}
}

// registerOrderRoutes registers sales order endpoints.
func registerOrderRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewOrderHandler(baseHandler, cfg.OrderService)

	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("", middleware.RequireRole(RoleCashier, RoleManager), handler.Submit)
		ordersGroup.GET("", handler.List)
		ordersGroup.GET("/:id", handler.Get)
		ordersGroup.POST("/:id/void", middleware.RequireRole(RoleManager), handler.Void)
	}

	rg.GET("/stores/:id/orders/:number", middleware.RequireStoreAccess("id"), handler.GetByInvoiceNumber)
}

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// registerCatalogCRUD registers standard CRUD routes for a catalog.
// Reads are open to any authenticated user; mutations need the manager role.
func registerCatalogCRUD(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", middleware.RequireRole(RoleManager), handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", middleware.RequireRole(RoleManager), handler.Update)
	group.DELETE("/:id", middleware.RequireRole(RoleManager), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequireRole(RoleManager), handler.SetDeletionMark)
}
