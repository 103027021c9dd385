// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1/handlers"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1/middleware"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// AuthService for login and manager-PIN endpoints
	AuthService *auth.Service

	// ReturnsService drives the returns workflow
	ReturnsService *returns.Service

	// InventoryService exposes movement history
	InventoryService *inventory.Service
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
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
	salesHandler := handlers.NewSalesHandler(baseHandler, cfg.ReturnsService)
	returnsHandler := handlers.NewReturnsHandler(baseHandler, cfg.ReturnsService, cfg.AuthService)
	inventoryHandler := handlers.NewInventoryHandler(baseHandler, cfg.InventoryService)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Public: terminal login
		apiV1.POST("/auth/login", authHandler.Login)

		// Protected endpoints
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))
		{
			protected.POST("/auth/verify-pin", authHandler.VerifyPin)

			protected.GET("/sales/lookup", salesHandler.Lookup)
			protected.GET("/sales/:id/eligibility", salesHandler.Eligibility)
			protected.GET("/sales/:id/returnable-lines", salesHandler.ReturnableLines)

			protected.POST("/returns/validate", returnsHandler.Validate)
			protected.POST("/returns/calculate", returnsHandler.Calculate)
			protected.POST("/returns", returnsHandler.Commit)
			protected.GET("/returns", returnsHandler.List)
			protected.GET("/returns/export", returnsHandler.ExportCSV)
			protected.GET("/returns/:id/receipt", returnsHandler.Receipt)

			protected.GET("/inventory/:productId/movements", inventoryHandler.Movements)
		}
	}

	return router
}
