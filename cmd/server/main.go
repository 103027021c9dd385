// Package main is the entry point for the POSGrocery returns API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partheepan17/POSGrocery-sub002/internal/domain/auth"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/catalogs/product"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/inventory"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/cache"
	v1 "github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/http/v1"
	"github.com/partheepan17/POSGrocery-sub002/internal/infrastructure/storage/postgres"
	"github.com/partheepan17/POSGrocery-sub002/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting posgrocery returns server")

	// --- Database connection ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	saleRepo := postgres.NewSaleRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	returnRepo := postgres.NewReturnRepo(txManager)
	inventoryRepo := postgres.NewInventoryRepo(txManager)
	settingsRepo := postgres.NewSettingsRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)

	// --- Product cache (optional) ---
	var catalogReader product.Reader = productRepo
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		productCache := cache.NewProductCache(
			redisAddr,
			getEnv("REDIS_PASSWORD", ""),
			getEnvInt("REDIS_DB", 0),
			productRepo,
		)
		if err := productCache.Ping(ctx); err != nil {
			log.Warnw("redis unreachable, falling back to direct catalog reads", "error", err)
		} else {
			catalogReader = productCache
			defer productCache.Close()
			log.Infow("product cache enabled", "addr", redisAddr)
		}
	}

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService)

	inventoryService := inventory.NewService(inventoryRepo)
	returnsService := returns.NewService(
		returnRepo,
		saleRepo,
		catalogReader,
		productRepo,
		inventoryService,
		settingsRepo,
		txManager,
		auditService,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool.Unwrap(),
		Logger:           log,
		AuthService:      authService,
		ReturnsService:   returnsService,
		InventoryService: inventoryService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
