// Package main is the entry point for the salesdesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdesk/internal/domain/auth"
	"salesdesk/internal/domain/catalogs/company"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/internal/domain/orders"
	v1 "salesdesk/internal/infrastructure/http/v1"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"salesdesk/internal/infrastructure/storage/postgres/order_repo"
	"salesdesk/pkg/logger"
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
	log.Info("starting salesdesk server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	companyRepo := catalog_repo.NewCompanyRepo(txManager)
	storeRepo := catalog_repo.NewStoreRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)

	// --- Domain services ---
	// The counter mirror is shared: the orders service feeds it on every
	// commit, the store service invalidates it on catalog edits.
	mirror := orders.NewCounterMirror()

	companyService := company.NewService(companyRepo, txManager)
	storeService := store.NewService(storeRepo, txManager, mirror)
	productService := product.NewService(productRepo, txManager)

	orderCfg := orders.DefaultConfig()
	if maxLines := getEnvInt("ORDER_MAX_LINES_PER_BATCH", 0); maxLines > 0 {
		orderCfg.MaxLinesPerBatch = maxLines
	}
	orderService := orders.NewService(
		storeRepo,
		productRepo,
		orderRepo,
		txManager,
		mirror,
		auditService,
		orderCfg,
	)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		CompanyService: companyService,
		StoreService:   storeService,
		ProductService: productService,
		OrderService:   orderService,
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
