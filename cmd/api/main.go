package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appembed "embedgraph-backend/application/embed"
	"embedgraph-backend/infrastructure/config"
	"embedgraph-backend/infrastructure/graph"
	"embedgraph-backend/infrastructure/sqlite"
	"embedgraph-backend/interfaces/http/rest"
	"embedgraph-backend/interfaces/http/rest/handlers"
	"embedgraph-backend/pkg/auth"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Token store
	store, err := sqlite.OpenTokenStore(cfg.SQLitePath)
	if err != nil {
		logger.Fatal("Failed to open token store", zap.Error(err))
	}
	defer store.Close()

	// Graph database
	driver, err := graph.Connect(ctx, graph.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	})
	if err != nil {
		logger.Fatal("Failed to connect to neo4j", zap.Error(err))
	}
	defer driver.Close(ctx)

	executor, err := graph.NewExecutor(driver, cfg.Neo4jDatabase, neo4j.AccessModeRead)
	if err != nil {
		logger.Fatal("Failed to create query executor", zap.Error(err))
	}

	service := appembed.NewService(store, executor, logger, appembed.Options{
		BaseURL:           baseURL(cfg),
		DefaultExpiryDays: cfg.DefaultExpiryDays,
		MaxExpiryDays:     cfg.MaxExpiryDays,
	})
	service.StartSweeper(ctx, cfg.SweepInterval)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: jwtSecret(cfg, logger),
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Fatal("Failed to create JWT validator", zap.Error(err))
	}

	// Create router
	router := rest.NewRouter(service, logger, rest.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		ProxyRatePerMin: cfg.ProxyRateLimit,
		JWTValidator:    validator,
		HealthChecks: handlers.HealthChecks{
			TokenStore: store.Ping,
			GraphDB: func(ctx context.Context) bool {
				return graph.VerifyConnectivity(ctx, driver)
			},
		},
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zcfg zap.Config
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level

	return zcfg.Build()
}

func baseURL(cfg *config.Config) string {
	if cfg.EmbedBaseURL != "" {
		return cfg.EmbedBaseURL
	}
	return "http://localhost" + cfg.ServerAddress
}

func jwtSecret(cfg *config.Config, logger *zap.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	// Validate() already requires a real secret in production.
	logger.Warn("JWT_SECRET not set, using development secret")
	return "development-secret-change-in-production"
}
