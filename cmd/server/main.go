// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/api"
	"github.com/andresuchdata/supply-agent-go/internal/cache"
	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/optimizer"
	"github.com/andresuchdata/supply-agent-go/internal/repository/postgres"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/andresuchdata/supply-agent-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.Server.Mode == "debug" {
		logger.SetLevel("debug")
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	productRepo := postgres.NewProductRepository(db)
	salesRepo := postgres.NewSalesRepository(db)

	// Initialize forecast cache; fall back to noop when Redis is unavailable
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, continuing without caching")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Initialize services
	opt := optimizer.NewOptimizer(cfg.Engine.SafetyFactor, cfg.Engine.OrderBatchSize)
	forecastService := service.NewForecastService(salesRepo, productRepo, forecastCache, cfg.Engine)
	recommendationService := service.NewRecommendationService(productRepo, salesRepo, opt, cfg.Engine)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ForecastService:       forecastService,
		RecommendationService: recommendationService,
		ProductRepository:     productRepo,
		SalesRepository:       salesRepo,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exited")
}
