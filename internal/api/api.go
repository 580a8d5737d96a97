// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/api/handlers"
	"github.com/andresuchdata/supply-agent-go/internal/api/middleware"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService       *service.ForecastService
	RecommendationService *service.RecommendationService
	ProductRepository     repository.ProductRepository
	SalesRepository       repository.SalesRepository
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ProductRepository != nil && services.SalesRepository != nil {
			productHandler := handlers.NewProductHandler(services.ProductRepository, services.SalesRepository)
			apiGroup.GET("/products", productHandler.GetProducts)
			apiGroup.GET("/products/:sku", productHandler.GetProduct)
			apiGroup.GET("/sales/:sku", productHandler.GetSalesHistory)
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			forecastGroup := apiGroup.Group("/forecast")
			{
				forecastGroup.POST("", forecastHandler.GenerateForecast)
				forecastGroup.DELETE("/cache", forecastHandler.InvalidateCache)
				forecastGroup.GET("/:sku/trend", forecastHandler.GetTrend)
				forecastGroup.GET("/:sku/accuracy", forecastHandler.GetAccuracy)
			}
			apiGroup.POST("/sales/:sku", forecastHandler.RecordSale)
		}

		if services.RecommendationService != nil {
			recommendationHandler := handlers.NewRecommendationHandler(services.RecommendationService)
			analyzeGroup := apiGroup.Group("/analyze")
			{
				analyzeGroup.POST("/reorder", recommendationHandler.AnalyzeReorders)
				analyzeGroup.GET("/metrics", recommendationHandler.GetMetrics)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
