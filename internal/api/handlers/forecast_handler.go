// internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/forecast"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

type forecastRequest struct {
	SKU       string `json:"sku" binding:"required"`
	DaysAhead int    `json:"days_ahead"`
}

// GenerateForecast handles POST /forecast
func (h *ForecastHandler) GenerateForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	detail, err := h.service.ForecastDetail(c.Request.Context(), req.SKU, req.DaysAhead)
	if err != nil {
		forecastError(c, req.SKU, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetTrend handles GET /forecast/:sku/trend
func (h *ForecastHandler) GetTrend(c *gin.Context) {
	sku := c.Param("sku")

	trend, err := h.service.TrendAnalysis(c.Request.Context(), sku)
	if err != nil {
		forecastError(c, sku, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "trend_analysis": trend})
}

// GetAccuracy handles GET /forecast/:sku/accuracy
func (h *ForecastHandler) GetAccuracy(c *gin.Context) {
	sku := c.Param("sku")

	accuracy, err := h.service.Accuracy(c.Request.Context(), sku)
	if err != nil {
		forecastError(c, sku, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "accuracy_metrics": accuracy})
}

type recordSaleRequest struct {
	Date     string  `json:"date"`
	Quantity int     `json:"quantity" binding:"gte=0"`
	Revenue  float64 `json:"revenue"`
}

// RecordSale handles POST /sales/:sku. The date is optional and defaults to
// today.
func (h *ForecastHandler) RecordSale(c *gin.Context) {
	sku := c.Param("sku")

	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sales record"})
		return
	}

	obs := domain.SalesObservation{Quantity: req.Quantity, Revenue: req.Revenue}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
			return
		}
		obs.Date = date
	}

	if err := h.service.RecordSale(c.Request.Context(), sku, obs); err != nil {
		forecastError(c, sku, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sku": sku, "status": "recorded"})
}

// InvalidateCache handles DELETE /forecast/cache
func (h *ForecastHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateForecasts(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("forecast cache invalidation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "invalidated"})
}

func forecastError(c *gin.Context, sku string, err error) {
	log.Error().Err(err).Str("sku", sku).Msg("forecast request failed")

	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrNoSalesHistory), errors.Is(err, forecast.ErrInsufficientData):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient sales history for forecasting"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
