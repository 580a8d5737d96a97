// internal/api/handlers/recommendation_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RecommendationHandler struct {
	service *service.RecommendationService
}

func NewRecommendationHandler(service *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

type reorderAnalysisRequest struct {
	SKU string `json:"sku"`
}

// AnalyzeReorders handles POST /analyze/reorder. An empty sku analyzes the
// whole catalog.
func (h *RecommendationHandler) AnalyzeReorders(c *gin.Context) {
	var req reorderAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	recommendations, err := h.service.AnalyzeAll(c.Request.Context(), req.SKU)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		log.Error().Err(err).Msg("reorder analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"total":           len(recommendations),
	})
}

// GetMetrics handles GET /analyze/metrics
func (h *RecommendationHandler) GetMetrics(c *gin.Context) {
	snapshot, err := h.service.Metrics(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("inventory metrics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
