// internal/api/handlers/product_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ProductHandler struct {
	products repository.ProductRepository
	sales    repository.SalesRepository
}

func NewProductHandler(products repository.ProductRepository, sales repository.SalesRepository) *ProductHandler {
	return &ProductHandler{products: products, sales: sales}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.products.GetAllProducts(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("listing products failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// GetProduct handles GET /products/:sku
func (h *ProductHandler) GetProduct(c *gin.Context) {
	sku := c.Param("sku")

	product, err := h.products.GetProduct(c.Request.Context(), sku)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		log.Error().Err(err).Str("sku", sku).Msg("getting product failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetSalesHistory handles GET /sales/:sku?days=90
func (h *ProductHandler) GetSalesHistory(c *gin.Context) {
	sku := c.Param("sku")

	days := 90
	if parsed, err := strconv.Atoi(c.DefaultQuery("days", "90")); err == nil && parsed > 0 {
		days = parsed
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	history, err := h.sales.GetHistory(c.Request.Context(), sku, start, end)
	if err != nil {
		log.Error().Err(err).Str("sku", sku).Msg("getting sales history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totalQuantity := 0
	for _, obs := range history {
		totalQuantity += obs.Quantity
	}

	c.JSON(http.StatusOK, gin.H{
		"sku":            sku,
		"sales":          history,
		"total_quantity": totalQuantity,
	})
}
