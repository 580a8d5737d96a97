// internal/api/api_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/cache"
	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/optimizer"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/andresuchdata/supply-agent-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureProductRepo struct {
	products []domain.Product
}

func (r *fixtureProductRepo) GetProduct(_ context.Context, sku string) (*domain.Product, error) {
	for _, product := range r.products {
		if product.SKU == sku {
			p := product
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, sku)
}

func (r *fixtureProductRepo) GetAllProducts(_ context.Context) ([]domain.Product, error) {
	return r.products, nil
}

type fixtureSalesRepo struct {
	histories map[string][]domain.SalesObservation
}

func (r *fixtureSalesRepo) GetHistory(_ context.Context, sku string, start, end time.Time) ([]domain.SalesObservation, error) {
	var history []domain.SalesObservation
	for _, obs := range r.histories[sku] {
		if obs.Date.Before(start) || obs.Date.After(end) {
			continue
		}
		history = append(history, obs)
	}
	return history, nil
}

func (r *fixtureSalesRepo) GetHistoryForSKUs(ctx context.Context, skus []string, start, end time.Time) (map[string][]domain.SalesObservation, error) {
	histories := make(map[string][]domain.SalesObservation, len(skus))
	for _, sku := range skus {
		history, err := r.GetHistory(ctx, sku, start, end)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 {
			histories[sku] = history
		}
	}
	return histories, nil
}

func (r *fixtureSalesRepo) AddObservation(_ context.Context, sku string, obs domain.SalesObservation) error {
	r.histories[sku] = append(r.histories[sku], obs)
	return nil
}

func fixtureHistory(days, qty int) []domain.SalesObservation {
	history := make([]domain.SalesObservation, days)
	start := time.Now().AddDate(0, 0, -days)
	for i := range history {
		history[i] = domain.SalesObservation{
			Date:     start.AddDate(0, 0, i),
			Quantity: qty,
			Revenue:  float64(qty) * 10,
		}
	}
	return history
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := &fixtureProductRepo{products: []domain.Product{
		{SKU: "PROT-WH-1KG", Name: "whey protein isolate 1kg", Category: "supplements",
			CurrentStock: 8, UnitCost: 800, SupplierLeadTimeDays: 5, MinOrderQuantity: 20},
		{SKU: "BAND-SET", Name: "resistance band set", Category: "fitness equipment",
			CurrentStock: 900, UnitCost: 250, SupplierLeadTimeDays: 7, MinOrderQuantity: 30},
	}}
	sales := &fixtureSalesRepo{histories: map[string][]domain.SalesObservation{
		"PROT-WH-1KG": fixtureHistory(60, 8),
		"BAND-SET":    fixtureHistory(60, 5),
	}}

	engine := config.EngineConfig{
		SafetyFactor:       1.5,
		OrderBatchSize:     50,
		MinDataPoints:      14,
		ConfidenceInterval: 0.95,
		HorizonDays:        30,
		HistoryWindowDays:  180,
	}
	opt := optimizer.NewOptimizer(engine.SafetyFactor, engine.OrderBatchSize)

	return NewRouter(&Services{
		ForecastService:       service.NewForecastService(sales, products, cache.NewNoopForecastCache(), engine),
		RecommendationService: service.NewRecommendationService(products, sales, opt, engine),
		ProductRepository:     products,
		SalesRepository:       sales,
	}, nil)
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestGetProducts(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/products", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Products, 2)
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/products/GHOST-SKU", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetSalesHistory(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/sales/PROT-WH-1KG?days=30", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		SKU           string                    `json:"sku"`
		Sales         []domain.SalesObservation `json:"sales"`
		TotalQuantity int                       `json:"total_quantity"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "PROT-WH-1KG", body.SKU)
	assert.NotEmpty(t, body.Sales)
	assert.Greater(t, body.TotalQuantity, 0)
}

func TestGenerateForecast(t *testing.T) {
	router := newTestRouter(t)

	payload := []byte(`{"sku": "PROT-WH-1KG", "days_ahead": 14}`)
	resp := doRequest(router, http.MethodPost, "/api/v1/forecast", payload)

	require.Equal(t, http.StatusOK, resp.Code)

	var detail service.ForecastDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "PROT-WH-1KG", detail.SKU)
	require.NotNil(t, detail.Forecast)
	assert.Len(t, detail.Forecast.Points, 14)
	assert.NotNil(t, detail.Trend)
}

func TestGenerateForecastRequiresSKU(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/forecast", []byte(`{"days_ahead": 14}`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGenerateForecastUnknownSKU(t *testing.T) {
	router := newTestRouter(t)

	// No history and no catalog entry: the request fails as a bad request,
	// not a server error.
	resp := doRequest(router, http.MethodPost, "/api/v1/forecast", []byte(`{"sku": "GHOST-SKU"}`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetTrend(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/forecast/PROT-WH-1KG/trend", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		SKU   string                `json:"sku"`
		Trend *domain.TrendAnalysis `json:"trend_analysis"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "PROT-WH-1KG", body.SKU)
	require.NotNil(t, body.Trend)
	assert.Contains(t, []string{"increasing", "decreasing"}, body.Trend.Direction)
}

func TestRecordSale(t *testing.T) {
	router := newTestRouter(t)

	payload := []byte(`{"date": "2026-08-29", "quantity": 5, "revenue": 7495}`)
	resp := doRequest(router, http.MethodPost, "/api/v1/sales/PROT-WH-1KG", payload)

	require.Equal(t, http.StatusCreated, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "PROT-WH-1KG", body["sku"])
	assert.Equal(t, "recorded", body["status"])
}

func TestRecordSaleRejectsBadDate(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/sales/PROT-WH-1KG",
		[]byte(`{"date": "29/08/2026", "quantity": 5}`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRecordSaleRejectsNegativeQuantity(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/sales/PROT-WH-1KG",
		[]byte(`{"quantity": -3}`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestInvalidateForecastCache(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodDelete, "/api/v1/forecast/cache", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "invalidated", body["status"])
}

func TestAnalyzeReorders(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/analyze/reorder", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Recommendations []domain.ReorderRecommendation `json:"recommendations"`
		Total           int                            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	// Only the low-stock product needs a reorder.
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "PROT-WH-1KG", body.Recommendations[0].SKU)
	assert.Equal(t, domain.UrgencyCritical, body.Recommendations[0].UrgencyLevel)
}

func TestAnalyzeReordersUnknownSKU(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodPost, "/api/v1/analyze/reorder", []byte(`{"sku": "GHOST-SKU"}`))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetMetrics(t *testing.T) {
	router := newTestRouter(t)

	resp := doRequest(router, http.MethodGet, "/api/v1/analyze/metrics", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var snapshot domain.InventoryHealthSnapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snapshot))
	assert.Equal(t, 2, snapshot.TotalProducts)
	assert.Equal(t, 1, snapshot.ProductsAtRisk)
	assert.Equal(t, 50.0, snapshot.HealthScore)
}
