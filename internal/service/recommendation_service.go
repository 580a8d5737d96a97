// internal/service/recommendation_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/forecast"
	"github.com/andresuchdata/supply-agent-go/internal/optimizer"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// recommendationHistoryDays is the history window used when forecasting for
// reorder analysis. Shorter than the forecast endpoint's window: reorder
// decisions weigh recent demand.
const recommendationHistoryDays = 90

// RecommendationService runs the reorder analysis across the catalog and
// aggregates fleet-level health metrics.
type RecommendationService struct {
	products repository.ProductRepository
	sales    repository.SalesRepository
	opt      *optimizer.Optimizer
	engine   config.EngineConfig
}

func NewRecommendationService(
	products repository.ProductRepository,
	sales repository.SalesRepository,
	opt *optimizer.Optimizer,
	engine config.EngineConfig,
) *RecommendationService {
	return &RecommendationService{
		products: products,
		sales:    sales,
		opt:      opt,
		engine:   engine,
	}
}

// AnalyzeAll analyzes the given SKU, or the whole catalog when sku is empty,
// and returns recommendations ordered most urgent first. A product whose
// forecast cannot be built is skipped, never fatal for the batch.
func (s *RecommendationService) AnalyzeAll(ctx context.Context, sku string) ([]domain.ReorderRecommendation, error) {
	products, err := s.loadProducts(ctx, sku)
	if err != nil {
		return nil, err
	}

	forecasts := s.buildForecasts(ctx, products)
	return s.opt.BatchAnalyze(ctx, products, forecasts), nil
}

// Metrics computes the inventory health snapshot over all products. It is
// computed fresh on every call.
func (s *RecommendationService) Metrics(ctx context.Context) (domain.InventoryHealthSnapshot, error) {
	products, err := s.loadProducts(ctx, "")
	if err != nil {
		return domain.InventoryHealthSnapshot{}, err
	}

	forecasts := s.buildForecasts(ctx, products)
	return s.opt.InventoryMetrics(products, forecasts), nil
}

func (s *RecommendationService) loadProducts(ctx context.Context, sku string) ([]domain.Product, error) {
	if sku != "" {
		product, err := s.products.GetProduct(ctx, sku)
		if err != nil {
			return nil, err
		}
		return []domain.Product{*product}, nil
	}

	products, err := s.products.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading products failed: %w", err)
	}
	return products, nil
}

// buildForecasts fits and forecasts per product over the analysis horizon.
// Per-product failures are logged and the product is left without a
// forecast; the optimizer skips it downstream.
func (s *RecommendationService) buildForecasts(ctx context.Context, products []domain.Product) map[string]*domain.DemandForecast {
	end := time.Now()
	start := end.AddDate(0, 0, -recommendationHistoryDays)

	skus := make([]string, len(products))
	for i, product := range products {
		skus[i] = product.SKU
	}

	histories, err := s.sales.GetHistoryForSKUs(ctx, skus, start, end)
	if err != nil {
		log.Error().Err(err).Msg("loading sales histories failed")
		return map[string]*domain.DemandForecast{}
	}

	forecasts := make(map[string]*domain.DemandForecast, len(products))
	for _, product := range products {
		history := histories[product.SKU]
		if len(history) == 0 {
			continue
		}

		forecaster := forecast.Select(history, forecast.Options{
			MinDataPoints:      s.engine.MinDataPoints,
			ConfidenceInterval: s.engine.ConfidenceInterval,
		})
		if err := forecaster.Fit(history, product.Category); err != nil {
			log.Warn().Err(err).Str("sku", product.SKU).Msg("model fit failed, skipping product")
			continue
		}

		result, err := forecaster.Forecast(s.engine.HorizonDays)
		if err != nil {
			log.Warn().Err(err).Str("sku", product.SKU).Msg("forecast failed, skipping product")
			continue
		}
		result.SKU = product.SKU
		forecasts[product.SKU] = result
	}

	return forecasts
}
