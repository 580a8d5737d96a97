// internal/service/forecast_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/cache"
	"github.com/andresuchdata/supply-agent-go/internal/config"
	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/andresuchdata/supply-agent-go/internal/forecast"
	"github.com/andresuchdata/supply-agent-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrNoSalesHistory is returned when a SKU has no recorded sales inside the
// history window, so nothing can be forecast.
var ErrNoSalesHistory = errors.New("no sales history available for forecasting")

// ForecastService produces demand forecasts for SKUs from their recorded
// sales history. Results are cached per SKU, horizon and day.
type ForecastService struct {
	sales    repository.SalesRepository
	products repository.ProductRepository
	cache    cache.ForecastCache
	engine   config.EngineConfig
}

// ForecastDetail bundles a forecast with the model diagnostics the seasonal
// model exposes. Trend and accuracy are nil when the fallback model was used.
type ForecastDetail struct {
	SKU      string                 `json:"sku"`
	Forecast *domain.DemandForecast `json:"forecast"`
	Trend    *domain.TrendAnalysis  `json:"trend_analysis,omitempty"`
	Accuracy *domain.AccuracyReport `json:"accuracy_metrics,omitempty"`
}

func NewForecastService(
	sales repository.SalesRepository,
	products repository.ProductRepository,
	cacheImpl cache.ForecastCache,
	engine config.EngineConfig,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		sales:    sales,
		products: products,
		cache:    cacheImpl,
		engine:   engine,
	}
}

// Forecast projects daily demand for a SKU over the given horizon. A
// non-positive horizon falls back to the configured default.
func (s *ForecastService) Forecast(ctx context.Context, sku string, daysAhead int) (*domain.DemandForecast, error) {
	if daysAhead <= 0 {
		daysAhead = s.engine.HorizonDays
	}

	if cached, ok, err := s.cache.Get(ctx, sku, daysAhead); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("forecast cache get failed")
	}

	forecaster, _, err := s.fitForecaster(ctx, sku)
	if err != nil {
		return nil, err
	}

	result, err := forecaster.Forecast(daysAhead)
	if err != nil {
		return nil, fmt.Errorf("forecasting %s failed: %w", sku, err)
	}
	result.SKU = sku

	if err := s.cache.Set(ctx, sku, daysAhead, result); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("forecast cache set failed")
	}

	return result, nil
}

// ForecastDetail returns the forecast together with trend and back-test
// accuracy when the fitted model supports them.
func (s *ForecastService) ForecastDetail(ctx context.Context, sku string, daysAhead int) (*ForecastDetail, error) {
	if daysAhead <= 0 {
		daysAhead = s.engine.HorizonDays
	}

	forecaster, history, err := s.fitForecaster(ctx, sku)
	if err != nil {
		return nil, err
	}

	result, err := forecaster.Forecast(daysAhead)
	if err != nil {
		return nil, fmt.Errorf("forecasting %s failed: %w", sku, err)
	}
	result.SKU = sku

	detail := &ForecastDetail{SKU: sku, Forecast: result}

	if analyzer, ok := forecaster.(forecast.TrendAnalyzer); ok {
		trend, err := analyzer.TrendAnalysis()
		if err != nil {
			return nil, fmt.Errorf("trend analysis for %s failed: %w", sku, err)
		}
		detail.Trend = &trend
	}

	if reporter, ok := forecaster.(forecast.AccuracyReporter); ok {
		accuracy, err := reporter.Accuracy(history)
		if err != nil {
			return nil, fmt.Errorf("accuracy for %s failed: %w", sku, err)
		}
		detail.Accuracy = &accuracy
	}

	return detail, nil
}

// TrendAnalysis reports the fitted trend direction for a SKU, or nil when
// the history only supports the fallback model.
func (s *ForecastService) TrendAnalysis(ctx context.Context, sku string) (*domain.TrendAnalysis, error) {
	forecaster, _, err := s.fitForecaster(ctx, sku)
	if err != nil {
		return nil, err
	}

	analyzer, ok := forecaster.(forecast.TrendAnalyzer)
	if !ok {
		return nil, nil
	}

	trend, err := analyzer.TrendAnalysis()
	if err != nil {
		return nil, fmt.Errorf("trend analysis for %s failed: %w", sku, err)
	}
	return &trend, nil
}

// Accuracy back-tests the fitted model against its own fitting history, or
// returns nil when the fallback model was used.
func (s *ForecastService) Accuracy(ctx context.Context, sku string) (*domain.AccuracyReport, error) {
	forecaster, history, err := s.fitForecaster(ctx, sku)
	if err != nil {
		return nil, err
	}

	reporter, ok := forecaster.(forecast.AccuracyReporter)
	if !ok {
		return nil, nil
	}

	accuracy, err := reporter.Accuracy(history)
	if err != nil {
		return nil, fmt.Errorf("accuracy for %s failed: %w", sku, err)
	}
	return &accuracy, nil
}

// RecordSale appends a sales observation for a SKU and drops its cached
// forecasts so the next projection sees the new data. A zero date records
// the sale as of now.
func (s *ForecastService) RecordSale(ctx context.Context, sku string, obs domain.SalesObservation) error {
	if obs.Quantity < 0 {
		return fmt.Errorf("quantity must be non-negative, got %d", obs.Quantity)
	}
	if obs.Date.IsZero() {
		obs.Date = time.Now()
	}

	if err := s.sales.AddObservation(ctx, sku, obs); err != nil {
		return fmt.Errorf("recording sale for %s failed: %w", sku, err)
	}

	if err := s.cache.InvalidateSKU(ctx, sku); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("forecast cache invalidation failed")
	}

	return nil
}

// InvalidateForecasts drops every cached forecast.
func (s *ForecastService) InvalidateForecasts(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// fitForecaster loads the SKU's history window, selects the appropriate
// model and fits it, returning the fitted model and the history it saw.
func (s *ForecastService) fitForecaster(ctx context.Context, sku string) (forecast.Forecaster, []domain.SalesObservation, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -s.engine.HistoryWindowDays)

	history, err := s.sales.GetHistory(ctx, sku, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("loading history for %s failed: %w", sku, err)
	}
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoSalesHistory, sku)
	}

	category := ""
	if product, err := s.products.GetProduct(ctx, sku); err == nil {
		category = product.Category
	} else if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, nil, fmt.Errorf("loading product %s failed: %w", sku, err)
	}

	forecaster := forecast.Select(history, forecast.Options{
		MinDataPoints:      s.engine.MinDataPoints,
		ConfidenceInterval: s.engine.ConfidenceInterval,
	})
	if err := forecaster.Fit(history, category); err != nil {
		return nil, nil, fmt.Errorf("fitting model for %s failed: %w", sku, err)
	}

	return forecaster, history, nil
}
