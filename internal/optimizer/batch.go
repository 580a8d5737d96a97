// internal/optimizer/batch.go
package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// unknownDaysSentinel sorts time-unknown items after time-known items within
// the same urgency tier.
const unknownDaysSentinel = math.MaxInt32

const maxConcurrentAnalyses = 8

// BatchAnalyze analyzes every product that has a forecast and returns the
// recommendations ordered most urgent first. Products without a forecast are
// skipped with a warning; per-product analyses run in parallel and are
// independent of one another.
func (o *Optimizer) BatchAnalyze(ctx context.Context, products []domain.Product, forecasts map[string]*domain.DemandForecast) []domain.ReorderRecommendation {
	results := make([]*domain.ReorderRecommendation, len(products))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)

	for i, product := range products {
		forecast, ok := forecasts[product.SKU]
		if !ok || forecast == nil {
			log.Warn().Str("sku", product.SKU).Msg("no forecast available, skipping")
			continue
		}

		i, product := i, product
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			results[i] = o.AnalyzeProduct(product, forecast)
			return nil
		})
	}

	// Analyses never propagate errors; a bad product must not abort the rest.
	_ = g.Wait()

	recommendations := make([]domain.ReorderRecommendation, 0, len(products))
	for _, rec := range results {
		if rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}

	sortRecommendations(recommendations)
	return recommendations
}

// sortRecommendations orders by urgency severity, tie-broken by days until
// stockout ascending. Downstream consumers rely on this ordering.
func sortRecommendations(recs []domain.ReorderRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].UrgencyLevel.Rank(), recs[j].UrgencyLevel.Rank()
		if ri != rj {
			return ri < rj
		}
		return stockoutDays(recs[i]) < stockoutDays(recs[j])
	})
}

func stockoutDays(rec domain.ReorderRecommendation) int {
	if rec.DaysUntilStockout == nil {
		return unknownDaysSentinel
	}
	return *rec.DaysUntilStockout
}

// InventoryMetrics computes a fleet-wide health snapshot. A product is at
// risk with <=7 days of forecast cover, low stock with <=14. The aggregate
// uses only raw stock and cost fields, so a failed per-product analysis
// cannot corrupt it. No products means a health score of 0, not 100.
func (o *Optimizer) InventoryMetrics(products []domain.Product, forecasts map[string]*domain.DemandForecast) domain.InventoryHealthSnapshot {
	snapshot := domain.InventoryHealthSnapshot{TotalProducts: len(products)}

	for _, product := range products {
		snapshot.TotalInventoryValue += float64(product.CurrentStock) * product.UnitCost
		snapshot.TotalUnits += product.CurrentStock

		forecast, ok := forecasts[product.SKU]
		if !ok || forecast == nil {
			continue
		}

		avgDemand := forecast.AverageDemand()
		if avgDemand <= 0 {
			continue
		}

		daysOfCover := float64(product.CurrentStock) / avgDemand
		switch {
		case daysOfCover <= 7:
			snapshot.ProductsAtRisk++
		case daysOfCover <= 14:
			snapshot.ProductsLowStock++
		}
	}

	snapshot.TotalInventoryValue = math.Round(snapshot.TotalInventoryValue*100) / 100
	if snapshot.TotalProducts > 0 {
		atRiskRatio := float64(snapshot.ProductsAtRisk) / float64(snapshot.TotalProducts)
		snapshot.HealthScore = math.Round((1-atRiskRatio)*1000) / 10
	}

	return snapshot
}
