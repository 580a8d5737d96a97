// internal/optimizer/optimizer.go
package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// serviceZScore is the one-sided z-score for a ~95% service level.
	serviceZScore = 1.65

	// reviewPeriodDays extends lead-time demand coverage until the next
	// realistic reorder decision.
	reviewPeriodDays = 7

	defaultSafetyFactor = 1.5
	defaultBatchSize    = 50
)

// Optimizer computes reorder points, quantities and urgency from a product's
// attributes and its demand forecast. It is stateless across calls; distinct
// products can be analyzed concurrently without synchronization.
type Optimizer struct {
	safetyFactor float64
	batchSize    int
}

// NewOptimizer creates an optimizer with the given safety-stock multiplier
// and order batch size. Non-positive arguments fall back to defaults.
func NewOptimizer(safetyFactor float64, batchSize int) *Optimizer {
	if safetyFactor <= 0 {
		safetyFactor = defaultSafetyFactor
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Optimizer{safetyFactor: safetyFactor, batchSize: batchSize}
}

// SafetyStock buffers demand variability over the lead-time window. A zero
// observed deviation substitutes 20% of the mean: a genuinely constant series
// still gets a non-zero buffer.
func (o *Optimizer) SafetyStock(avgDailyDemand float64, leadTimeDays int, demandStdDev float64) int {
	if demandStdDev == 0 {
		demandStdDev = avgDailyDemand * 0.2
	}

	stock := serviceZScore * demandStdDev * math.Sqrt(float64(leadTimeDays))
	return int(math.Ceil(stock * o.safetyFactor))
}

// ReorderPoint is the stock level at which a new order must be placed:
// expected lead-time demand plus safety stock.
func (o *Optimizer) ReorderPoint(avgDailyDemand float64, leadTimeDays int, safetyStock int) int {
	return int(math.Ceil(avgDailyDemand*float64(leadTimeDays) + float64(safetyStock)))
}

// EconomicOrderQuantity is the classic EOQ formula. It is an auxiliary API:
// the recommendation path sizes orders from forecast demand instead. A zero
// holding cost defaults to 10% of unit cost.
func (o *Optimizer) EconomicOrderQuantity(annualDemand, orderingCost, holdingCost float64) int {
	if holdingCost == 0 {
		holdingCost = 0.1
	}

	eoq := math.Sqrt(2 * annualDemand * orderingCost / holdingCost)
	return int(math.Ceil(eoq))
}

// EstimateStockout walks the forecast accumulating predicted demand and
// returns the first day the cumulative sum reaches current stock. Both
// returns are nil when the horizon never exhausts the stock; a stockout
// beyond the horizon is never guessed.
func (o *Optimizer) EstimateStockout(currentStock int, forecast *domain.DemandForecast) (*time.Time, *int) {
	today := dateOnly(time.Now())
	if currentStock <= 0 {
		zero := 0
		return &today, &zero
	}

	cumulative := 0
	for _, point := range forecast.Points {
		cumulative += point.PredictedDemand
		if cumulative >= currentStock {
			date := point.Date
			days := int(date.Sub(today).Hours() / 24)
			if days < 0 {
				days = 0
			}
			return &date, &days
		}
	}

	return nil, nil
}

// DetermineUrgency classifies reorder priority. An imminent-stockout signal
// always dominates the stock-ratio signal: time-to-stockout is the more
// actionable number.
func (o *Optimizer) DetermineUrgency(daysUntilStockout *int, currentStock, reorderPoint int) domain.Urgency {
	if currentStock == 0 {
		return domain.UrgencyCritical
	}

	if daysUntilStockout != nil {
		switch {
		case *daysUntilStockout <= 3:
			return domain.UrgencyCritical
		case *daysUntilStockout <= 7:
			return domain.UrgencyHigh
		case *daysUntilStockout <= 14:
			return domain.UrgencyMedium
		}
	}

	if float64(currentStock) < float64(reorderPoint)*0.5 {
		return domain.UrgencyHigh
	}
	if currentStock < reorderPoint {
		return domain.UrgencyMedium
	}

	return domain.UrgencyLow
}

// ReorderQuantity covers forecast demand over lead time plus a one-week
// review buffer, floored at the minimum order quantity and rounded up to the
// batch size so the result is always a batch multiple.
func (o *Optimizer) ReorderQuantity(forecast *domain.DemandForecast, currentStock, reorderPoint, minOrderQty, leadTimeDays int) int {
	periodDemand := forecast.DemandOverDays(leadTimeDays + reviewPeriodDays)

	qty := periodDemand - currentStock + reorderPoint
	if qty < minOrderQty {
		qty = minOrderQty
	}

	return o.roundToBatch(qty)
}

func (o *Optimizer) roundToBatch(qty int) int {
	if qty <= 0 {
		return o.batchSize
	}
	batches := (qty + o.batchSize - 1) / o.batchSize
	return batches * o.batchSize
}

// AnalyzeProduct generates a reorder recommendation for one product, or nil
// when no reorder trigger holds. A forecast with zero average demand means
// there is nothing to reorder for; that is absence, not an error.
func (o *Optimizer) AnalyzeProduct(product domain.Product, forecast *domain.DemandForecast) *domain.ReorderRecommendation {
	avgDailyDemand := forecast.AverageDemand()
	if avgDailyDemand == 0 {
		log.Warn().Str("sku", product.SKU).Msg("no demand forecasted, skipping")
		return nil
	}

	demandStdDev := forecastStdDev(forecast)

	safetyStock := o.SafetyStock(avgDailyDemand, product.SupplierLeadTimeDays, demandStdDev)
	reorderPoint := o.ReorderPoint(avgDailyDemand, product.SupplierLeadTimeDays, safetyStock)
	stockoutDate, daysUntil := o.EstimateStockout(product.CurrentStock, forecast)
	urgency := o.DetermineUrgency(daysUntil, product.CurrentStock, reorderPoint)

	needsReorder := product.CurrentStock < reorderPoint ||
		(daysUntil != nil && *daysUntil <= 14)
	if !needsReorder {
		return nil
	}

	quantity := o.ReorderQuantity(
		forecast,
		product.CurrentStock,
		reorderPoint,
		product.MinOrderQuantity,
		product.SupplierLeadTimeDays,
	)

	return &domain.ReorderRecommendation{
		SKU:                   product.SKU,
		ProductName:           product.Name,
		CurrentStock:          product.CurrentStock,
		ReorderPoint:          reorderPoint,
		RecommendedQuantity:   quantity,
		EstimatedStockoutDate: stockoutDate,
		DaysUntilStockout:     daysUntil,
		UrgencyLevel:          urgency,
		ExpectedDemand7Days:   forecast.DemandOverDays(7),
		ExpectedDemand30Days:  forecast.DemandOverDays(30),
		SafetyStock:           safetyStock,
		TotalCost:             float64(quantity) * product.UnitCost,
		Reason:                buildReason(product.CurrentStock, reorderPoint, daysUntil, stockoutDate),
	}
}

// buildReason picks the highest-priority explanation that applies.
func buildReason(currentStock, reorderPoint int, daysUntil *int, stockoutDate *time.Time) string {
	if currentStock == 0 {
		return "out of stock - immediate reorder required"
	}

	if daysUntil != nil && *daysUntil <= 7 {
		return fmt.Sprintf("stockout predicted on %s (%d days)",
			stockoutDate.Format("2006-01-02"), *daysUntil)
	}

	if float64(currentStock) < float64(reorderPoint)*0.5 {
		return fmt.Sprintf("current stock (%d) critically below reorder point (%d)",
			currentStock, reorderPoint)
	}

	if currentStock < reorderPoint {
		return fmt.Sprintf("stock level (%d) below reorder point (%d)",
			currentStock, reorderPoint)
	}

	return "preventive reorder based on demand forecast"
}

// forecastStdDev is the sample standard deviation of predicted demand.
func forecastStdDev(forecast *domain.DemandForecast) float64 {
	n := len(forecast.Points)
	if n < 2 {
		return 0
	}

	mean := forecast.AverageDemand()
	var sumSq float64
	for _, point := range forecast.Points {
		diff := float64(point.PredictedDemand) - mean
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(n-1))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
