// internal/domain/models.go
package domain

import "time"

// Product represents a catalog item the engine analyzes. It is owned by the
// inventory store and treated as a read-only value during analysis.
type Product struct {
	SKU                  string    `json:"sku" db:"sku"`
	Name                 string    `json:"name" db:"name"`
	Category             string    `json:"category" db:"category"`
	CurrentStock         int       `json:"current_stock" db:"current_stock"`
	UnitCost             float64   `json:"unit_cost" db:"unit_cost"`
	SellingPrice         float64   `json:"selling_price" db:"selling_price"`
	SupplierLeadTimeDays int       `json:"supplier_lead_time_days" db:"supplier_lead_time_days"`
	MinOrderQuantity     int       `json:"min_order_quantity" db:"min_order_quantity"`
	LastUpdated          time.Time `json:"last_updated" db:"last_updated"`
}

// SalesObservation is a single day's recorded sales for a product. Multiple
// rows for the same date are legal and are summed before modeling.
type SalesObservation struct {
	Date     time.Time `json:"date" db:"date"`
	Quantity int       `json:"quantity" db:"quantity"`
	Revenue  float64   `json:"revenue" db:"revenue"`
}

// ForecastPoint is one day of a demand forecast. Values are whole units with
// LowerBound <= PredictedDemand <= UpperBound, all non-negative.
type ForecastPoint struct {
	Date            time.Time `json:"date"`
	PredictedDemand int       `json:"predicted_demand"`
	LowerBound      int       `json:"lower_bound"`
	UpperBound      int       `json:"upper_bound"`
}

// DemandForecast is a contiguous daily projection starting today.
type DemandForecast struct {
	SKU    string          `json:"sku"`
	Points []ForecastPoint `json:"points"`
}

// AverageDemand returns the mean predicted demand across the horizon,
// or 0 for an empty forecast.
func (f *DemandForecast) AverageDemand() float64 {
	if len(f.Points) == 0 {
		return 0
	}
	total := 0
	for _, p := range f.Points {
		total += p.PredictedDemand
	}
	return float64(total) / float64(len(f.Points))
}

// DemandOverDays sums predicted demand over the first n days of the horizon.
func (f *DemandForecast) DemandOverDays(n int) int {
	if n > len(f.Points) {
		n = len(f.Points)
	}
	total := 0
	for _, p := range f.Points[:n] {
		total += p.PredictedDemand
	}
	return total
}

// TrendAnalysis describes the direction of the fitted trend component over
// the next week.
type TrendAnalysis struct {
	Direction       string  `json:"direction"`
	StrengthPercent float64 `json:"strength_percent"`
	CurrentValue    float64 `json:"current_trend_value"`
}

// AccuracyReport holds back-test metrics for a fitted model. MAPE is NaN
// when every actual observation is zero.
type AccuracyReport struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// ReorderRecommendation is the engine's output for one product that needs
// ordering. Stockout fields are nil when the forecast horizon never exhausts
// current stock.
type ReorderRecommendation struct {
	SKU                   string     `json:"sku"`
	ProductName           string     `json:"product_name"`
	CurrentStock          int        `json:"current_stock"`
	ReorderPoint          int        `json:"reorder_point"`
	RecommendedQuantity   int        `json:"recommended_quantity"`
	EstimatedStockoutDate *time.Time `json:"estimated_stockout_date,omitempty"`
	DaysUntilStockout     *int       `json:"days_until_stockout,omitempty"`
	UrgencyLevel          Urgency    `json:"urgency_level"`
	ExpectedDemand7Days   int        `json:"expected_demand_7days"`
	ExpectedDemand30Days  int        `json:"expected_demand_30days"`
	SafetyStock           int        `json:"safety_stock"`
	TotalCost             float64    `json:"total_cost"`
	Reason                string     `json:"reason"`
}

// InventoryHealthSnapshot aggregates stockout risk across all analyzed
// products. HealthScore is 0 when no products exist.
type InventoryHealthSnapshot struct {
	TotalInventoryValue float64 `json:"total_inventory_value"`
	TotalUnits          int     `json:"total_units"`
	ProductsAtRisk      int     `json:"products_at_risk"`
	ProductsLowStock    int     `json:"products_low_stock"`
	TotalProducts       int     `json:"total_products"`
	HealthScore         float64 `json:"health_score"`
}
