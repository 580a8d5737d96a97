// internal/forecast/average.go
package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
)

// AverageForecaster is the degraded mode for products with sparse history.
// It projects a flat exponentially-weighted average and deliberately models
// neither trend nor seasonality.
type AverageForecaster struct {
	rng       *rand.Rand
	avgDemand float64
	fitted    bool
}

// NewAverageForecaster creates the fallback model. rng drives the per-day
// forecast noise; pass a seeded source for deterministic output.
func NewAverageForecaster(rng *rand.Rand) *AverageForecaster {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AverageForecaster{rng: rng}
}

// Fit computes an exponentially-weighted average of daily sales, weighting
// recent days higher. An empty history fits to zero demand.
func (f *AverageForecaster) Fit(history []domain.SalesObservation, _ string) error {
	series := aggregateByDate(history)
	f.fitted = true

	if len(series) == 0 {
		f.avgDemand = 0
		return nil
	}

	// Weights follow exp(-1)..exp(0) across the series, oldest to newest,
	// normalized to sum to 1.
	n := len(series)
	var weightSum, weighted float64
	for i, day := range series {
		pos := 0.0
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		w := math.Exp(pos - 1)
		weightSum += w
		weighted += w * day.qty
	}

	f.avgDemand = weighted / weightSum
	return nil
}

// AverageDemand returns the fitted weighted average.
func (f *AverageForecaster) AverageDemand() float64 {
	return f.avgDemand
}

// Forecast projects a flat horizon at the weighted average with independent
// per-day noise, so downstream consumers still see day-to-day variance.
// Bounds are +/-20% of the central estimate.
func (f *AverageForecaster) Forecast(daysAhead int) (*domain.DemandForecast, error) {
	if !f.fitted {
		return nil, ErrModelNotFitted
	}
	if daysAhead <= 0 {
		return nil, fmt.Errorf("days ahead must be positive, got %d", daysAhead)
	}

	std := f.avgDemand * 0.2
	start := dateOnly(time.Now())

	points := make([]domain.ForecastPoint, daysAhead)
	for i := 0; i < daysAhead; i++ {
		value := math.Max(f.avgDemand+f.rng.NormFloat64()*std, 0)
		points[i] = boundedPoint(start.AddDate(0, 0, i), value, value*0.8, value*1.2)
	}

	return &domain.DemandForecast{Points: points}, nil
}
