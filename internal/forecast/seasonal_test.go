// internal/forecast/seasonal_test.go
package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonalFitRejectsSparseHistory(t *testing.T) {
	// 12 rows but only 6 distinct dates.
	history := dailyHistory(flatQuantities(6, 4))
	history = append(history, dailyHistory(flatQuantities(6, 2))...)

	err := NewSeasonalForecaster(0.95).Fit(history, "")

	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestSeasonalFitSucceedsAtMinimumDates(t *testing.T) {
	history := dailyHistory([]int{4, 6, 5, 7, 5, 6, 4})

	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(history, ""))

	result, err := forecaster.Forecast(7)
	require.NoError(t, err)
	assert.Len(t, result.Points, 7)
}

func TestSeasonalForecastBeforeFit(t *testing.T) {
	forecaster := NewSeasonalForecaster(0.95)

	_, err := forecaster.Forecast(30)
	assert.ErrorIs(t, err, ErrModelNotFitted)

	_, err = forecaster.TrendAnalysis()
	assert.ErrorIs(t, err, ErrModelNotFitted)

	_, err = forecaster.Accuracy(dailyHistory(flatQuantities(7, 3)))
	assert.ErrorIs(t, err, ErrModelNotFitted)
}

func TestSeasonalForecastRejectsNonPositiveHorizon(t *testing.T) {
	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(30, 5)), ""))

	_, err := forecaster.Forecast(0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFitted)
}

func TestSeasonalForecastBoundsOrdered(t *testing.T) {
	// Noisy-ish weekly pattern over 60 days.
	quantities := make([]int, 60)
	for i := range quantities {
		quantities[i] = 8 + (i % 7) + (i%3)*2
	}

	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(dailyHistory(quantities), ""))

	result, err := forecaster.Forecast(30)
	require.NoError(t, err)
	require.Len(t, result.Points, 30)

	for i, point := range result.Points {
		assert.GreaterOrEqual(t, point.LowerBound, 0, "day %d", i)
		assert.LessOrEqual(t, point.LowerBound, point.PredictedDemand, "day %d", i)
		assert.LessOrEqual(t, point.PredictedDemand, point.UpperBound, "day %d", i)

		if i > 0 {
			gap := point.Date.Sub(result.Points[i-1].Date)
			assert.Equal(t, 24*time.Hour, gap, "day %d", i)
		}
	}
}

func TestSeasonalTrendDirection(t *testing.T) {
	increasing := make([]int, 40)
	decreasing := make([]int, 40)
	for i := range increasing {
		increasing[i] = 5 + i
		decreasing[i] = 100 - 2*i
	}

	up := NewSeasonalForecaster(0.95)
	require.NoError(t, up.Fit(dailyHistory(increasing), ""))
	trend, err := up.TrendAnalysis()
	require.NoError(t, err)
	assert.Equal(t, "increasing", trend.Direction)
	assert.Greater(t, trend.StrengthPercent, 0.0)

	down := NewSeasonalForecaster(0.95)
	require.NoError(t, down.Fit(dailyHistory(decreasing), ""))
	trend, err = down.TrendAnalysis()
	require.NoError(t, err)
	assert.Equal(t, "decreasing", trend.Direction)
}

func TestSeasonalFlatSeriesHasNoTrend(t *testing.T) {
	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(30, 6)), ""))

	trend, err := forecaster.TrendAnalysis()
	require.NoError(t, err)

	assert.InDelta(t, 0, trend.StrengthPercent, 0.01)
	assert.InDelta(t, 6, trend.CurrentValue, 0.5)
}

func TestSeasonalAccuracyExcludesZeroActualsFromMAPE(t *testing.T) {
	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(20, 5)), ""))

	allZero := dailyHistory(flatQuantities(7, 0))
	report, err := forecaster.Accuracy(allZero)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(report.MAPE))
	assert.Greater(t, report.RMSE, 0.0)
	assert.Greater(t, report.MAE, 0.0)

	mixed := dailyHistory([]int{0, 5, 0, 6, 4, 0, 5})
	report, err = forecaster.Accuracy(mixed)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(report.MAPE))
	assert.GreaterOrEqual(t, report.MAPE, 0.0)
}

func TestSeasonalAccuracyRejectsEmptySeries(t *testing.T) {
	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(20, 5)), ""))

	_, err := forecaster.Accuracy(nil)
	require.Error(t, err)
}

func TestSeasonalSelfAccuracyOnFlatSeries(t *testing.T) {
	history := dailyHistory(flatQuantities(30, 10))

	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(history, ""))

	report, err := forecaster.Accuracy(history)
	require.NoError(t, err)

	// Back-testing against the fitting data of a constant series should be
	// near-perfect.
	assert.Less(t, report.MAPE, 5.0)
	assert.Less(t, report.RMSE, 1.0)
}

func TestNewYearFactorAppliesToFitnessCategories(t *testing.T) {
	history := dailyHistory(flatQuantities(30, 10))

	fitness := NewSeasonalForecaster(0.95)
	require.NoError(t, fitness.Fit(history, "Fitness Equipment"))
	assert.True(t, fitness.newYearRush)

	plain := NewSeasonalForecaster(0.95)
	require.NoError(t, plain.Fit(history, "snacks"))
	assert.False(t, plain.newYearRush)
}

func TestNewYearFactorPeaksMidJanuary(t *testing.T) {
	peak := newYearFactor(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	july := newYearFactor(time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	lateDec := newYearFactor(time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC))

	assert.InDelta(t, 1.35, peak, 0.001)
	assert.InDelta(t, 1.0, july, 0.001)

	// The surge wraps across the year boundary.
	assert.Greater(t, lateDec, 1.1)
}

func TestZScoreMatchesNormalQuantiles(t *testing.T) {
	assert.InDelta(t, 1.96, zScore(0.95), 0.01)
	assert.InDelta(t, 1.645, zScore(0.90), 0.01)
}

func TestBoundedPointReordersAfterRounding(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	point := boundedPoint(day, 2.4, -3, 2.1)
	assert.Equal(t, 2, point.PredictedDemand)
	assert.Equal(t, 0, point.LowerBound)
	assert.Equal(t, 2, point.UpperBound)

	point = boundedPoint(day, -1, -2, -0.5)
	assert.Equal(t, 0, point.PredictedDemand)
	assert.Equal(t, 0, point.LowerBound)
	assert.Equal(t, 0, point.UpperBound)
}

func TestSeasonalFitSumsSameDayObservations(t *testing.T) {
	// Split each day's demand across two rows; the fitted level should match
	// the combined series, not the per-row one.
	var history []domain.SalesObservation
	start := time.Now().AddDate(0, 0, -20)
	for i := 0; i < 20; i++ {
		date := start.AddDate(0, 0, i)
		history = append(history,
			domain.SalesObservation{Date: date, Quantity: 6},
			domain.SalesObservation{Date: date, Quantity: 4},
		)
	}

	forecaster := NewSeasonalForecaster(0.95)
	require.NoError(t, forecaster.Fit(history, ""))

	result, err := forecaster.Forecast(7)
	require.NoError(t, err)

	total := 0
	for _, point := range result.Points {
		total += point.PredictedDemand
	}
	avg := float64(total) / 7

	assert.InDelta(t, 10, avg, 2)
}
