// internal/forecast/average_test.go
package forecast

import (
	"math/rand"
	"testing"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageFitWeightsRecentDaysHigher(t *testing.T) {
	// Old demand 2/day, recent demand 10/day. The weighted average must land
	// above the plain mean of 6.
	quantities := append(flatQuantities(5, 2), flatQuantities(5, 10)...)

	forecaster := NewAverageForecaster(rand.New(rand.NewSource(1)))
	require.NoError(t, forecaster.Fit(dailyHistory(quantities), ""))

	avg := forecaster.AverageDemand()
	assert.Greater(t, avg, 6.0)
	assert.Less(t, avg, 10.0)
}

func TestAverageFitEmptyHistoryForecastsZero(t *testing.T) {
	forecaster := NewAverageForecaster(rand.New(rand.NewSource(1)))
	require.NoError(t, forecaster.Fit(nil, ""))
	assert.Equal(t, 0.0, forecaster.AverageDemand())

	result, err := forecaster.Forecast(10)
	require.NoError(t, err)
	require.Len(t, result.Points, 10)
	for _, point := range result.Points {
		assert.Equal(t, 0, point.PredictedDemand)
		assert.Equal(t, 0, point.LowerBound)
		assert.Equal(t, 0, point.UpperBound)
	}
}

func TestAverageForecastBeforeFit(t *testing.T) {
	forecaster := NewAverageForecaster(rand.New(rand.NewSource(1)))

	_, err := forecaster.Forecast(10)
	assert.ErrorIs(t, err, ErrModelNotFitted)
}

func TestAverageForecastBoundsOrdered(t *testing.T) {
	forecaster := NewAverageForecaster(rand.New(rand.NewSource(7)))
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(10, 12)), ""))

	result, err := forecaster.Forecast(30)
	require.NoError(t, err)
	require.Len(t, result.Points, 30)

	for i, point := range result.Points {
		assert.GreaterOrEqual(t, point.LowerBound, 0, "day %d", i)
		assert.LessOrEqual(t, point.LowerBound, point.PredictedDemand, "day %d", i)
		assert.LessOrEqual(t, point.PredictedDemand, point.UpperBound, "day %d", i)
	}
}

func TestAverageForecastDeterministicWithSeededRand(t *testing.T) {
	history := dailyHistory(flatQuantities(10, 8))

	a := NewAverageForecaster(rand.New(rand.NewSource(42)))
	require.NoError(t, a.Fit(history, ""))
	first, err := a.Forecast(14)
	require.NoError(t, err)

	b := NewAverageForecaster(rand.New(rand.NewSource(42)))
	require.NoError(t, b.Fit(history, ""))
	second, err := b.Forecast(14)
	require.NoError(t, err)

	assert.Equal(t, first.Points, second.Points)
}

func TestAverageForecastRoundTripPreservesLevel(t *testing.T) {
	forecaster := NewAverageForecaster(rand.New(rand.NewSource(3)))
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(20, 10)), ""))
	assert.InDelta(t, 10, forecaster.AverageDemand(), 1e-9)

	result, err := forecaster.Forecast(30)
	require.NoError(t, err)

	// Feeding the forecast back as history should recover roughly the same
	// demand level despite the per-day noise.
	refitHistory := make([]domain.SalesObservation, len(result.Points))
	for i, point := range result.Points {
		refitHistory[i] = domain.SalesObservation{
			Date:     point.Date,
			Quantity: point.PredictedDemand,
		}
	}

	refit := NewAverageForecaster(rand.New(rand.NewSource(4)))
	require.NoError(t, refit.Fit(refitHistory, ""))
	assert.InDelta(t, 10, refit.AverageDemand(), 3)
}

func TestAverageForecastRejectsNonPositiveHorizon(t *testing.T) {
	forecaster := NewAverageForecaster(rand.New(rand.NewSource(1)))
	require.NoError(t, forecaster.Fit(dailyHistory(flatQuantities(5, 4)), ""))

	_, err := forecaster.Forecast(-1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelNotFitted)
}
