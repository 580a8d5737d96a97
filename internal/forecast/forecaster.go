// internal/forecast/forecaster.go
package forecast

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInsufficientData is returned when the seasonal model is fitted on
	// fewer than MinSeasonalDates distinct sale dates.
	ErrInsufficientData = errors.New("insufficient sales history for seasonal model")

	// ErrModelNotFitted is returned when a forecast, trend or accuracy
	// computation is requested before Fit.
	ErrModelNotFitted = errors.New("model must be fitted before forecasting")
)

// MinSeasonalDates is the hard floor of distinct sale dates below which no
// seasonal structure can be estimated.
const MinSeasonalDates = 7

// Forecaster is the capability contract shared by the seasonal model and the
// weighted-average fallback.
type Forecaster interface {
	Fit(history []domain.SalesObservation, category string) error
	Forecast(daysAhead int) (*domain.DemandForecast, error)
}

// TrendAnalyzer is implemented by models that expose a fitted trend component.
type TrendAnalyzer interface {
	TrendAnalysis() (domain.TrendAnalysis, error)
}

// AccuracyReporter is implemented by models that can back-test themselves
// against an actual series.
type AccuracyReporter interface {
	Accuracy(actual []domain.SalesObservation) (domain.AccuracyReport, error)
}

// Options parameterizes forecaster selection and fitting. The zero value is
// usable; unset fields fall back to defaults.
type Options struct {
	// MinDataPoints is the number of distinct sale dates required to use
	// the seasonal model. Default 14.
	MinDataPoints int

	// ConfidenceInterval is the two-sided interval width for seasonal
	// bounds. Default 0.95.
	ConfidenceInterval float64

	// Rand seeds the fallback model's per-day noise. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.MinDataPoints <= 0 {
		o.MinDataPoints = 14
	}
	if o.ConfidenceInterval <= 0 || o.ConfidenceInterval >= 1 {
		o.ConfidenceInterval = 0.95
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Select chooses a forecaster for the given history: the seasonal model when
// enough distinct sale dates exist, the weighted-average fallback otherwise.
// Selection is a pure function of history size, not of runtime types.
func Select(history []domain.SalesObservation, opts Options) Forecaster {
	opts = opts.withDefaults()

	points := DistinctDates(history)
	if points >= opts.MinDataPoints {
		return NewSeasonalForecaster(opts.ConfidenceInterval)
	}

	log.Warn().
		Int("distinct_dates", points).
		Int("required", opts.MinDataPoints).
		Msg("insufficient data, falling back to weighted average model")

	return NewAverageForecaster(opts.Rand)
}

// DistinctDates counts the unique calendar days present in a sales history.
func DistinctDates(history []domain.SalesObservation) int {
	seen := make(map[time.Time]struct{}, len(history))
	for _, obs := range history {
		seen[dateOnly(obs.Date)] = struct{}{}
	}
	return len(seen)
}

// dailyTotal is one aggregated day of history used during fitting.
type dailyTotal struct {
	date time.Time
	qty  float64
}

// aggregateByDate sums same-day observations and returns the series ordered
// by date ascending. Gap days are absent, never zero-filled.
func aggregateByDate(history []domain.SalesObservation) []dailyTotal {
	byDate := make(map[time.Time]float64, len(history))
	for _, obs := range history {
		byDate[dateOnly(obs.Date)] += float64(obs.Quantity)
	}

	series := make([]dailyTotal, 0, len(byDate))
	for date, qty := range byDate {
		series = append(series, dailyTotal{date: date, qty: qty})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].date.Before(series[j].date)
	})

	return series
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
