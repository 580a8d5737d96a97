// internal/forecast/seasonal.go
package forecast

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andresuchdata/supply-agent-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Seasonal component thresholds: a component needs roughly two full periods
// of data before it is identifiable.
const (
	weeklySpanDays  = 14
	monthlySpanDays = 60
	yearlySpanDays  = 730

	monthlyPeriod = 30.44
	yearlyPeriod  = 365.25
)

// SeasonalForecaster fits a multiplicative trend/seasonality model to daily
// sales. Weekly, monthly and yearly components are enabled only when the
// history spans enough days to support them.
type SeasonalForecaster struct {
	confidence float64
	fitted     bool

	origin   time.Time
	spanDays int
	nPoints  int

	intercept float64
	slope     float64

	weekly       bool
	weekdayIndex [7]float64

	monthlyWave harmonic
	yearlyWave  harmonic

	// newYearRush applies a fixed annual demand bump for fitness-style
	// categories. It is a domain assumption, not estimated from data.
	newYearRush bool

	residStd float64
}

// harmonic is a single fitted sine/cosine pair over a given period in days.
type harmonic struct {
	enabled bool
	period  float64
	sin     float64
	cos     float64
}

func (h harmonic) at(t float64) float64 {
	if !h.enabled {
		return 0
	}
	phase := 2 * math.Pi * t / h.period
	return h.sin*math.Sin(phase) + h.cos*math.Cos(phase)
}

// NewSeasonalForecaster creates an unfitted seasonal model with the given
// two-sided confidence interval width (e.g. 0.95).
func NewSeasonalForecaster(confidence float64) *SeasonalForecaster {
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	return &SeasonalForecaster{confidence: confidence}
}

// Fit trains the model on historical sales. Same-day observations are summed
// before fitting. Returns ErrInsufficientData when fewer than 7 distinct sale
// dates are present.
func (f *SeasonalForecaster) Fit(history []domain.SalesObservation, category string) error {
	series := aggregateByDate(history)
	if len(series) < MinSeasonalDates {
		return fmt.Errorf("%w: need at least %d distinct sale dates, got %d",
			ErrInsufficientData, MinSeasonalDates, len(series))
	}

	f.origin = series[0].date
	f.spanDays = int(series[len(series)-1].date.Sub(f.origin).Hours() / 24)
	f.nPoints = len(series)

	f.weekly = f.spanDays >= weeklySpanDays
	f.monthlyWave = harmonic{period: monthlyPeriod}
	f.yearlyWave = harmonic{period: yearlyPeriod}
	f.newYearRush = strings.Contains(strings.ToLower(category), "fitness")

	f.fitTrend(series)

	// Multiplicative decomposition: each component explains the ratio of
	// observed demand to the running trend level.
	ratios := make([]float64, len(series))
	ts := make([]float64, len(series))
	for i, day := range series {
		t := f.dayIndex(day.date)
		ts[i] = t
		ratios[i] = day.qty / math.Max(f.trendAt(t), 1e-9)
	}

	if f.weekly {
		f.fitWeekday(series, ratios)
		for i, day := range series {
			ratios[i] /= f.weekdayIndex[day.date.Weekday()]
		}
	} else {
		for i := range f.weekdayIndex {
			f.weekdayIndex[i] = 1
		}
	}

	if f.spanDays >= monthlySpanDays {
		f.monthlyWave = fitHarmonic(ts, ratios, monthlyPeriod)
	}
	if f.spanDays >= yearlySpanDays {
		residual := make([]float64, len(ratios))
		for i, r := range ratios {
			residual[i] = r / math.Max(1+f.monthlyWave.at(ts[i]), 0.1)
		}
		f.yearlyWave = fitHarmonic(ts, residual, yearlyPeriod)
	}

	f.fitted = true
	f.residStd = f.residualStd(series)

	log.Info().
		Int("data_points", f.nPoints).
		Int("span_days", f.spanDays).
		Bool("weekly", f.weekly).
		Bool("monthly", f.monthlyWave.enabled).
		Bool("yearly", f.yearlyWave.enabled).
		Bool("new_year_rush", f.newYearRush).
		Msg("seasonal model fitted")

	return nil
}

// fitTrend runs least squares over (day index, quantity). The slope is
// shrunk toward zero on short series so a handful of outlier days cannot
// fabricate a trend break.
func (f *SeasonalForecaster) fitTrend(series []dailyTotal) {
	n := float64(len(series))
	var sumT, sumY, sumTT, sumTY float64
	for _, day := range series {
		t := f.dayIndex(day.date)
		sumT += t
		sumY += day.qty
		sumTT += t * t
		sumTY += t * day.qty
	}

	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		f.slope = 0
		f.intercept = sumY / n
		return
	}

	const trendStiffness = 5
	f.slope = (n*sumTY - sumT*sumY) / denom * (n / (n + trendStiffness))
	f.intercept = (sumY - f.slope*sumT) / n
}

// fitWeekday estimates one multiplicative index per weekday from detrended
// ratios, normalized so the observed indices average to 1.
func (f *SeasonalForecaster) fitWeekday(series []dailyTotal, ratios []float64) {
	var sums, counts [7]float64
	for i, day := range series {
		wd := day.date.Weekday()
		sums[wd] += ratios[i]
		counts[wd]++
	}

	var total, observed float64
	for wd := range f.weekdayIndex {
		if counts[wd] > 0 {
			f.weekdayIndex[wd] = sums[wd] / counts[wd]
			total += f.weekdayIndex[wd]
			observed++
		} else {
			f.weekdayIndex[wd] = 1
		}
	}

	if observed == 0 || total == 0 {
		for wd := range f.weekdayIndex {
			f.weekdayIndex[wd] = 1
		}
		return
	}

	mean := total / observed
	for wd := range f.weekdayIndex {
		if counts[wd] > 0 {
			f.weekdayIndex[wd] = math.Max(f.weekdayIndex[wd]/mean, 0.1)
		}
	}
}

// fitHarmonic solves the 2x2 least-squares system for one sine/cosine pair
// against ratio residuals around 1. Amplitudes are capped so a sparse cycle
// cannot dominate the level.
func fitHarmonic(ts, ratios []float64, period float64) harmonic {
	var ss, sc, cc, sy, cy float64
	for i, t := range ts {
		phase := 2 * math.Pi * t / period
		s, c := math.Sin(phase), math.Cos(phase)
		y := ratios[i] - 1
		ss += s * s
		sc += s * c
		cc += c * c
		sy += s * y
		cy += c * y
	}

	det := ss*cc - sc*sc
	if math.Abs(det) < 1e-9 {
		return harmonic{period: period}
	}

	const maxAmplitude = 0.5
	h := harmonic{
		enabled: true,
		period:  period,
		sin:     clampAbs((cc*sy-sc*cy)/det, maxAmplitude),
		cos:     clampAbs((ss*cy-sc*sy)/det, maxAmplitude),
	}
	return h
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func (f *SeasonalForecaster) dayIndex(date time.Time) float64 {
	return date.Sub(f.origin).Hours() / 24
}

func (f *SeasonalForecaster) trendAt(t float64) float64 {
	return f.intercept + f.slope*t
}

// predictAt composes trend and seasonal factors into a continuous-valued
// prediction. Rounding to whole units happens only at the forecast boundary.
func (f *SeasonalForecaster) predictAt(date time.Time) float64 {
	t := f.dayIndex(date)
	value := math.Max(f.trendAt(t), 0)
	value *= f.weekdayIndex[date.Weekday()]
	value *= math.Max(1+f.monthlyWave.at(t), 0.1)
	value *= math.Max(1+f.yearlyWave.at(t), 0.1)
	if f.newYearRush {
		value *= newYearFactor(date)
	}
	return value
}

// newYearFactor is a fixed pre-new-year surge curve peaking mid-January,
// wrapping across the year boundary.
func newYearFactor(date time.Time) float64 {
	const (
		peakDay   = 15.0 // mid-January
		widthDays = 21.0
		amplitude = 0.35
	)

	doy := float64(date.YearDay())
	delta := doy - peakDay
	if delta > yearlyPeriod/2 {
		delta -= yearlyPeriod
	} else if delta < -yearlyPeriod/2 {
		delta += yearlyPeriod
	}

	return 1 + amplitude*math.Exp(-0.5*(delta/widthDays)*(delta/widthDays))
}

func (f *SeasonalForecaster) residualStd(series []dailyTotal) float64 {
	if len(series) < 2 {
		return 0
	}
	var sumSq float64
	for _, day := range series {
		diff := day.qty - f.predictAt(day.date)
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(series)-1))
}

// Forecast projects daily demand for the given horizon starting today. All
// series are clipped to zero and rounded to whole units post-prediction.
func (f *SeasonalForecaster) Forecast(daysAhead int) (*domain.DemandForecast, error) {
	if !f.fitted {
		return nil, ErrModelNotFitted
	}
	if daysAhead <= 0 {
		return nil, fmt.Errorf("days ahead must be positive, got %d", daysAhead)
	}

	margin := zScore(f.confidence) * f.residStd
	start := dateOnly(time.Now())

	points := make([]domain.ForecastPoint, daysAhead)
	for i := 0; i < daysAhead; i++ {
		date := start.AddDate(0, 0, i)
		yhat := f.predictAt(date)
		points[i] = boundedPoint(date, yhat, math.Max(yhat-margin, 0), yhat+margin)
	}

	return &domain.DemandForecast{Points: points}, nil
}

// TrendAnalysis compares the trend component a week out against its value
// today. Direction is increasing only when the future value is strictly
// greater.
func (f *SeasonalForecaster) TrendAnalysis() (domain.TrendAnalysis, error) {
	if !f.fitted {
		return domain.TrendAnalysis{}, ErrModelNotFitted
	}

	tNow := f.dayIndex(dateOnly(time.Now()))
	current := f.trendAt(tNow)
	future := f.trendAt(tNow + 7)

	direction := "decreasing"
	if future > current {
		direction = "increasing"
	}

	strength := 0.0
	if current != 0 {
		strength = math.Abs(future-current) / math.Abs(current) * 100
	}

	return domain.TrendAnalysis{
		Direction:       direction,
		StrengthPercent: round2(strength),
		CurrentValue:    round2(future),
	}, nil
}

// Accuracy back-tests the fitted model against an actual series. MAPE is
// undefined at zero actuals; zero-demand days are excluded from its mean and
// the result is NaN when every actual is zero. RMSE and MAE include all days.
func (f *SeasonalForecaster) Accuracy(actual []domain.SalesObservation) (domain.AccuracyReport, error) {
	if !f.fitted {
		return domain.AccuracyReport{}, ErrModelNotFitted
	}

	series := aggregateByDate(actual)
	if len(series) == 0 {
		return domain.AccuracyReport{}, fmt.Errorf("cannot back-test against an empty series")
	}

	var absPctSum, sqSum, absSum float64
	nonZero := 0
	for _, day := range series {
		pred := f.predictAt(day.date)
		diff := day.qty - pred
		sqSum += diff * diff
		absSum += math.Abs(diff)
		if day.qty != 0 {
			absPctSum += math.Abs(diff / day.qty)
			nonZero++
		}
	}

	n := float64(len(series))
	mape := math.NaN()
	if nonZero > 0 {
		mape = round2(absPctSum / float64(nonZero) * 100)
	}

	return domain.AccuracyReport{
		MAPE: mape,
		RMSE: round2(math.Sqrt(sqSum / n)),
		MAE:  round2(absSum / n),
	}, nil
}

// zScore converts a two-sided confidence interval width into the matching
// standard normal quantile.
func zScore(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// boundedPoint clips, rounds and re-orders a prediction so that
// lower <= predicted <= upper always holds in whole units.
func boundedPoint(date time.Time, yhat, lower, upper float64) domain.ForecastPoint {
	pred := int(math.Round(math.Max(yhat, 0)))
	lb := int(math.Round(math.Max(lower, 0)))
	ub := int(math.Round(math.Max(upper, 0)))

	if lb > pred {
		lb = pred
	}
	if ub < pred {
		ub = pred
	}

	return domain.ForecastPoint{
		Date:            date,
		PredictedDemand: pred,
		LowerBound:      lb,
		UpperBound:      ub,
	}
}
