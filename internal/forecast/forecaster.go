// Package forecast produces short-term seasonal ARIMA forecasts of daily case
// series. Models are fitted on the natural log of the series and predictions
// are mapped back with exp, so forecasts are always positive.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/cache"
	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

// Kind tags a point as observed data or model output.
type Kind string

const (
	KindObserved  Kind = "observed"
	KindPredicted Kind = "predicted"
)

// Point is one day of a forecast series.
type Point struct {
	Day   time.Time `json:"day"`
	Value float64   `json:"value"`
	Kind  Kind      `json:"kind"`
}

// Series is the observed history followed by the predicted days.
type Series struct {
	ID     string  `json:"id"`
	Model  string  `json:"model"`
	Points []Point `json:"points"`
}

// Observed returns the observed points.
func (s Series) Observed() []Point { return s.filter(KindObserved) }

// Predicted returns the predicted points.
func (s Series) Predicted() []Point { return s.filter(KindPredicted) }

func (s Series) filter(k Kind) []Point {
	var out []Point
	for _, p := range s.Points {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// Forecaster fits one model per request and memoizes the results.
type Forecaster struct {
	newModel ModelFactory
	results  *cache.LRU[string, Series]
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Forecaster. A nil factory selects SARIMA.
func New(newModel ModelFactory, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Forecaster {
	if newModel == nil {
		newModel = SARIMA
	}
	return &Forecaster{
		newModel: newModel,
		results:  cache.NewLRU[string, Series](cacheSize),
		metrics:  metrics,
		logger:   logger,
	}
}

// Forecast predicts p.Horizon days following the last observation. Every
// failure is a *domain.ForecastError.
func (f *Forecaster) Forecast(ctx context.Context, id string, obs []domain.Observation, p Params) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, &domain.ForecastError{Series: id, Err: err}
	}
	if err := p.Validate(); err != nil {
		return Series{}, &domain.ForecastError{Series: id, Err: err}
	}

	clean := cleanObservations(obs)
	key := cacheKey(id, p, clean)
	if s, ok := f.results.Get(key); ok {
		f.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return s, nil
	}
	f.metrics.ForecastCache.WithLabelValues("miss").Inc()

	start := time.Now()
	s, err := f.compute(id, clean, p)
	f.metrics.ForecastDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.Forecasts.WithLabelValues("error").Inc()
		f.logger.Warn("forecast failed", "series", id, "model", p.String(), "error", err)
		return Series{}, &domain.ForecastError{Series: id, Err: err}
	}

	f.metrics.Forecasts.WithLabelValues("success").Inc()
	f.logger.Debug("forecast computed", "series", id, "model", p.String(),
		"observations", len(clean), "duration", time.Since(start))
	f.results.Put(key, s)
	return s, nil
}

func (f *Forecaster) compute(id string, obs []domain.Observation, p Params) (Series, error) {
	if need := p.MinObservations(); len(obs) < need {
		return Series{}, &domain.InsufficientDataError{Metric: id, Have: len(obs), Need: need}
	}

	logs, err := logTransform(obs, p)
	if err != nil {
		return Series{}, err
	}

	model := f.newModel(p)
	preds, err := fitAndPredict(model, logs, p.Horizon)
	if err != nil {
		return Series{}, err
	}
	name := p.String()
	if s, ok := model.(fmt.Stringer); ok {
		name = s.String()
	}

	points := make([]Point, 0, len(obs)+len(preds))
	for _, o := range obs {
		points = append(points, Point{Day: o.Day, Value: o.Value, Kind: KindObserved})
	}
	last := obs[len(obs)-1].Day
	for i, lp := range preds {
		v := math.Exp(lp) / p.scale()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Series{}, fmt.Errorf("prediction %d is not finite", i+1)
		}
		points = append(points, Point{Day: last.AddDate(0, 0, i+1), Value: v, Kind: KindPredicted})
	}
	return Series{ID: id, Model: name, Points: points}, nil
}

// fitAndPredict runs the model, converting panics inside the numerical code
// into errors.
func fitAndPredict(m Model, values []float64, horizon int) (preds []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			preds, err = nil, fmt.Errorf("model panicked: %v", r)
		}
	}()

	if err := m.Fit(values); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	preds, err = m.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(preds) != horizon {
		return nil, fmt.Errorf("predict: got %d values, want %d", len(preds), horizon)
	}
	return preds, nil
}

var errNonPositive = errors.New("series contains a non-positive value")

func logTransform(obs []domain.Observation, p Params) ([]float64, error) {
	out := make([]float64, len(obs))
	for i, o := range obs {
		v := o.Value * p.scale()
		if v <= 0 {
			if p.ZeroFloor <= 0 {
				return nil, fmt.Errorf("%w on %s", errNonPositive, o.Day.Format(domain.DayLayout))
			}
			v = p.ZeroFloor
		}
		out[i] = math.Log(v)
	}
	return out, nil
}

// cleanObservations drops non-finite values and orders by day.
func cleanObservations(obs []domain.Observation) []domain.Observation {
	out := make([]domain.Observation, 0, len(obs))
	for _, o := range obs {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) || o.Day.IsZero() {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func cacheKey(id string, p Params, obs []domain.Observation) string {
	h := fnv.New64a()
	for _, o := range obs {
		fmt.Fprintf(h, "%d:%g;", o.Day.Unix(), o.Value)
	}
	return fmt.Sprintf("%s|%s|%x", id, p, h.Sum64())
}

// ObservationsFromTotals adapts aggregated daily totals to forecast input.
func ObservationsFromTotals(totals []domain.DailyTotal) []domain.Observation {
	out := make([]domain.Observation, 0, len(totals))
	for _, t := range totals {
		out = append(out, domain.Observation{Day: t.Day, Value: t.Total})
	}
	return out
}
