package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// persistenceModel repeats the last fitted value.
type persistenceModel struct {
	fits   *int
	fitted []float64
}

func (m *persistenceModel) Fit(values []float64) error {
	if m.fits != nil {
		*m.fits++
	}
	m.fitted = append([]float64(nil), values...)
	return nil
}

func (m *persistenceModel) Predict(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		out[i] = m.fitted[len(m.fitted)-1]
	}
	return out, nil
}

type failingModel struct{ err error }

func (m failingModel) Fit([]float64) error            { return m.err }
func (m failingModel) Predict(int) ([]float64, error) { return nil, m.err }

type panickingModel struct{}

func (panickingModel) Fit([]float64) error            { panic("singular matrix") }
func (panickingModel) Predict(int) ([]float64, error) { return nil, nil }

type shortModel struct{}

func (shortModel) Fit([]float64) error              { return nil }
func (shortModel) Predict(n int) ([]float64, error) { return make([]float64, n-1), nil }

func persistence(fits *int) ModelFactory {
	return func(Params) Model { return &persistenceModel{fits: fits} }
}

func scenario() []domain.Observation {
	values := []float64{10, 12, 9, 15, 20, 18, 22, 25, 30, 28, 26, 33, 31, 29}
	start := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Observation, len(values))
	for i, v := range values {
		out[i] = domain.Observation{Day: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func newTestForecaster(factory ModelFactory) *Forecaster {
	return New(factory, 8, observability.NewMetricsForTesting(), discardLogger())
}

func TestForecast_NationalScenario(t *testing.T) {
	f := newTestForecaster(persistence(nil))

	s, err := f.Forecast(context.Background(), "national", scenario(), NationalParams)
	require.NoError(t, err)

	assert.Len(t, s.Observed(), 14)
	pred := s.Predicted()
	require.Len(t, pred, 31)
	assert.Equal(t, time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC), pred[0].Day)
	assert.Equal(t, time.Date(2020, 11, 14, 0, 0, 0, 0, time.UTC), pred[30].Day)
	for _, p := range pred {
		assert.Greater(t, p.Value, 0.0)
		assert.InDelta(t, 29, p.Value, 1e-9)
	}
	assert.Equal(t, NationalParams.String(), s.Model)
}

func TestForecast_DepartmentScaleIsInverted(t *testing.T) {
	f := newTestForecaster(persistence(nil))
	obs := scenario()
	obs[len(obs)-1].Value = 0 // floored to 1 after scaling

	s, err := f.Forecast(context.Background(), "75", obs, DepartmentParams)
	require.NoError(t, err)

	for _, p := range s.Predicted() {
		assert.InDelta(t, 0.01, p.Value, 1e-12)
	}
	assert.Equal(t, 0.0, s.Observed()[13].Value)
}

func TestForecast_UnsortedInputIsOrdered(t *testing.T) {
	f := newTestForecaster(persistence(nil))
	obs := scenario()
	obs[0], obs[13] = obs[13], obs[0]

	s, err := f.Forecast(context.Background(), "national", obs, NationalParams)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC), s.Predicted()[0].Day)
	assert.InDelta(t, 29, s.Predicted()[0].Value, 1e-9)
}

func TestForecast_DropsNonFiniteObservations(t *testing.T) {
	f := newTestForecaster(persistence(nil))
	obs := append(scenario(), domain.Observation{Day: time.Date(2020, 10, 20, 0, 0, 0, 0, time.UTC), Value: math.NaN()})

	s, err := f.Forecast(context.Background(), "national", obs, NationalParams)
	require.NoError(t, err)
	assert.Len(t, s.Observed(), 14)
}

func TestForecast_InsufficientData(t *testing.T) {
	f := newTestForecaster(persistence(nil))

	_, err := f.Forecast(context.Background(), "national", scenario()[:10], NationalParams)
	require.Error(t, err)

	var fe *domain.ForecastError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "national", fe.Series)

	var ie *domain.InsufficientDataError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 10, ie.Have)
	assert.Equal(t, 11, ie.Need)
}

func TestForecast_NonPositiveWithoutFloor(t *testing.T) {
	f := newTestForecaster(persistence(nil))
	obs := scenario()
	obs[3].Value = 0

	_, err := f.Forecast(context.Background(), "national", obs, NationalParams)
	var fe *domain.ForecastError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, errNonPositive)
}

func TestForecast_ModelFailures(t *testing.T) {
	boom := errors.New("did not converge")
	tests := []struct {
		name    string
		factory ModelFactory
		wantErr error
	}{
		{"fit error", func(Params) Model { return failingModel{err: boom} }, boom},
		{"panic", func(Params) Model { return panickingModel{} }, nil},
		{"short prediction", func(Params) Model { return shortModel{} }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestForecaster(tt.factory)
			_, err := f.Forecast(context.Background(), "national", scenario(), NationalParams)

			var fe *domain.ForecastError
			require.ErrorAs(t, err, &fe)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestForecast_InvalidParams(t *testing.T) {
	f := newTestForecaster(persistence(nil))

	_, err := f.Forecast(context.Background(), "national", scenario(), NationalParams.WithHorizon(0))
	var fe *domain.ForecastError
	require.ErrorAs(t, err, &fe)
}

func TestForecast_CanceledContext(t *testing.T) {
	f := newTestForecaster(persistence(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Forecast(ctx, "national", scenario(), NationalParams)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForecast_ResultsAreCached(t *testing.T) {
	var fits int
	f := newTestForecaster(persistence(&fits))
	ctx := context.Background()

	first, err := f.Forecast(ctx, "national", scenario(), NationalParams)
	require.NoError(t, err)
	second, err := f.Forecast(ctx, "national", scenario(), NationalParams)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fits)

	// new data invalidates the entry
	obs := scenario()
	obs[13].Value = 40
	_, err = f.Forecast(ctx, "national", obs, NationalParams)
	require.NoError(t, err)
	assert.Equal(t, 2, fits)

	// a different horizon is a different forecast
	_, err = f.Forecast(ctx, "national", scenario(), NationalParams.WithHorizon(7))
	require.NoError(t, err)
	assert.Equal(t, 3, fits)
}

func TestForecast_SARIMAOnSyntheticSeries(t *testing.T) {
	start := time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]domain.Observation, 70)
	for i := range obs {
		weekly := 1 + 0.3*math.Sin(2*math.Pi*float64(i%7)/7)
		obs[i] = domain.Observation{Day: start.AddDate(0, 0, i), Value: 20 * weekly * math.Exp(0.01*float64(i))}
	}

	f := newTestForecaster(SARIMA)
	p := DepartmentParams.WithHorizon(14)
	s, err := f.Forecast(context.Background(), "synthetic", obs, p)
	require.NoError(t, err)
	assert.Equal(t, p.String(), s.Model)

	pred := s.Predicted()
	require.Len(t, pred, 14)
	for _, p := range pred {
		assert.Greater(t, p.Value, 0.0)
		assert.False(t, math.IsInf(p.Value, 0))
	}
}

func TestForecast_GoarimaOnTwoWeeks(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		model  string
	}{
		{"national", NationalParams, "ARIMA(2,0,2) h=31 scale=1 floor=0"},
		{"department", DepartmentParams, "ARIMA(1,0,2) h=31 scale=100 floor=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestForecaster(SARIMA)

			s, err := f.Forecast(context.Background(), tt.name, scenario(), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.model, s.Model)
			assert.Len(t, s.Observed(), 14)

			pred := s.Predicted()
			require.Len(t, pred, 31)
			assert.Equal(t, time.Date(2020, 10, 15, 0, 0, 0, 0, time.UTC), pred[0].Day)
			assert.Equal(t, time.Date(2020, 11, 14, 0, 0, 0, 0, time.UTC), pred[30].Day)
			for _, p := range pred {
				assert.Greater(t, p.Value, 0.0)
				assert.False(t, math.IsInf(p.Value, 0))
			}
		})
	}
}

func TestGoarimaModel_Errors(t *testing.T) {
	m := SARIMA(NationalParams)
	_, err := m.Predict(3)
	require.Error(t, err)

	require.Error(t, m.Fit(make([]float64, 10)))
}

func TestLogTransform_RoundTrip(t *testing.T) {
	values := []float64{1, 2.5, 9, 31, 1000, 0.004, 123456.789}
	tests := []struct {
		name   string
		params Params
	}{
		{"unscaled", NationalParams},
		{"scaled", DepartmentParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := make([]domain.Observation, len(values))
			for i, v := range values {
				obs[i] = domain.Observation{Day: time.Date(2020, 10, 1+i, 0, 0, 0, 0, time.UTC), Value: v}
			}

			logs, err := logTransform(obs, tt.params)
			require.NoError(t, err)
			require.Len(t, logs, len(values))
			for i, l := range logs {
				got := math.Exp(l) / tt.params.scale()
				assert.InDelta(t, values[i], got, 1e-9*values[i], "value %d", i)
			}
		})
	}
}

func TestObservationsFromTotals(t *testing.T) {
	day := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	got := ObservationsFromTotals([]domain.DailyTotal{{Day: day, Total: 5, Observed: 2}})
	assert.Equal(t, []domain.Observation{{Day: day, Value: 5}}, got)
}
