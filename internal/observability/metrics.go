package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "opencovid"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Source fetches.
	FetchRequests *prometheus.CounterVec   // labels: source, outcome={success,error,stored}
	FetchDuration *prometheus.HistogramVec // labels: source

	// Dataset cache.
	Loads         *prometheus.CounterVec // labels: outcome={success,error}
	LoadDuration  prometheus.Histogram
	DatasetCache  *prometheus.CounterVec // labels: result={hit,miss,refresh,expired}
	DatasetRows   *prometheus.GaugeVec   // labels: table
	DatasetLoaded prometheus.Gauge

	// Forecasting.
	Forecasts        *prometheus.CounterVec // labels: outcome={success,error}
	ForecastCache    *prometheus.CounterVec // labels: result={hit,miss}
	ForecastDuration prometheus.Histogram

	GeoResolutionErrors *prometheus.CounterVec // labels: table
	SnapshotsPublished  prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.Loads,
		m.LoadDuration,
		m.DatasetCache,
		m.DatasetRows,
		m.DatasetLoaded,
		m.Forecasts,
		m.ForecastCache,
		m.ForecastDuration,
		m.GeoResolutionErrors,
		m.SnapshotsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Source feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single source feed download.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Full dataset loads by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a full fetch, parse and geo join cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Row count of each loaded table.",
		}, []string{"table"}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded",
			Help:      "1 once a dataset is available, 0 otherwise.",
		}),
		Forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecasts_total",
			Help:      "Forecast computations by outcome.",
		}, []string{"outcome"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Duration of a SARIMA fit and predict.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeoResolutionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_resolution_errors_total",
			Help:      "Geo joins aborted because a key had no coordinates.",
		}, []string{"table"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Incidence map snapshots published to Kafka.",
		}),
	}
}
