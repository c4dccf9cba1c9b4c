package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default open-data endpoints for the four published feeds.
const (
	DefaultNationalURL            = "https://github.com/opencovid19-fr/data/raw/master/dist/chiffres-cles.csv"
	DefaultDepartmentTestsURL     = "https://www.data.gouv.fr/fr/datasets/r/406c6a23-e283-4300-9484-54e78c8ae675"
	DefaultNationalIncidenceURL   = "https://www.data.gouv.fr/fr/datasets/r/cbd6477e-bda6-485d-afdc-8e61b904d771"
	DefaultDepartmentIncidenceURL = "https://www.data.gouv.fr/fr/datasets/r/3c18e242-7d45-44f2-ac70-dee78a38ee1c"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Source feeds. Any URL accepted by the fetcher, including file:// paths.
	NationalURL            string
	DepartmentTestsURL     string
	NationalIncidenceURL   string
	DepartmentIncidenceURL string
	FetchTimeout           time.Duration

	// CacheMaxAge bounds how long a loaded dataset (and stored payloads) stay
	// fresh. Zero keeps them until an explicit refresh.
	CacheMaxAge time.Duration
	CacheDBPath string
	Preload     bool

	ForecastHorizon   int
	ForecastCacheSize int

	// Kafka snapshot publishing.
	KafkaBrokers       []string
	KafkaEnabled       bool
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	maxAge, err := time.ParseDuration(envOrDefault("CACHE_MAX_AGE", "0s"))
	if err != nil || maxAge < 0 {
		return nil, errors.New("invalid CACHE_MAX_AGE")
	}

	horizon, err := parseIntInRange("FORECAST_HORIZON_DAYS", 31, 1, 365)
	if err != nil {
		return nil, err
	}

	forecastCacheSize, err := parseIntInRange("FORECAST_CACHE_SIZE", 64, 1, 10000)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NationalURL:            envOrDefault("SOURCE_NATIONAL_URL", DefaultNationalURL),
		DepartmentTestsURL:     envOrDefault("SOURCE_DEPARTMENT_TESTS_URL", DefaultDepartmentTestsURL),
		NationalIncidenceURL:   envOrDefault("SOURCE_NATIONAL_INCIDENCE_URL", DefaultNationalIncidenceURL),
		DepartmentIncidenceURL: envOrDefault("SOURCE_DEPARTMENT_INCIDENCE_URL", DefaultDepartmentIncidenceURL),
		FetchTimeout:           fetchTimeout,

		CacheMaxAge: maxAge,
		CacheDBPath: os.Getenv("CACHE_DB_PATH"),
		Preload:     envOrDefault("PRELOAD", "true") == "true",

		ForecastHorizon:   horizon,
		ForecastCacheSize: forecastCacheSize,

		KafkaBrokers:       brokers,
		KafkaEnabled:       kafkaEnabled,
		KafkaSnapshotTopic: envOrDefault("KAFKA_SNAPSHOT_TOPIC", "covid-fr-incidence-map"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

// parseBrokers splits a comma-separated broker list, dropping blanks.
func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
