package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

// Source names, used as payload store keys and metric labels.
const (
	SourceNational            = "national"
	SourceDepartmentTests     = "department_tests"
	SourceNationalIncidence   = "national_incidence"
	SourceDepartmentIncidence = "department_incidence"
)

// Fetcher downloads the body of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, source, url string) ([]byte, error)
}

// PayloadStore persists raw feed bodies between runs.
type PayloadStore interface {
	Get(ctx context.Context, source string) (domain.Payload, bool, error)
	Put(ctx context.Context, source, url string, body []byte) (bool, error)
}

// Sources holds the URL of each feed.
type Sources struct {
	National            string
	DepartmentTests     string
	NationalIncidence   string
	DepartmentIncidence string
}

// Loader fetches, parses and geo-joins the four feeds into a Dataset.
type Loader struct {
	fetcher  Fetcher
	store    PayloadStore
	resolver domain.Resolver
	sources  Sources
	maxAge   time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPayloadStore reuses stored payloads younger than maxAge instead of
// downloading them. A zero maxAge accepts any stored payload.
func WithPayloadStore(store PayloadStore, maxAge time.Duration) LoaderOption {
	return func(l *Loader) {
		l.store = store
		l.maxAge = maxAge
	}
}

// WithClock overrides the clock used for freshness checks and LoadedAt.
func WithClock(clock clockwork.Clock) LoaderOption {
	return func(l *Loader) { l.clock = clock }
}

// NewLoader creates a Loader.
func NewLoader(f Fetcher, r domain.Resolver, sources Sources, metrics *observability.Metrics, logger *slog.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:  f,
		resolver: r,
		sources:  sources,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDataset runs one full load. With force set, stored payloads are ignored
// and every feed is downloaded again.
func (l *Loader) LoadDataset(ctx context.Context, force bool) (*domain.Dataset, error) {
	areas, err := loadTable(ctx, l, SourceNational, l.sources.National, force, domain.ParseAreaRecords)
	if err != nil {
		return nil, err
	}
	tests, err := loadTable(ctx, l, SourceDepartmentTests, l.sources.DepartmentTests, force, domain.ParseDepartmentTests)
	if err != nil {
		return nil, err
	}
	natInc, err := loadTable(ctx, l, SourceNationalIncidence, l.sources.NationalIncidence, force, domain.ParseNationalIncidence)
	if err != nil {
		return nil, err
	}
	depInc, err := loadTable(ctx, l, SourceDepartmentIncidence, l.sources.DepartmentIncidence, force, domain.ParseDepartmentIncidence)
	if err != nil {
		return nil, err
	}

	areas, err = domain.AttachAreaCoordinates(domain.MergeSameDay(areas), l.resolver)
	if err != nil {
		return nil, l.geoFailure(err)
	}
	tests, err = domain.AttachTestCoordinates(tests, l.resolver)
	if err != nil {
		return nil, l.geoFailure(err)
	}
	natInc, err = domain.AttachIncidenceCoordinates(domain.TableNationalIncidence, natInc, l.resolver)
	if err != nil {
		return nil, l.geoFailure(err)
	}
	depInc, err = domain.AttachIncidenceCoordinates(domain.TableDepartmentIncidence, depInc, l.resolver)
	if err != nil {
		return nil, l.geoFailure(err)
	}

	return domain.NewDataset(areas, tests, natInc, depInc, l.clock.Now()), nil
}

func (l *Loader) geoFailure(err error) error {
	var geoErr *domain.GeoResolutionError
	if errors.As(err, &geoErr) {
		l.metrics.GeoResolutionErrors.WithLabelValues(geoErr.Table).Inc()
		l.logger.Error("geo join failed", "table", geoErr.Table, "key", geoErr.Key, "error", geoErr.Err)
	}
	return err
}

// loadTable reads one feed and parses it. Both failures are reported as a
// DataLoadError for the source.
func loadTable[R any](
	ctx context.Context,
	l *Loader,
	source, url string,
	force bool,
	parse func(io.Reader) ([]R, error),
) ([]R, error) {
	body, err := l.payload(ctx, source, url, force)
	if err != nil {
		return nil, &domain.DataLoadError{Source: source, URL: url, Err: err}
	}
	rows, err := parse(bytes.NewReader(body))
	if err != nil {
		return nil, &domain.DataLoadError{Source: source, URL: url, Err: err}
	}
	l.logger.Info("feed parsed", "source", source, "rows", len(rows))
	return rows, nil
}

func (l *Loader) payload(ctx context.Context, source, url string, force bool) ([]byte, error) {
	if l.store != nil && !force {
		p, ok, err := l.store.Get(ctx, source)
		switch {
		case err != nil:
			l.logger.Warn("payload store read failed", "source", source, "error", err)
		case ok && p.URL == url && l.fresh(p.FetchedAt):
			l.logger.Debug("using stored payload", "source", source, "fetched_at", p.FetchedAt)
			return p.Body, nil
		}
	}

	body, err := l.fetcher.Fetch(ctx, source, url)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		if _, err := l.store.Put(ctx, source, url, body); err != nil {
			l.logger.Warn("payload store write failed", "source", source, "error", err)
		}
	}
	return body, nil
}

func (l *Loader) fresh(fetchedAt time.Time) bool {
	return l.maxAge <= 0 || l.clock.Since(fetchedAt) < l.maxAge
}
