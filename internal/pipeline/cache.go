// Package pipeline loads the source feeds into a Dataset and memoizes the
// result for the lifetime of the process.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

// State is the lifecycle position of a Cache.
type State int32

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// DatasetLoader performs one full load.
type DatasetLoader interface {
	LoadDataset(ctx context.Context, force bool) (*domain.Dataset, error)
}

// Listener is called after every successful load with the new dataset.
type Listener func(ctx context.Context, ds *domain.Dataset) error

// ErrNotLoaded is returned by CheckReadiness before the first load completes.
var ErrNotLoaded = errors.New("dataset has not been loaded yet")

// Cache memoizes the dataset. Loads are serialized: concurrent callers wait
// for the load in progress and share its result.
type Cache struct {
	loader  DatasetLoader
	clock   clockwork.Clock
	maxAge  time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger

	sem     chan struct{}
	state   atomic.Int32
	dataset atomic.Pointer[domain.Dataset]

	mu        sync.Mutex
	listeners []Listener
}

// NewCache creates an empty cache. A zero maxAge keeps the dataset until an
// explicit Refresh.
func NewCache(loader DatasetLoader, clock clockwork.Clock, maxAge time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	return &Cache{
		loader:  loader,
		clock:   clock,
		maxAge:  maxAge,
		metrics: metrics,
		logger:  logger,
		sem:     make(chan struct{}, 1),
	}
}

// OnLoad registers a listener. Listener errors are logged, never returned.
func (c *Cache) OnLoad(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns the current lifecycle state.
func (c *Cache) State() State {
	return State(c.state.Load())
}

// Current returns the loaded dataset without triggering a load.
func (c *Cache) Current() (*domain.Dataset, bool) {
	ds := c.dataset.Load()
	return ds, ds != nil
}

// Load returns the memoized dataset, loading it first if the cache is empty
// or the dataset is older than maxAge.
func (c *Cache) Load(ctx context.Context) (*domain.Dataset, error) {
	if ds := c.dataset.Load(); ds != nil && c.fresh(ds) {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	// Another caller may have finished a load while this one waited.
	if ds := c.dataset.Load(); ds != nil && c.fresh(ds) {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	c.metrics.DatasetCache.WithLabelValues("miss").Inc()
	return c.load(ctx, false)
}

// Refresh discards the memoized dataset and loads again, bypassing any stored
// payloads. The previous dataset stays available if the refresh fails.
func (c *Cache) Refresh(ctx context.Context) (*domain.Dataset, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	c.metrics.DatasetCache.WithLabelValues("refresh").Inc()
	return c.load(ctx, true)
}

// CheckReadiness returns nil once a dataset is available.
func (c *Cache) CheckReadiness(_ context.Context) error {
	if c.dataset.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

func (c *Cache) load(ctx context.Context, force bool) (*domain.Dataset, error) {
	previous := c.State()
	c.state.Store(int32(StateLoading))
	start := c.clock.Now()
	c.logger.Info("loading dataset", "force", force)

	ds, err := c.loader.LoadDataset(ctx, force)
	c.metrics.LoadDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		c.state.Store(int32(previous))
		c.metrics.Loads.WithLabelValues("error").Inc()
		c.logger.Error("dataset load failed", "force", force, "error", err)
		return nil, err
	}

	c.dataset.Store(ds)
	c.state.Store(int32(StateLoaded))
	c.metrics.Loads.WithLabelValues("success").Inc()
	c.metrics.DatasetLoaded.Set(1)
	for table, n := range ds.RowCounts() {
		c.metrics.DatasetRows.WithLabelValues(table).Set(float64(n))
	}
	c.logger.Info("dataset loaded", "force", force, "rows", ds.RowCounts(), "duration", c.clock.Since(start))

	c.notify(ctx, ds)
	return ds, nil
}

func (c *Cache) notify(ctx context.Context, ds *domain.Dataset) {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		if err := l(ctx, ds); err != nil {
			c.logger.Warn("dataset listener failed", "error", err)
		}
	}
}

func (c *Cache) fresh(ds *domain.Dataset) bool {
	return c.maxAge <= 0 || c.clock.Since(ds.LoadedAt()) < c.maxAge
}

func (c *Cache) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) release() {
	<-c.sem
}
