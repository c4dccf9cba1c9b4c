package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
	"github.com/couchcryptid/opencovid-fr/internal/observability"
	"github.com/couchcryptid/opencovid-fr/internal/pipeline"
)

type countingLoader struct {
	clock  clockwork.Clock
	calls  atomic.Int32
	forced atomic.Int32
	delay  time.Duration
	mu     sync.Mutex
	err    error
}

func (l *countingLoader) LoadDataset(_ context.Context, force bool) (*domain.Dataset, error) {
	l.calls.Add(1)
	if force {
		l.forced.Add(1)
	}
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	l.mu.Lock()
	err := l.err
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	areas := []domain.AreaRecord{{AreaName: "France", Granularity: domain.GranularityNation}}
	return domain.NewDataset(areas, nil, nil, nil, l.clock.Now()), nil
}

func (l *countingLoader) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func newTestCache(maxAge time.Duration) (*pipeline.Cache, *countingLoader, *clockwork.FakeClock, *observability.Metrics) {
	clock := clockwork.NewFakeClockAt(time.Date(2020, 10, 3, 9, 0, 0, 0, time.UTC))
	loader := &countingLoader{clock: clock}
	m := observability.NewMetricsForTesting()
	return pipeline.NewCache(loader, clock, maxAge, m, discardLogger()), loader, clock, m
}

func TestCache_LifecycleAndMemoization(t *testing.T) {
	c, loader, _, m := newTestCache(0)
	ctx := context.Background()

	assert.Equal(t, pipeline.StateEmpty, c.State())
	assert.ErrorIs(t, c.CheckReadiness(ctx), pipeline.ErrNotLoaded)
	_, ok := c.Current()
	assert.False(t, ok)

	first, err := c.Load(ctx)
	require.NoError(t, err)
	second, err := c.Load(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Equal(t, int32(0), loader.forced.Load())
	assert.Equal(t, pipeline.StateLoaded, c.State())
	assert.NoError(t, c.CheckReadiness(ctx))
	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetRows.WithLabelValues(domain.TableAreas)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetLoaded), 0)
}

func TestCache_RefreshForcesReload(t *testing.T) {
	c, loader, clock, _ := newTestCache(0)
	ctx := context.Background()

	first, err := c.Load(ctx)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, refreshed)
	assert.True(t, refreshed.LoadedAt().After(first.LoadedAt()))
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, int32(1), loader.forced.Load())

	current, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, refreshed, current)
}

func TestCache_MaxAgeExpiry(t *testing.T) {
	c, loader, clock, _ := newTestCache(time.Hour)
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.calls.Load())

	clock.Advance(time.Minute)
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, int32(0), loader.forced.Load(), "expiry is not a forced refresh")
}

func TestCache_FailedFirstLoadStaysEmpty(t *testing.T) {
	c, loader, _, m := newTestCache(0)
	boom := &domain.DataLoadError{Source: "national", URL: "u", Err: errors.New("timeout")}
	loader.fail(boom)

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, pipeline.StateEmpty, c.State())
	assert.Error(t, c.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Loads.WithLabelValues("error")), 0)

	// no automatic retry, but the next call tries again
	loader.fail(nil)
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCache_FailedRefreshKeepsPreviousDataset(t *testing.T) {
	c, loader, _, _ := newTestCache(0)
	ctx := context.Background()

	before, err := c.Load(ctx)
	require.NoError(t, err)

	loader.fail(errors.New("portal down"))
	_, err = c.Refresh(ctx)
	require.Error(t, err)

	assert.Equal(t, pipeline.StateLoaded, c.State())
	current, ok := c.Current()
	require.True(t, ok)
	assert.Same(t, before, current)
}

func TestCache_ConcurrentLoadsShareOneFetch(t *testing.T) {
	c, loader, _, _ := newTestCache(0)
	loader.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	results := make([]*domain.Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := c.Load(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestCache_WaitHonorsContext(t *testing.T) {
	c, loader, _, _ := newTestCache(0)
	loader.delay = 200 * time.Millisecond

	go func() { _, _ = c.Load(context.Background()) }()
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_ListenersRunAfterEachLoad(t *testing.T) {
	c, _, _, _ := newTestCache(0)
	ctx := context.Background()

	var seen []*domain.Dataset
	c.OnLoad(func(_ context.Context, ds *domain.Dataset) error {
		seen = append(seen, ds)
		return nil
	})
	c.OnLoad(func(context.Context, *domain.Dataset) error {
		return errors.New("listener failures are logged only")
	})

	first, err := c.Load(ctx)
	require.NoError(t, err)
	_, err = c.Load(ctx)
	require.NoError(t, err)
	second, err := c.Refresh(ctx)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Same(t, first, seen[0])
	assert.Same(t, second, seen[1])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", pipeline.StateEmpty.String())
	assert.Equal(t, "loading", pipeline.StateLoading.String())
	assert.Equal(t, "loaded", pipeline.StateLoaded.String())
}
