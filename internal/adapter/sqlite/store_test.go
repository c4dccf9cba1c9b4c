package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2020, 10, 15, 8, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClockAt(epoch)
	s := New(db, clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Migrate(context.Background()))
	return s, clock
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := setupTestStore(t)

	_, ok, err := s.Get(context.Background(), "national")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PutAndGet(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	body := []byte("date,granularite,maille_nom\n2020-10-01,pays,France\n")

	changed, err := s.Put(ctx, "national", "https://example.test/chiffres-cles.csv", body)
	require.NoError(t, err)
	assert.True(t, changed)

	p, ok, err := s.Get(ctx, "national")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "national", p.Source)
	assert.Equal(t, "https://example.test/chiffres-cles.csv", p.URL)
	assert.Equal(t, body, p.Body)
	assert.Equal(t, epoch, p.FetchedAt)
	assert.Len(t, p.Hash, 64)
}

func TestStore_PutReplacesAndTracksChanges(t *testing.T) {
	s, clock := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "national", "u", []byte("v1"))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	changed, err := s.Put(ctx, "national", "u", []byte("v1"))
	require.NoError(t, err)
	assert.False(t, changed, "same content")

	clock.Advance(time.Hour)
	changed, err = s.Put(ctx, "national", "u", []byte("v2"))
	require.NoError(t, err)
	assert.True(t, changed)

	p, ok, err := s.Get(ctx, "national")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), p.Body)
	assert.Equal(t, epoch.Add(2*time.Hour), p.FetchedAt)

	history, err := s.History(ctx, "national", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Changed)
	assert.False(t, history[1].Changed)
	assert.True(t, history[2].Changed)
	assert.Equal(t, epoch, history[2].FetchedAt)
}

func TestStore_SourcesAreIndependent(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "national", "a", []byte("national"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "department_tests", "b", []byte("tests"))
	require.NoError(t, err)

	p, _, err := s.Get(ctx, "department_tests")
	require.NoError(t, err)
	assert.Equal(t, []byte("tests"), p.Body)
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, len(migrations), n)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(ctx, path, clockwork.NewFakeClockAt(epoch), logger)
	require.NoError(t, err)
	_, err = s.Put(ctx, "national", "u", []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, clockwork.NewFakeClockAt(epoch), logger)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	p, ok, err := s.Get(ctx, "national")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), p.Body)
}
