// Package sqlite keeps the last downloaded payload of every feed on disk so a
// restart can serve data without waiting on the open data portal.
package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/opencovid-fr/internal/domain"
)

// FetchRecord is one entry of a source's fetch history.
type FetchRecord struct {
	FetchedAt time.Time
	Hash      string
	Changed   bool
}

// Store is a SQLite-backed payload store.
type Store struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *slog.Logger
}

// New wraps an open database. Call Migrate before use.
func New(db *sql.DB, clock clockwork.Clock, logger *slog.Logger) *Store {
	return &Store{db: db, clock: clock, logger: logger}
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, clock clockwork.Clock, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := New(db, clock, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put replaces the stored payload for source. It reports whether the content
// differs from what was stored before.
func (s *Store) Put(ctx context.Context, source, url string, body []byte) (bool, error) {
	compressed, err := compress(body)
	if err != nil {
		return false, err
	}
	hash := sha256.Sum256(body)
	hashHex := hex.EncodeToString(hash[:])
	now := s.clock.Now().UTC().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous string
	err = tx.QueryRowContext(ctx, `SELECT payload_hash FROM raw_payloads WHERE source = ?`, source).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read previous hash: %w", err)
	}
	changed := previous != hashHex

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO raw_payloads (source, url, fetched_at, payload_compressed, payload_hash, payload_size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			url = excluded.url,
			fetched_at = excluded.fetched_at,
			payload_compressed = excluded.payload_compressed,
			payload_hash = excluded.payload_hash,
			payload_size = excluded.payload_size
	`, source, url, now, compressed, hashHex, len(body)); err != nil {
		return false, fmt.Errorf("upsert payload %s: %w", source, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fetch_history (source, fetched_at, payload_hash, changed) VALUES (?, ?, ?, ?)`,
		source, now, hashHex, changed,
	); err != nil {
		return false, fmt.Errorf("record fetch %s: %w", source, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit payload %s: %w", source, err)
	}
	s.logger.Debug("payload stored", "source", source, "bytes", len(body), "compressed", len(compressed), "changed", changed)
	return changed, nil
}

// Get returns the stored payload for source. ok is false when nothing is
// stored.
func (s *Store) Get(ctx context.Context, source string) (p domain.Payload, ok bool, err error) {
	var (
		compressed []byte
		fetchedAt  int64
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT source, url, fetched_at, payload_compressed, payload_hash
		FROM raw_payloads WHERE source = ?
	`, source).Scan(&p.Source, &p.URL, &fetchedAt, &compressed, &p.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payload{}, false, nil
	}
	if err != nil {
		return domain.Payload{}, false, fmt.Errorf("read payload %s: %w", source, err)
	}

	p.FetchedAt = time.Unix(0, fetchedAt).UTC()
	p.Body, err = decompress(compressed)
	if err != nil {
		return domain.Payload{}, false, fmt.Errorf("decompress payload %s: %w", source, err)
	}
	return p, true, nil
}

// History returns the most recent fetches of source, newest first.
func (s *Store) History(ctx context.Context, source string, limit int) ([]FetchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fetched_at, payload_hash, changed
		FROM fetch_history
		WHERE source = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FetchRecord
	for rows.Next() {
		var (
			r  FetchRecord
			ts int64
		)
		if err := rows.Scan(&ts, &r.Hash, &r.Changed); err != nil {
			return nil, err
		}
		r.FetchedAt = time.Unix(0, ts).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(body); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
