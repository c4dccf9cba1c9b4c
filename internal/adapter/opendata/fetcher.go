// Package opendata downloads the published CSV feeds.
package opendata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/observability"
)

// DefaultUserAgent identifies the service to the open data portal.
const DefaultUserAgent = "opencovid-fr/1.0"

// maxPayloadBytes bounds a single feed download.
const maxPayloadBytes = 512 << 20

// Fetcher retrieves feed payloads over HTTP(S). file:// URLs are read from the
// local filesystem, which is how fixtures are served in local runs.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: DefaultUserAgent,
		metrics:   metrics,
		logger:    logger,
	}
}

// Fetch downloads the body at url. source names the feed in metrics and logs.
func (f *Fetcher) Fetch(ctx context.Context, source, url string) ([]byte, error) {
	start := time.Now()
	body, err := f.fetch(ctx, url)
	f.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.FetchRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}

	f.metrics.FetchRequests.WithLabelValues(source, "success").Inc()
	f.logger.Debug("feed downloaded", "source", source, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv, */*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayloadBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return body, nil
}
