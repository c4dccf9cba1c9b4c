package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/opencovid-fr/internal/geo"
)

// DefaultBaseURL is the Mapbox places endpoint.
const DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client implements geo.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithBaseURL(token, DefaultBaseURL, timeout, logger)
}

// NewClientWithBaseURL creates a client against another endpoint, such as a
// test server.
func NewClientWithBaseURL(token, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// candidates is how many features are requested per lookup. The audit keeps
// the one whose name matches the query, falling back to the most relevant.
const candidates = 3

// ForwardGeocode converts an area name to coordinates. A non-empty country
// (ISO 3166 alpha-2, e.g. "fr") restricts the search. An empty result with
// a nil error means Mapbox found nothing.
func (c *Client) ForwardGeocode(ctx context.Context, name, country string) (geo.GeocodingResult, error) {
	q := url.Values{
		"access_token": {c.token},
		"limit":        {strconv.Itoa(candidates)},
		"types":        {"country,region,district,place"},
		"language":     {"fr"},
	}
	if country != "" {
		q.Set("country", strings.ToLower(country))
	}

	places, err := c.search(ctx, c.baseURL+"/"+url.PathEscape(name)+".json?"+q.Encode())
	if err != nil {
		return geo.GeocodingResult{}, fmt.Errorf("mapbox %q: %w", name, err)
	}
	best, ok := places.best(name)
	if !ok {
		c.logger.Debug("mapbox found no place", "name", name, "country", country)
		return geo.GeocodingResult{}, nil
	}
	return best, nil
}

func (c *Client) search(ctx context.Context, u string) (places, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return places{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return places{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return places{}, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var p places
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return places{}, fmt.Errorf("decode places: %w", err)
	}
	return p, nil
}

// places is the subset of a Mapbox places response the audit reads.
type places struct {
	Features []struct {
		Center    [2]float64 `json:"center"` // lon, lat
		Text      string     `json:"text"`
		PlaceName string     `json:"place_name"`
		PlaceType []string   `json:"place_type"`
		Relevance float64    `json:"relevance"`
	} `json:"features"`
}

// best returns the feature named exactly like the query, or else the first.
func (p places) best(name string) (geo.GeocodingResult, bool) {
	if len(p.Features) == 0 {
		return geo.GeocodingResult{}, false
	}
	pick := 0
	for i, f := range p.Features {
		if strings.EqualFold(f.Text, name) {
			pick = i
			break
		}
	}
	f := p.Features[pick]
	r := geo.GeocodingResult{
		Lat:              f.Center[1],
		Lon:              f.Center[0],
		FormattedAddress: f.PlaceName,
		Confidence:       f.Relevance,
	}
	if len(f.PlaceType) > 0 {
		r.PlaceType = f.PlaceType[0]
	}
	return r, true
}
