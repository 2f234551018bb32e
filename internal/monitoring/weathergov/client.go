// Package weathergov consumes the api.weather.gov active-alerts feed. Rate
// limits, retries, and transport errors stop here; callers only see a typed
// record list or an error.
package weathergov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgent is required by api.weather.gov; anonymous clients are rejected.
const userAgent = "CAT-Backend/1.0 (catastrophe monitoring; ops@pionedata.com)"

// Feature is one alert record as served by the feed (GeoJSON feature).
type Feature struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

type Properties struct {
	Event       string  `json:"event"`
	Headline    string  `json:"headline"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Status      string  `json:"status"`
	Sent        string  `json:"sent"`
	Effective   string  `json:"effective"`
	AreaDesc    string  `json:"areaDesc"`
	Geocode     Geocode `json:"geocode"`
}

type Geocode struct {
	UGC  []string `json:"UGC"`
	SAME []string `json:"SAME"`
}

type feedResponse struct {
	Features []Feature `json:"features"`
}

// Client fetches active alerts with a bounded timeout and a polite request
// rate against the public API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a feed client. ratePerSec bounds outbound requests; the
// periodic job only calls once per interval, but the on-demand endpoint can
// be hammered and must not hammer weather.gov in turn.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// FetchActiveAlerts returns the current feed records. An empty feed is not
// an error; the batch simply becomes a no-op.
func (c *Client) FetchActiveAlerts(ctx context.Context) ([]Feature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var payload feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	return payload.Features, nil
}
