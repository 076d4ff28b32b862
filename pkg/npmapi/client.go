// Package npmapi provides a small client for npm's public download-counts
// API at api.npmjs.org.
package npmapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is npm's public download-counts endpoint.
const DefaultBaseURL = "https://api.npmjs.org"

// ErrPackageNotFound reports that the API has no download data for the
// requested package.
var ErrPackageNotFound = errors.New("npmapi: package not found")

// Client calls npm's download-counts API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// VersionDownloads returns last-week download counts per version for pkg,
// via GET /versions/<pkg>/last-week. Scoped names are escaped into a single
// path segment, as the endpoint requires.
func (c *Client) VersionDownloads(ctx context.Context, pkg string) (map[string]int64, error) {
	u := fmt.Sprintf("%s/versions/%s/last-week", c.baseURL, url.PathEscape(pkg))

	var body struct {
		Package   string           `json:"package"`
		Downloads map[string]int64 `json:"downloads"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("version downloads for %s: %w", pkg, err)
	}
	return body.Downloads, nil
}

// PointDownloads returns pkg's total download count over period ("last-day",
// "last-week", "last-month"), via GET /downloads/point/<period>/<pkg>.
func (c *Client) PointDownloads(ctx context.Context, pkg, period string) (int64, error) {
	u := fmt.Sprintf("%s/downloads/point/%s/%s", c.baseURL, period, pkg)

	var body struct {
		Downloads int64  `json:"downloads"`
		Package   string `json:"package"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return 0, fmt.Errorf("point downloads for %s: %w", pkg, err)
	}
	return body.Downloads, nil
}

// getJSON performs a GET and decodes a JSON response into out. A 404 maps
// to ErrPackageNotFound; any other non-200 status is an error.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrPackageNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}
