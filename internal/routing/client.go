// Package routing fetches driving geometry from an OSRM-compatible service.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleetfusion/internal/fleet"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://router.project-osrm.org"
	DefaultTimeout = 10 * time.Second
	// maxBody caps the response size read from the routing service.
	maxBody = 8 << 20
)

// Fetcher returns a driving path between two points or false when none is
// available.
type Fetcher interface {
	Fetch(ctx context.Context, from, to fleet.Coordinate) ([]fleet.Coordinate, bool)
}

// Client queries the OSRM route service. Every failure collapses to "no
// route"; nothing is retried.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
	profile string
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger used to report failed lookups.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// WithProfile selects the OSRM routing profile. Defaults to driving.
func WithProfile(p string) ClientOption {
	return func(c *Client) {
		c.profile = p
	}
}

// NewClient creates a routing client. An empty baseURL uses the public OSRM
// demo server.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		log:     slog.Default(),
		profile: "driving",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// URL builds the route request for from and to.
func (c *Client) URL(from, to fleet.Coordinate) string {
	return fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=full&geometries=geojson",
		c.baseURL, c.profile,
		formatFloat(from.Lon()), formatFloat(from.Lat()),
		formatFloat(to.Lon()), formatFloat(to.Lat()))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fetch returns the geometry of the first route, or false on any failure:
// transport errors, non-2xx responses, malformed bodies, a code other than
// "Ok" or an empty route list.
func (c *Client) Fetch(ctx context.Context, from, to fleet.Coordinate) ([]fleet.Coordinate, bool) {
	coords, err := c.fetch(ctx, from, to)
	if err != nil {
		c.log.Warn("route fetch failed", "from", from, "to", to, "err", err)
		return nil, false
	}
	return coords, true
}

func (c *Client) fetch(ctx context.Context, from, to fleet.Coordinate) ([]fleet.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(from, to), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rr.Code != "Ok" {
		return nil, fmt.Errorf("routing code %q", rr.Code)
	}
	if len(rr.Routes) == 0 {
		return nil, fmt.Errorf("no routes")
	}
	raw := rr.Routes[0].Geometry.Coordinates
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}
	out := make([]fleet.Coordinate, len(raw))
	for i, p := range raw {
		if len(p) < 2 {
			return nil, fmt.Errorf("point %d has %d components", i, len(p))
		}
		out[i] = fleet.Coordinate{p[0], p[1]}
	}
	return out, nil
}

// FetchOrFallback returns the fetched route, or fallback when no route is
// available.
func FetchOrFallback(ctx context.Context, f Fetcher, from, to fleet.Coordinate, fallback []fleet.Coordinate) ([]fleet.Coordinate, bool) {
	if f != nil {
		if coords, ok := f.Fetch(ctx, from, to); ok {
			return coords, true
		}
	}
	return append([]fleet.Coordinate(nil), fallback...), false
}
