package openmeteo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rivergraph/pkg/cache"
	"github.com/matzehuels/rivergraph/pkg/integrations"
)

const (
	// DefaultBaseURL is the Open-Meteo elevation endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/elevation"

	// DefaultBatchSize is the number of coordinates sent per request.
	DefaultBatchSize = 50

	// MaxBatchSize is the most coordinates the API accepts in one request.
	MaxBatchSize = 100

	// DefaultDelay is the pause between uncached requests.
	DefaultDelay = 500 * time.Millisecond

	// Terrain does not change; cached batches are kept for a year.
	cacheTTL = 365 * 24 * time.Hour
)

// Point is a coordinate to look up, keyed by the caller's node ID.
type Point struct {
	ID  string
	Lon float64
	Lat float64
}

// Stats reports how a lookup went.
type Stats struct {
	Batches       int // requests needed for all points
	CachedBatches int // batches served from the cache
	FailedBatches int // batches skipped after errors
}

// Client fetches terrain elevation from Open-Meteo.
type Client struct {
	*integrations.Client
	baseURL   string
	batchSize int
	delay     time.Duration
	logger    *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at another endpoint, such as a self-hosted
// Open-Meteo instance.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithBatchSize sets the coordinates per request, clamped to [1, MaxBatchSize].
func WithBatchSize(n int) Option {
	return func(c *Client) { c.batchSize = max(1, min(n, MaxBatchSize)) }
}

// WithDelay sets the pause between uncached requests.
func WithDelay(d time.Duration) Option { return func(c *Client) { c.delay = d } }

// WithLogger sets the logger for skipped batches.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient creates an Open-Meteo client. Responses are cached in backend.
func NewClient(backend cache.Cache, opts ...Option) *Client {
	c := &Client{
		Client:    integrations.NewClient(backend, "openmeteo:", cacheTTL, nil),
		baseURL:   DefaultBaseURL,
		batchSize: DefaultBatchSize,
		delay:     DefaultDelay,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	Elevation []float64 `json:"elevation"`
}

// Elevations returns the elevation in meters for each point, keyed by ID.
// A batch that fails after retries is logged and skipped, so the result may
// cover fewer points than requested. Only cancellation of ctx is an error.
func (c *Client) Elevations(ctx context.Context, points []Point, refresh bool) (map[string]float64, Stats, error) {
	out := make(map[string]float64, len(points))
	var stats Stats

	for start := 0; start < len(points); start += c.batchSize {
		batch := points[start:min(start+c.batchSize, len(points))]
		stats.Batches++

		lats, lons := joinCoords(batch)
		reqURL := c.baseURL + "?" + url.Values{"latitude": {lats}, "longitude": {lons}}.Encode()

		var resp response
		hit, err := c.Cached(ctx, cache.Hash([]byte(lats+"|"+lons)), refresh, &resp, func() error {
			return c.Get(ctx, reqURL, &resp)
		})
		if err == nil && len(resp.Elevation) != len(batch) {
			err = fmt.Errorf("%w: got %d elevations for %d points", integrations.ErrNetwork, len(resp.Elevation), len(batch))
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, stats, ctx.Err()
			}
			stats.FailedBatches++
			c.logger.Warn("elevation batch failed", "batch", start/c.batchSize, "points", len(batch), "err", err)
			continue
		}

		for i, p := range batch {
			if v := resp.Elevation[i]; !math.IsNaN(v) {
				out[p.ID] = v
			}
		}

		if hit {
			stats.CachedBatches++
			continue
		}
		if start+c.batchSize < len(points) && c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, stats, ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}
	return out, stats, nil
}

func joinCoords(batch []Point) (lats, lons string) {
	la := make([]string, len(batch))
	lo := make([]string, len(batch))
	for i, p := range batch {
		la[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
		lo[i] = strconv.FormatFloat(p.Lon, 'f', -1, 64)
	}
	return strings.Join(la, ","), strings.Join(lo, ",")
}
