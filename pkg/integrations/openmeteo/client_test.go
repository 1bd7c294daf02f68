package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rivergraph/pkg/cache"
)

// elevationServer answers with latitude*100 for each requested point and
// fails every request whose first latitude is in fail.
func elevationServer(t *testing.T, requests *atomic.Int32, fail map[string]bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		lats := strings.Split(r.URL.Query().Get("latitude"), ",")
		lons := strings.Split(r.URL.Query().Get("longitude"), ",")
		if len(lats) != len(lons) {
			t.Errorf("latitude/longitude length mismatch: %d vs %d", len(lats), len(lons))
		}
		if fail[lats[0]] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		elev := make([]float64, len(lats))
		for i, s := range lats {
			v, _ := strconv.ParseFloat(s, 64)
			elev[i] = v * 100
		}
		json.NewEncoder(w).Encode(map[string][]float64{"elevation": elev})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func points(n int) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = Point{ID: "n" + strconv.Itoa(i), Lon: 70, Lat: float64(i)}
	}
	return out
}

func newClient(t *testing.T, srv *httptest.Server, backend cache.Cache, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(srv.URL), WithDelay(0), WithLogger(log.New(io.Discard))}, opts...)
	c := NewClient(backend, opts...)
	c.SetHTTPClient(srv.Client())
	return c
}

func TestElevations(t *testing.T) {
	var requests atomic.Int32
	srv := elevationServer(t, &requests, nil)
	c := newClient(t, srv, nil, WithBatchSize(2))

	got, stats, err := c.Elevations(context.Background(), points(5), false)
	if err != nil {
		t.Fatalf("Elevations() error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d elevations, want 5", len(got))
	}
	if got["n3"] != 300 {
		t.Errorf("n3 = %v, want 300", got["n3"])
	}
	if stats.Batches != 3 || requests.Load() != 3 {
		t.Errorf("batches = %d, requests = %d; want 3 each", stats.Batches, requests.Load())
	}
}

func TestElevationsCached(t *testing.T) {
	var requests atomic.Int32
	srv := elevationServer(t, &requests, nil)
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	c := newClient(t, srv, backend, WithBatchSize(3))
	ctx := context.Background()

	if _, _, err := c.Elevations(ctx, points(4), false); err != nil {
		t.Fatal(err)
	}
	got, stats, err := c.Elevations(ctx, points(4), false)
	if err != nil {
		t.Fatal(err)
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2 (second run cached)", requests.Load())
	}
	if stats.CachedBatches != 2 || len(got) != 4 {
		t.Errorf("stats = %+v, got %d points", stats, len(got))
	}

	if _, stats, _ := c.Elevations(ctx, points(4), true); stats.CachedBatches != 0 {
		t.Errorf("refresh served %d batches from cache", stats.CachedBatches)
	}
	if requests.Load() != 4 {
		t.Errorf("requests after refresh = %d, want 4", requests.Load())
	}
}

func TestElevationsSkipsFailedBatch(t *testing.T) {
	var requests atomic.Int32
	srv := elevationServer(t, &requests, map[string]bool{"2": true})
	c := newClient(t, srv, nil, WithBatchSize(2))

	got, stats, err := c.Elevations(context.Background(), points(6), false)
	if err != nil {
		t.Fatalf("Elevations() error: %v", err)
	}
	if stats.FailedBatches != 1 {
		t.Errorf("failed batches = %d, want 1", stats.FailedBatches)
	}
	if len(got) != 4 {
		t.Errorf("got %d elevations, want 4", len(got))
	}
	if _, ok := got["n2"]; ok {
		t.Error("points of the failed batch should be missing")
	}
}

func TestElevationsShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elevation":[1]}`))
	}))
	defer srv.Close()
	c := newClient(t, srv, nil)

	got, stats, err := c.Elevations(context.Background(), points(2), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 || stats.FailedBatches != 1 {
		t.Errorf("got %v with stats %+v, want one failed batch", got, stats)
	}
}

func TestElevationsCancelled(t *testing.T) {
	var requests atomic.Int32
	srv := elevationServer(t, &requests, nil)
	c := newClient(t, srv, nil, WithBatchSize(1), WithDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, _, err := c.Elevations(ctx, points(3), false); err == nil {
		t.Error("expected context error")
	}
	if requests.Load() != 1 {
		t.Errorf("requests = %d, want 1 before the delay", requests.Load())
	}
}

func TestWithBatchSize(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1},
		{25, 25},
		{500, MaxBatchSize},
	}
	for _, tt := range tests {
		if got := NewClient(nil, WithBatchSize(tt.in)).batchSize; got != tt.want {
			t.Errorf("WithBatchSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJoinCoords(t *testing.T) {
	lats, lons := joinCoords([]Point{{Lon: 71.5, Lat: 30.25}, {Lon: -0.1, Lat: 51}})
	if lats != "30.25,51" || lons != "71.5,-0.1" {
		t.Errorf("joinCoords() = %q, %q", lats, lons)
	}
}
