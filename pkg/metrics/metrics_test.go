package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/rivergraph/pkg/observability"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.StageRuns == nil || r.CacheLookups == nil || r.HTTPRequestsTotal == nil {
		t.Fatal("collectors not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestStageMetrics(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnStageComplete(ctx, "snap", 40, 10*time.Millisecond, nil)
	r.OnStageComplete(ctx, "snap", 42, 20*time.Millisecond, nil)
	r.OnStageComplete(ctx, "snap", 0, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(r.StageRuns.WithLabelValues("snap", "success")); got != 2 {
		t.Errorf("success runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.StageRuns.WithLabelValues("snap", "error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.StageItems.WithLabelValues("snap")); got != 42 {
		t.Errorf("stage items = %v, want 42 (failed run must not overwrite)", got)
	}
}

func TestBuildMetrics(t *testing.T) {
	r := NewRegistry()
	r.OnBuildComplete(context.Background(), 12, 15, time.Second, nil)
	if got := testutil.ToFloat64(r.GraphNodes); got != 12 {
		t.Errorf("graph nodes = %v, want 12", got)
	}
	if got := testutil.ToFloat64(r.GraphEdges); got != 15 {
		t.Errorf("graph edges = %v, want 15", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	r.OnCacheHit(ctx, "network")
	r.OnCacheMiss(ctx, "network")
	r.OnCacheMiss(ctx, "network")
	r.OnCacheSet(ctx, "network", 512)

	if got := testutil.ToFloat64(r.CacheLookups.WithLabelValues("network", "miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CacheWriteBytes.WithLabelValues("network")); got != 512 {
		t.Errorf("written bytes = %v, want 512", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.OnRequest(context.Background(), "GET", "/nodes", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `rivergraph_http_requests_total{method="GET",route="/nodes",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.OnBuildComplete(context.Background(), 3, 2, time.Second, nil)

	path := filepath.Join(t.TempDir(), "rivergraph.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rivergraph_graph_nodes 3") {
		t.Errorf("textfile missing node gauge:\n%s", data)
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	r := NewRegistry()
	r.Install()
	if observability.Pipeline() != observability.PipelineHooks(r) {
		t.Error("Install did not register pipeline hooks")
	}
	observability.Cache().OnCacheHit(context.Background(), "artifact")
	if got := testutil.ToFloat64(r.CacheLookups.WithLabelValues("artifact", "hit")); got != 1 {
		t.Errorf("hits via global hooks = %v, want 1", got)
	}
}
