package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/metrics"
	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/observability"
	"github.com/matzehuels/rivergraph/pkg/render/nodelink"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve " + networkArgs,
		Short: "Serve a built network over HTTP",
		Long: `Serve loads a graph.json, or a nodes.csv and edges.csv pair, and exposes it
read-only:

  GET /healthz          liveness check
  GET /graph            the graph as JSON
  GET /graph.dot        the graph as Graphviz DOT
  GET /nodes            all nodes (?format=csv)
  GET /nodes/{id}       one node with its incoming and outgoing edges
  GET /edges            all edges (?type=flow|proximity|correlation, ?format=csv)
  GET /edges/{id}       one edge
  GET /metrics          Prometheus metrics`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadNetwork(args)
			if err != nil {
				return err
			}

			reg := metrics.NewRegistry()
			reg.Install()
			defer observability.Reset()

			logger := loggerFromContext(cmd.Context())
			return listen(cmd.Context(), addr, newRouter(g, reg, logger), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}

// listen serves h on addr until ctx is done, then shuts down gracefully.
func listen(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("serving network", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// graphHandler serves one immutable network.
type graphHandler struct {
	g      *network.Graph
	logger *log.Logger
}

// newRouter builds the HTTP routes for g. A nil reg leaves out /metrics.
func newRouter(g *network.Graph, reg *metrics.Registry, logger *log.Logger) http.Handler {
	h := &graphHandler{g: g, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/graph", h.graph)
	r.Get("/graph.dot", h.dot)
	r.Get("/nodes", h.nodes)
	r.Get("/nodes/{id}", h.node)
	r.Get("/edges", h.edges)
	r.Get("/edges/{id}", h.edge)
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}
	return r
}

// instrument reports each request to the server hooks under its route
// pattern, so /nodes/{id} is one series regardless of the ID.
func instrument(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			observability.Server().OnRequest(r.Context(), r.Method, route, status, elapsed)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "elapsed", elapsed)
		})
	}
}

type nodeJSON struct {
	ID  string  `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type edgeJSON struct {
	ID       int64   `json:"id"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Name     string  `json:"name"`
	LengthKm float64 `json:"length_km"`
	Type     string  `json:"type"`
	WKT      string  `json:"wkt"`
}

type nodeDetail struct {
	nodeJSON
	In  []edgeJSON `json:"in"`
	Out []edgeJSON `json:"out"`
}

func toNodeJSON(n *network.Node) nodeJSON {
	return nodeJSON{ID: n.ID, Lon: n.Lon, Lat: n.Lat}
}

func toEdgeJSON(e network.Edge) edgeJSON {
	return edgeJSON{
		ID:       e.ID,
		From:     e.From,
		To:       e.To,
		Name:     e.Name,
		LengthKm: e.LengthKm,
		Type:     e.Type.String(),
		WKT:      rgio.EdgeWKT(e),
	}
}

func toEdgesJSON(edges []network.Edge) []edgeJSON {
	out := make([]edgeJSON, len(edges))
	for i, e := range edges {
		out[i] = toEdgeJSON(e)
	}
	return out
}

func (h *graphHandler) graph(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := rgio.WriteJSON(h.g, w); err != nil {
		h.logger.Warn("write graph", "err", err)
	}
}

func (h *graphHandler) dot(w http.ResponseWriter, r *http.Request) {
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(nodelink.ToDOT(h.g, nodelink.Options{Detailed: detailed})))
}

func (h *graphHandler) nodes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := rgio.WriteNodesCSV(h.g, w); err != nil {
			h.logger.Warn("write nodes", "err", err)
		}
		return
	}
	nodes := h.g.Nodes()
	out := make([]nodeJSON, len(nodes))
	for i, n := range nodes {
		out[i] = toNodeJSON(n)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *graphHandler) node(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := network.ParseKey(id); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid node ID: "+id)
		return
	}
	n, ok := h.g.Node(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "node not found: "+id)
		return
	}
	h.writeJSON(w, http.StatusOK, nodeDetail{
		nodeJSON: toNodeJSON(n),
		In:       toEdgesJSON(h.g.InEdges(id)),
		Out:      toEdgesJSON(h.g.OutEdges(id)),
	})
}

func (h *graphHandler) edges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var keep func(network.Edge) bool
	if name := q.Get("type"); name != "" {
		t, ok := parseEdgeType(name)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "unknown edge type: "+name)
			return
		}
		keep = func(e network.Edge) bool { return e.Type == t }
	}
	sub := h.g.Subgraph(keep, nil)

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := rgio.WriteEdgesCSV(sub, w); err != nil {
			h.logger.Warn("write edges", "err", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, toEdgesJSON(sub.Edges()))
}

func (h *graphHandler) edge(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid edge ID: "+raw)
		return
	}
	e, ok := h.g.Edge(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "edge not found: "+raw)
		return
	}
	h.writeJSON(w, http.StatusOK, toEdgeJSON(e))
}

func parseEdgeType(s string) (network.EdgeType, bool) {
	for _, t := range []network.EdgeType{network.EdgeFlow, network.EdgeProximity, network.EdgeCorrelation} {
		if s == t.String() || s == strconv.Itoa(int(t)) {
			return t, true
		}
	}
	return 0, false
}

func (h *graphHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encode response", "err", err)
	}
}

func (h *graphHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
