package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/rivergraph/pkg/errors"
	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
)

// A main channel along the equator and a tributary whose mouth stops 0.02
// degrees short of it.
const confluence = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name_en": "Main"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 0]]}},
    {"type": "Feature", "properties": {"name_en": "Trib"},
     "geometry": {"type": "LineString", "coordinates": [[0.5, 0.5], [0.5, 0.02]]}}
  ]
}`

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	root := New(io.Discard, LogDebug).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rivers.geojson")
	if err := os.WriteFile(path, []byte(confluence), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func buildGraph(t *testing.T, extra ...string) (string, *network.Graph) {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"build", writeInput(t), "-o", dir, "--no-cache"}, extra...)
	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("build: %v", err)
	}
	path := filepath.Join(dir, rgio.GraphFile)
	g, err := rgio.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	return path, g
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "build", writeInput(t), "-o", dir)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, name := range []string{rgio.NodesFile, rgio.EdgesFile, rgio.GraphFile, rgio.SegmentsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
		if !strings.Contains(out, name) {
			t.Errorf("output does not list %s", name)
		}
	}
	if !strings.Contains(out, "7 nodes") || !strings.Contains(out, "6 edges") {
		t.Errorf("summary = %q, want 7 nodes and 6 edges", out)
	}
	if !strings.Contains(out, "snapped 1 endpoints") {
		t.Errorf("summary = %q, want snap counter", out)
	}
}

func TestBuildCommandFlags(t *testing.T) {
	_, g := buildGraph(t, "--segment-km", "100", "--start-id", "500")
	if g.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", g.EdgeCount())
	}
	if edges := g.Edges(); edges[0].ID != 500 {
		t.Errorf("first edge ID = %d, want 500", edges[0].ID)
	}
}

func TestBuildCommandMetricsFile(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "rivergraph.prom")
	if _, err := runCLI(t, "build", writeInput(t), "-o", t.TempDir(), "--no-cache", "--metrics-file", metricsPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rivergraph_graph_nodes 7") {
		t.Errorf("metrics textfile missing node gauge:\n%s", data)
	}
}

func TestBuildCommandConfig(t *testing.T) {
	input := writeInput(t)
	cfg := filepath.Join(t.TempDir(), "rivergraph.toml")
	content := "input = \"" + filepath.ToSlash(input) + "\"\nsegment_length_km = 100\nfilter = [\"main\"]\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	// The flag overrides the config; the filter still applies.
	if _, err := runCLI(t, "build", "--config", cfg, "--segment-km", "30", "-o", dir, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}
	g, err := rgio.ImportJSON(filepath.Join(dir, rgio.GraphFile))
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 4 {
		t.Errorf("edges = %d, want 4 (Main only, 30 km)", g.EdgeCount())
	}
	for _, e := range g.Edges() {
		if e.Name != "Main" {
			t.Errorf("edge %d named %q, want Main", e.ID, e.Name)
		}
	}
}

func TestBuildCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"build", "--no-cache"}},
		{"missing file", []string{"build", "does-not-exist.geojson", "--no-cache"}},
		{"bad tolerance", []string{"build", "x.geojson", "--tolerance", "-1", "--no-cache"}},
		{"bad length method", []string{"build", "x.geojson", "--length", "geodesic", "--no-cache"}},
		{"bad sink", []string{"build", "x.geojson", "--sink", "ftp://host/db", "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommandDOT(t *testing.T) {
	graphPath, _ := buildGraph(t)
	out := filepath.Join(t.TempDir(), "network.svg")

	if _, err := runCLI(t, "render", graphPath, "-f", "dot", "-o", out, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSuffix(out, ".svg") + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("dot output starts with %q", string(data[:min(20, len(data))]))
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	graphPath, _ := buildGraph(t)
	if _, err := runCLI(t, "render", graphPath, "-f", "gif"); err == nil {
		t.Error("expected error for gif")
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"out/graph.json", "", "out/graph"},
		{"graph.json", "map.svg", "map"},
		{"graph.json", "maps/rhine", "maps/rhine"},
		{"graph.json", "rhine.v2", "rhine.v2"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.input, tt.output); got != tt.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	graphPath, _ := buildGraph(t)
	out, err := runCLI(t, "inspect", graphPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"nodes", "7", "sources", "Main", "Trib", "CHANNEL"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommandCSV(t *testing.T) {
	graphPath, _ := buildGraph(t)
	dir := filepath.Dir(graphPath)
	out, err := runCLI(t, "inspect", filepath.Join(dir, rgio.NodesFile), filepath.Join(dir, rgio.EdgesFile))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"nodes", "7", "Main", "Trib"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadNetwork(t *testing.T) {
	graphPath, want := buildGraph(t)
	dir := filepath.Dir(graphPath)

	g, err := loadNetwork([]string{filepath.Join(dir, rgio.NodesFile), filepath.Join(dir, rgio.EdgesFile)})
	if err != nil {
		t.Fatalf("loadNetwork(csv): %v", err)
	}
	if g.NodeCount() != want.NodeCount() || g.EdgeCount() != want.EdgeCount() {
		t.Errorf("csv network = %d nodes, %d edges; want %d, %d",
			g.NodeCount(), g.EdgeCount(), want.NodeCount(), want.EdgeCount())
	}

	if _, err := loadNetwork([]string{filepath.Join(dir, rgio.NodesFile), filepath.Join(dir, "missing.csv")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("loadNetwork(missing edges) = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := loadNetwork(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("loadNetwork(nil) = %v, want INVALID_INPUT", err)
	}
}

func TestChannelsOf(t *testing.T) {
	_, g := buildGraph(t)
	channels := channelsOf(g)
	if len(channels) != 2 {
		t.Fatalf("channels = %v, want 2", channels)
	}
	if channels[0].Name != "Main" || channels[0].Segments != 4 {
		t.Errorf("longest channel = %+v, want Main with 4 segments", channels[0])
	}
	if channels[1].Name != "Trib" || channels[1].Segments != 2 {
		t.Errorf("second channel = %+v, want Trib with 2 segments", channels[1])
	}
}

func TestChannelListModel(t *testing.T) {
	_, g := buildGraph(t)
	var m tea.Model = NewChannelListModel(g)

	press := func(key string) {
		var msg tea.KeyMsg
		switch key {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		m, _ = m.Update(msg)
	}

	press("j")
	if got := m.(ChannelListModel).Cursor; got != 1 {
		t.Fatalf("cursor after j = %d, want 1", got)
	}
	press("j") // already at the last channel
	if got := m.(ChannelListModel).Cursor; got != 1 {
		t.Errorf("cursor moved past the end: %d", got)
	}

	press("enter")
	open := m.(ChannelListModel).Open
	if open == nil || open.Name != "Trib" {
		t.Fatalf("open channel = %v, want Trib", open)
	}
	if view := m.View(); !strings.Contains(view, "EDGE") || !strings.Contains(view, "Trib") {
		t.Errorf("segment view = %q", view)
	}

	press("esc")
	if m.(ChannelListModel).Open != nil {
		t.Error("esc should return to the channel list")
	}
	if view := m.View(); !strings.Contains(view, "Main") {
		t.Errorf("list view = %q, want channel names", view)
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q, want suffix %q", out, appName)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	// A cached build leaves entries behind for clear to remove.
	for _, args := range [][]string{
		{"build", writeInput(t), "-o", t.TempDir()},
		{"cache", "clear"},
	} {
		root := New(io.Discard, LogDebug).RootCommand()
		root.SetArgs(args)
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	if !strings.Contains(out.String(), "Cleared 1 cached entries") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion does not mention the command name")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" Rhine, ,Main ,")
	if len(got) != 2 || got[0] != "Rhine" || got[1] != "Main" {
		t.Errorf("splitList() = %q", got)
	}
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %q, want [svg]", got)
	}
}

func TestCacheInfoCommand(t *testing.T) {
	out, err := runCLI(t, "cache", "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("output = %q, want empty cache notice", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
