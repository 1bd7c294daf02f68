package io

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/network"
)

// Output file names written by [ExportAll].
const (
	NodesFile    = "nodes.csv"
	EdgesFile    = "edges.csv"
	GraphFile    = "graph.json"
	SegmentsFile = "segments.geojson"
)

// ExportAll writes nodes.csv, edges.csv, graph.json and segments.geojson
// into dir, creating it if needed, and returns the written paths.
func ExportAll(g *network.Graph, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}

	outputs := []struct {
		name  string
		write func(*network.Graph, io.Writer) error
	}{
		{NodesFile, WriteNodesCSV},
		{EdgesFile, WriteEdgesCSV},
		{GraphFile, WriteJSON},
		{SegmentsFile, WriteSegments},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, func(w io.Writer) error { return o.write(g, w) }); err != nil {
			return paths, errors.Wrap(errors.ErrCodeStorage, err, "export")
		}
		paths = append(paths, path)
	}
	return paths, nil
}
