package cli

import (
	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
)

// networkArgs is the positional argument shape shared by the commands that
// read a built network.
const networkArgs = "<graph.json> | <nodes.csv> <edges.csv>"

// loadNetwork reads a network written by build: either its graph.json or
// its nodes.csv and edges.csv pair.
func loadNetwork(args []string) (*network.Graph, error) {
	switch len(args) {
	case 1:
		return io.ImportJSON(args[0])
	case 2:
		return io.ImportCSV(args[0], args[1])
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "want %s, got %d arguments", networkArgs, len(args))
}
