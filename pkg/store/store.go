package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/network"
)

// Sink persists networks.
type Sink interface {
	// Write stores every node and edge of g under runID.
	Write(ctx context.Context, runID string, g *network.Graph) error

	// Name identifies the backend in logs, e.g. "postgres".
	Name() string

	// Close releases connections.
	Close() error
}

// Open connects to the sink at rawURL.
func Open(ctx context.Context, rawURL string) (Sink, error) {
	if err := errors.ValidateSinkURL(rawURL); err != nil {
		return nil, err
	}
	u, _ := url.Parse(rawURL)

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return NewPostgres(ctx, rawURL)
	case "mongodb", "mongodb+srv":
		return NewMongo(ctx, rawURL)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "%s is a cache backend, not a sink", u.Scheme)
}

// WriteAll writes g to every sink and closes them. It stops at the first
// failure.
func WriteAll(ctx context.Context, runID string, g *network.Graph, sinks ...Sink) error {
	defer func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}()
	for _, s := range sinks {
		if err := s.Write(ctx, runID, g); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "write to %s", s.Name())
		}
	}
	return nil
}
