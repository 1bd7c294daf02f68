package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/rivergraph/pkg/network"
)

// DefaultMongoDatabase is used when the URL names no database.
const DefaultMongoDatabase = "rivergraph"

// Mongo writes networks to the "nodes" and "edges" collections.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to the MongoDB deployment at uri. The database is taken
// from the URL path.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb unreachable: %w", err)
	}
	return &Mongo{client: client, db: client.Database(mongoDatabase(uri))}, nil
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return DefaultMongoDatabase
}

// Name returns "mongodb".
func (m *Mongo) Name() string { return "mongodb" }

// Write inserts all nodes, then all edges.
func (m *Mongo) Write(ctx context.Context, runID string, g *network.Graph) error {
	opts := options.InsertMany().SetOrdered(false)
	if docs := nodeDocs(runID, g); len(docs) > 0 {
		if _, err := m.db.Collection("nodes").InsertMany(ctx, docs, opts); err != nil {
			return fmt.Errorf("insert nodes: %w", err)
		}
	}
	if docs := edgeDocs(runID, g); len(docs) > 0 {
		if _, err := m.db.Collection("edges").InsertMany(ctx, docs, opts); err != nil {
			return fmt.Errorf("insert edges: %w", err)
		}
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Sink = (*Mongo)(nil)
