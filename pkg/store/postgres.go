package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/rivergraph/pkg/network"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	run_id  TEXT NOT NULL,
	node_id TEXT NOT NULL,
	lon     DOUBLE PRECISION NOT NULL,
	lat     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, node_id)
);
CREATE TABLE IF NOT EXISTS edges (
	run_id       TEXT NOT NULL,
	edge_id      BIGINT NOT NULL,
	from_node_id TEXT NOT NULL,
	to_node_id   TEXT NOT NULL,
	river_name   TEXT NOT NULL,
	length_km    DOUBLE PRECISION NOT NULL,
	wkt          TEXT NOT NULL,
	edge_type    INTEGER NOT NULL,
	PRIMARY KEY (run_id, edge_id)
);`

// Postgres writes networks to the "nodes" and "edges" tables.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and creates missing tables.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Name returns "postgres".
func (p *Postgres) Name() string { return "postgres" }

// Write copies all nodes and edges in a single transaction.
func (p *Postgres) Write(ctx context.Context, runID string, g *network.Graph) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"nodes"}, nodeColumns, pgx.CopyFromRows(nodeRows(runID, g))); err != nil {
		return fmt.Errorf("copy nodes: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"edges"}, edgeColumns, pgx.CopyFromRows(edgeRows(runID, g))); err != nil {
		return fmt.Errorf("copy edges: %w", err)
	}
	return tx.Commit(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

var _ Sink = (*Postgres)(nil)
