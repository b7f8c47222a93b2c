package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/dropwatch/internal/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dropwatch_items (
    id         TEXT PRIMARY KEY,
    last_seen  TIMESTAMPTZ NOT NULL,
    record     JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS dropwatch_targets (
    name       TEXT PRIMARY KEY,
    record     JSONB NOT NULL
);`

// PostgresBackend keeps the snapshot in two JSONB tables. Write replaces both
// tables inside one transaction.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it, and ensures the schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create state tables: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

// Close closes the connection pool
func (b *PostgresBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// Name identifies the backend.
func (b *PostgresBackend) Name() string {
	return "postgres"
}

// Read loads every item and target row. Empty tables yield (nil, nil) so that
// a fresh database behaves like a missing state file.
func (b *PostgresBackend) Read(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	rows, err := b.pool.Query(ctx, `SELECT id, record FROM dropwatch_items`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		var rec types.ItemRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rows.Close()
			return nil, &LoadError{Source: b.Name(), Message: fmt.Sprintf("item %s is not valid JSON", id), Corrupt: true, Cause: err}
		}
		snap.Items[types.ItemIdentity(id)] = rec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	rows, err = b.pool.Query(ctx, `SELECT name, record FROM dropwatch_targets`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	for rows.Next() {
		var name string
		var raw []byte
		if err := rows.Scan(&name, &raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		var rec types.TargetRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rows.Close()
			return nil, &LoadError{Source: b.Name(), Message: fmt.Sprintf("target %s is not valid JSON", name), Corrupt: true, Cause: err}
		}
		snap.Targets[name] = rec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate targets: %w", err)
	}

	if len(snap.Items) == 0 && len(snap.Targets) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Write replaces both tables with the snapshot contents.
func (b *PostgresBackend) Write(ctx context.Context, snap *Snapshot) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM dropwatch_items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM dropwatch_targets`); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}

	batch := &pgx.Batch{}
	for id, rec := range snap.Items {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal item %s: %w", id, err)
		}
		batch.Queue(`INSERT INTO dropwatch_items (id, last_seen, record) VALUES ($1, $2, $3)`,
			string(id), rec.LastSeen, raw)
	}
	for name, rec := range snap.Targets {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal target %s: %w", name, err)
		}
		batch.Queue(`INSERT INTO dropwatch_targets (name, record) VALUES ($1, $2)`, name, raw)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert state rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}
