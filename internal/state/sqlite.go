package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jonathan/dropwatch/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
    id         TEXT PRIMARY KEY,
    last_seen  INTEGER NOT NULL,
    record     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS targets (
    name       TEXT PRIMARY KEY,
    record     TEXT NOT NULL
);`

// sqliteExtensions select the SQLite backend when a state path ends in one of them.
var sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}

// IsSQLitePath reports whether path names a SQLite database rather than a JSON file.
func IsSQLitePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range sqliteExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SQLiteBackend keeps the snapshot in a local SQLite database, one JSON record
// per row. Write replaces both tables inside one transaction.
type SQLiteBackend struct {
	path  string
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create state tables: %w", err)
	}
	return &SQLiteBackend{path: cleanPath, sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (b *SQLiteBackend) Close() {
	if b == nil || b.sqlDB == nil {
		return
	}
	_ = b.sqlDB.Close()
}

// Name identifies the backend.
func (b *SQLiteBackend) Name() string {
	return "sqlite:" + b.path
}

// Read loads every row. An empty database yields (nil, nil).
func (b *SQLiteBackend) Read(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	itemRows, err := b.sqlDB.QueryContext(ctx, `SELECT id, record FROM items`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var id, raw string
		if err := itemRows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var rec types.ItemRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &LoadError{Source: b.Name(), Message: fmt.Sprintf("item %s is not valid JSON", id), Corrupt: true, Cause: err}
		}
		snap.Items[types.ItemIdentity(id)] = rec
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	targetRows, err := b.sqlDB.QueryContext(ctx, `SELECT name, record FROM targets`)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer targetRows.Close()
	for targetRows.Next() {
		var name, raw string
		if err := targetRows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		var rec types.TargetRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &LoadError{Source: b.Name(), Message: fmt.Sprintf("target %s is not valid JSON", name), Corrupt: true, Cause: err}
		}
		snap.Targets[name] = rec
	}
	if err := targetRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}

	if len(snap.Items) == 0 && len(snap.Targets) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Write replaces both tables with the snapshot contents.
func (b *SQLiteBackend) Write(ctx context.Context, snap *Snapshot) error {
	tx, err := b.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM targets`); err != nil {
		return fmt.Errorf("clear targets: %w", err)
	}

	for id, rec := range snap.Items {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, last_seen, record) VALUES (?, ?, ?)`,
			string(id), rec.LastSeen.UnixMilli(), string(raw),
		); err != nil {
			return fmt.Errorf("insert item %s: %w", id, err)
		}
	}
	for name, rec := range snap.Targets {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal target %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO targets (name, record) VALUES (?, ?)`,
			name, string(raw),
		); err != nil {
			return fmt.Errorf("insert target %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}
