package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the world in a SQLite database with one row per location and one per
// saved player.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, timeout: 30 * time.Second}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS locations (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			name TEXT PRIMARY KEY,
			location TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Save replaces the stored world with snap in one transaction.
func (s *SQLiteStore) Save(snap *Snapshot) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"meta", "locations", "players"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for k, v := range snap.Meta {
		if _, err = tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES(?, ?)`, k, string(v)); err != nil {
			return fmt.Errorf("writing meta %q: %w", k, err)
		}
	}

	for i, loc := range snap.Locations {
		var b []byte
		if b, err = json.Marshal(loc); err != nil {
			return fmt.Errorf("marshalling location %q: %w", loc.Name, err)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO locations(name, position, json) VALUES(?, ?, ?)`, loc.Name, i, string(b)); err != nil {
			return fmt.Errorf("writing location %q: %w", loc.Name, err)
		}
	}

	for name, p := range snap.Players {
		var b []byte
		if b, err = json.Marshal(p.Player); err != nil {
			return fmt.Errorf("marshalling player %q: %w", name, err)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO players(name, location, json) VALUES(?, ?, ?)`, name, p.Location, string(b)); err != nil {
			return fmt.Errorf("writing player %q: %w", name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap := &Snapshot{Meta: Meta{}, Players: map[string]PlayerEntry{}}

	metaRows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("querying meta: %w", err)
	}
	defer func() { _ = metaRows.Close() }()
	for metaRows.Next() {
		var k, v string
		if err := metaRows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		snap.Meta[k] = json.RawMessage(v)
	}
	if err := metaRows.Err(); err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}

	locRows, err := s.db.QueryContext(ctx, `SELECT json FROM locations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer func() { _ = locRows.Close() }()
	for locRows.Next() {
		var raw string
		if err := locRows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		var rec LocationRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling location: %w", err)
		}
		snap.Locations = append(snap.Locations, rec)
	}
	if err := locRows.Err(); err != nil {
		return nil, fmt.Errorf("reading locations: %w", err)
	}
	if len(snap.Locations) == 0 {
		return nil, ErrNoSnapshot
	}

	playerRows, err := s.db.QueryContext(ctx, `SELECT name, location, json FROM players`)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer func() { _ = playerRows.Close() }()
	for playerRows.Next() {
		var name, loc, raw string
		if err := playerRows.Scan(&name, &loc, &raw); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		entry := PlayerEntry{Location: loc}
		if err := json.Unmarshal([]byte(raw), &entry.Player); err != nil {
			return nil, fmt.Errorf("unmarshalling player %q: %w", name, err)
		}
		snap.Players[name] = entry
	}
	if err := playerRows.Err(); err != nil {
		return nil, fmt.Errorf("reading players: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("validating snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
