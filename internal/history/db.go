// Package history keeps a local journal of attendance punches the
// remote ledger has already acknowledged, so the kiosk can show recent
// activity without another round trip.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the journal database at the given path.
// If path is ":memory:", uses an in-memory database.
// Sets WAL mode and enables foreign keys.
// Runs migrations automatically.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS punches (
		id            TEXT PRIMARY KEY,
		employee_uid  INTEGER NOT NULL,
		action        TEXT NOT NULL CHECK(action IN ('check_in','check_out')),
		project_id    INTEGER NOT NULL,
		project_label TEXT NOT NULL DEFAULT '',
		task_id       INTEGER NOT NULL,
		task_label    TEXT NOT NULL DEFAULT '',
		observations  TEXT NOT NULL DEFAULT '',
		progress      INTEGER,
		latitude      REAL NOT NULL,
		longitude     REAL NOT NULL,
		punched_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_punches_punched_at ON punches(punched_at)`,
}
