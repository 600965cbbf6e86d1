// Package db owns the shared SQLite handle used by both backend processes.
//
// The database file is written concurrently by the bot and the API server, so
// the connection is configured for multi-writer tolerance:
//
//   - WAL mode: readers are not blocked by the other process's writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait up to 5 seconds for a cross-process lock
//
// One long-lived handle is opened per process and reused for every operation;
// the pool is capped at a single connection so in-process statements never
// contend with each other for the write lock.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open creates or opens the SQLite database at the given path.
// Safe to call from both processes against the same file.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection per process
	// avoids in-process SQLITE_BUSY on the hot path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}
