package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Reconcile aligns the live users table with the registry. It creates the
// base table if absent, then adds every registry column missing from the live
// column set, with its declared default. Columns are never dropped, renamed
// or narrowed.
//
// Idempotent and safe to call from both processes concurrently and on every
// request: existence is checked before each add, and a lost add race (the
// other process added the same column first) is detected by re-checking the
// live column set rather than by trusting the driver error.
func Reconcile(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	existing, err := tableColumns(ctx, db)
	if err != nil {
		return err
	}

	for _, col := range Columns {
		if existing[col.Name] {
			continue
		}

		_, err := db.ExecContext(ctx, "ALTER TABLE users ADD COLUMN "+col.DDL())
		if err == nil {
			continue
		}

		// Another process may have added the column between our
		// introspection and the ALTER. Re-check before failing.
		live, recheckErr := tableColumns(ctx, db)
		if recheckErr == nil && live[col.Name] {
			continue
		}
		return fmt.Errorf("add column %s: %w", col.Name, err)
	}

	return nil
}

func createTableSQL() string {
	var defs []string
	for _, col := range Columns {
		if col.Base {
			defs = append(defs, col.DDL())
		}
	}
	return "CREATE TABLE IF NOT EXISTS users (\n\t" + strings.Join(defs, ",\n\t") + "\n)"
}

// tableColumns returns the live column set of the users table.
func tableColumns(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info(users)")
	if err != nil {
		return nil, fmt.Errorf("introspect users table: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}

	return existing, nil
}
