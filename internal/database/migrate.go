package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Migrate applies the NNN_name.up.sql or .down.sql files found at the root
// of fsys. Up skips versions already recorded in schema_migrations, down
// reverts recorded versions newest first. It returns the number of files run.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, direction string) (int, error) {
	if direction != "up" && direction != "down" {
		return 0, ErrUnknownDirection
	}

	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("read migration directory: %w", err)
	}

	suffix := fmt.Sprintf(".%s.sql", direction)
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	if direction == "down" {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, filename := range files {
		version := strings.TrimSuffix(filename, suffix)
		if (direction == "up") == applied[version] {
			continue
		}

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return ran, fmt.Errorf("read migration file %s: %w", filename, err)
		}

		err = WithTransaction(ctx, db, DefaultTxOptions(), func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("execute migration %s: %w", filename, err)
			}
			if direction == "up" {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)",
					version, time.Now().UTC().Format(time.RFC3339))
			} else {
				_, err = tx.ExecContext(ctx,
					"DELETE FROM schema_migrations WHERE version = $1", version)
			}
			if err != nil {
				return fmt.Errorf("record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return ran, err
		}
		ran++
	}

	return ran, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
