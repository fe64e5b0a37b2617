package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/supershop/internal/database"
)

func GetValue(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		"SELECT value FROM session_values WHERE name = $1",
		key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get session value %s: %w", key, err)
	}
	return value, nil
}

func PutValue(ctx context.Context, db *sql.DB, key, value string) error {
	return database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_values (name, value, updated_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE
			 SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, FormatTime(time.Now()))
		if err != nil {
			return fmt.Errorf("put session value %s: %w", key, err)
		}
		return nil
	})
}

// DeleteValues removes every listed key in one transaction. Missing keys
// are not an error.
func DeleteValues(ctx context.Context, db *sql.DB, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM session_values WHERE name = $1", key); err != nil {
				return fmt.Errorf("delete session value %s: %w", key, err)
			}
		}
		return nil
	})
}
