package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/supershop/internal/config"
	"github.com/safar/supershop/internal/database"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/migrations"
)

// SQLStore keeps the session in SQLite or Postgres.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL connects using cfg.URL and brings the schema up to date.
func OpenSQL(ctx context.Context, cfg *config.StoreConfig) (*SQLStore, error) {
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := database.Migrate(ctx, db, migrations.FS, "up"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an already migrated database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	return GetValue(ctx, s.db, key)
}

func (s *SQLStore) Put(ctx context.Context, key, value string) error {
	return PutValue(ctx, s.db, key, value)
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	return DeleteValues(ctx, s.db, keys...)
}

func (s *SQLStore) AppendOrder(ctx context.Context, order models.LocalOrder) error {
	return InsertLocalOrder(ctx, s.db, order)
}

func (s *SQLStore) ListOrders(ctx context.Context, userID int64, cursor string, limit int) (*OrderPage, error) {
	return ListLocalOrders(ctx, s.db, userID, cursor, limit)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
