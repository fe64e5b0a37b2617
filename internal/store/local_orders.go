package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/safar/supershop/internal/database"
	"github.com/safar/supershop/internal/models"
)

// InsertLocalOrder appends order to the mirror. An order with the same
// (user, id) pair is rejected with ErrDuplicateOrder.
func InsertLocalOrder(ctx context.Context, db *sql.DB, order models.LocalOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode local order: %w", err)
	}

	return database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM local_orders WHERE user_id = $1 AND id = $2)",
			order.UserID, order.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check local order exists: %w", err)
		}
		if exists {
			return ErrDuplicateOrder
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO local_orders (user_id, id, total, status, payment_method, payload, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.UserID, order.ID, order.Total.String(), order.Status,
			order.PaymentMethod, string(payload), FormatTime(order.CreatedAt.Time))
		if err != nil {
			return fmt.Errorf("insert local order: %w", err)
		}
		return nil
	})
}

// ListLocalOrders returns one page of userID's mirrored orders, newest first.
func ListLocalOrders(ctx context.Context, db *sql.DB, userID int64, encodedCursor string, limit int) (*OrderPage, error) {
	limit = NormalizeLimit(limit)

	cursor, err := DecodeCursor(encodedCursor)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if cursor.IsStart() {
		rows, err = db.QueryContext(ctx,
			`SELECT payload FROM local_orders
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			userID, limit+1)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT payload FROM local_orders
			 WHERE user_id = $1
			   AND (created_at < $2 OR (created_at = $2 AND id < $3))
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			userID, FormatTime(cursor.CreatedAt), cursor.ID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("list local orders: %w", err)
	}
	defer rows.Close()

	var orders []models.LocalOrder
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan local order: %w", err)
		}

		var order models.LocalOrder
		if err := json.Unmarshal([]byte(payload), &order); err != nil {
			return nil, fmt.Errorf("decode local order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate local orders: %w", err)
	}

	return BuildPage(orders, limit), nil
}
