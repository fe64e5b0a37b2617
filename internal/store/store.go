// Package store persists the client-side session: the signed-in user, the
// auth token and the mirror of locally placed orders.
package store

import (
	"context"
	"errors"

	"github.com/safar/supershop/internal/models"
)

const (
	KeyUser   = "user"
	KeyToken  = "token"
	KeyOrders = "orders"
)

var (
	ErrNotFound       = errors.New("key not found")
	ErrDuplicateOrder = errors.New("order already mirrored")
	ErrInvalidCursor  = errors.New("invalid cursor")
)

// KV is the flat key-value part of the session store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// OrderMirror is append-only. Pages come back newest first.
type OrderMirror interface {
	AppendOrder(ctx context.Context, order models.LocalOrder) error
	ListOrders(ctx context.Context, userID int64, cursor string, limit int) (*OrderPage, error)
}

type Backend interface {
	KV
	OrderMirror
	Close() error
}

// AllOrders walks every page of the mirror for userID.
func AllOrders(ctx context.Context, m OrderMirror, userID int64) ([]models.LocalOrder, error) {
	var all []models.LocalOrder
	cursor := ""
	for {
		page, err := m.ListOrders(ctx, userID, cursor, DefaultPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore {
			return all, nil
		}
		cursor = page.NextCursor
	}
}
