package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/safar/supershop/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type OrderPage struct {
	Items      []models.LocalOrder `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
	HasMore    bool                `json:"has_more"`
}

// OrderCursor points just past the last order of a page in
// (created_at DESC, id DESC) order.
type OrderCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

// TimeLayout is fixed width so text columns sort chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func EncodeCursor(cursor OrderCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// IsStart reports whether the cursor addresses the first page.
func (c OrderCursor) IsStart() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

// DecodeCursor returns the start cursor when encoded is empty.
func DecodeCursor(encoded string) (OrderCursor, error) {
	var cursor OrderCursor
	if encoded == "" {
		return cursor, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	if err := json.Unmarshal(data, &cursor); err != nil {
		return cursor, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return cursor, nil
}

// NormalizeLimit clamps a requested page size.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// BuildPage trims a limit+1 result set into a page.
func BuildPage(orders []models.LocalOrder, limit int) *OrderPage {
	page := &OrderPage{Items: orders}
	if len(orders) > limit {
		page.Items = orders[:limit]
		page.HasMore = true
		last := page.Items[limit-1]
		page.NextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt.Time, ID: last.ID})
	}
	if page.Items == nil {
		page.Items = []models.LocalOrder{}
	}
	return page
}
