// Package redisstore keeps the client session in Redis. Values live under
// {prefix}:kv:{key}; each user's mirrored orders are a sorted set of order
// ids scored by creation time plus a hash of id to JSON payload.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/store"
)

const DefaultKeyPrefix = "supershop"

type Store struct {
	client *redis.Client
	prefix string
}

// Open parses a redis:// URL and checks the server is reachable.
func Open(ctx context.Context, rawURL string) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return New(client, DefaultKeyPrefix), nil
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) valueKey(key string) string {
	return fmt.Sprintf("%s:kv:%s", s.prefix, key)
}

func (s *Store) ordersKey(userID int64) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, store.KeyOrders, userID)
}

func (s *Store) payloadKey(userID int64) string {
	return fmt.Sprintf("%s:%s:%d:data", s.prefix, store.KeyOrders, userID)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.valueKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("get session value %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.valueKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("put session value %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.valueKey(key)
	}
	if err := s.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("delete session values: %w", err)
	}
	return nil
}

func (s *Store) AppendOrder(ctx context.Context, order models.LocalOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode local order: %w", err)
	}

	added, err := s.client.HSetNX(ctx, s.payloadKey(order.UserID), order.ID, payload).Result()
	if err != nil {
		return fmt.Errorf("store local order: %w", err)
	}
	if !added {
		return store.ErrDuplicateOrder
	}

	err = s.client.ZAdd(ctx, s.ordersKey(order.UserID), &redis.Z{
		Score:  float64(order.CreatedAt.UnixMilli()),
		Member: order.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("index local order: %w", err)
	}
	return nil
}

// ListOrders pages newest first. Equal scores come back in descending id
// order, matching the SQL backend.
func (s *Store) ListOrders(ctx context.Context, userID int64, encodedCursor string, limit int) (*store.OrderPage, error) {
	limit = store.NormalizeLimit(limit)

	cursor, err := store.DecodeCursor(encodedCursor)
	if err != nil {
		return nil, err
	}

	max := "+inf"
	var cursorScore float64
	if !cursor.IsStart() {
		cursorScore = float64(cursor.CreatedAt.UnixMilli())
		max = strconv.FormatFloat(cursorScore, 'f', -1, 64)
	}

	entries, err := s.client.ZRevRangeByScoreWithScores(ctx, s.ordersKey(userID), &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list local orders: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		id, _ := entry.Member.(string)
		if !cursor.IsStart() && entry.Score == cursorScore && id >= cursor.ID {
			continue
		}
		ids = append(ids, id)
		if len(ids) > limit {
			break
		}
	}
	if len(ids) == 0 {
		return store.BuildPage(nil, limit), nil
	}

	payloads, err := s.client.HMGet(ctx, s.payloadKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load local orders: %w", err)
	}

	orders := make([]models.LocalOrder, 0, len(payloads))
	for i, raw := range payloads {
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("load local order %s: payload missing", ids[i])
		}
		var order models.LocalOrder
		if err := json.Unmarshal([]byte(text), &order); err != nil {
			return nil, fmt.Errorf("decode local order %s: %w", ids[i], err)
		}
		orders = append(orders, order)
	}

	return store.BuildPage(orders, limit), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
