package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"slidecast-go/internal/deck"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements deck storage using Redis. Deck documents are
// JSON strings; a separate hash holds per-deck summaries so listing
// never has to pull image bytes.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a new Redis storage backend
func NewRedisBackend(addr, password string, db int, prefix string) (*RedisBackend, error) {
	if prefix == "" {
		prefix = "slidecast:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (r *RedisBackend) deckKey(id string) string { return r.prefix + "deck:" + id }
func (r *RedisBackend) indexKey() string         { return r.prefix + "deck_index" }
func (r *RedisBackend) usageKey(key string) string {
	return r.prefix + "usage:" + key
}
func (r *RedisBackend) usageSetKey() string { return r.prefix + "usage_keys" }

// Initialize tests the Redis connection
func (r *RedisBackend) Initialize(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisBackend) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *RedisBackend) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) SaveDeck(ctx context.Context, d *deck.Deck) error {
	if err := d.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	summary, err := json.Marshal(d.Summarize())
	if err != nil {
		return fmt.Errorf("marshal deck summary: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.deckKey(d.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return &ErrConflict{Key: d.ID}
	}
	return r.client.HSet(ctx, r.indexKey(), d.ID, summary).Err()
}

func (r *RedisBackend) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	data, err := r.client.Get(ctx, r.deckKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &ErrNotFound{Key: id}
		}
		return nil, err
	}
	var d deck.Deck
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("corrupted deck %s: %w", id, err)
	}
	return &d, nil
}

func (r *RedisBackend) ListDecks(ctx context.Context) ([]deck.Summary, error) {
	entries, err := r.client.HGetAll(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]deck.Summary, 0, len(entries))
	for _, raw := range entries {
		var s deck.Summary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			// stale index entry; skip it
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *RedisBackend) DeleteDeck(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.deckKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ErrNotFound{Key: id}
	}
	return r.client.HDel(ctx, r.indexKey(), id).Err()
}

// Usage stats operations

func (r *RedisBackend) IncrementUsage(ctx context.Context, key string, field string, delta int64) error {
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, r.usageKey(key), field, delta)
	pipe.SAdd(ctx, r.usageSetKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisBackend) GetUsage(ctx context.Context, key string) (map[string]int64, error) {
	fields, err := r.client.HGetAll(ctx, r.usageKey(key)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(fields))
	for f, v := range fields {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[f] = n
	}
	return out, nil
}

func (r *RedisBackend) ResetUsage(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.usageKey(key))
	pipe.SRem(ctx, r.usageSetKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisBackend) ListUsage(ctx context.Context) (map[string]map[string]int64, error) {
	keys, err := r.client.SMembers(ctx, r.usageSetKey()).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]int64, len(keys))
	for _, key := range keys {
		fields, err := r.GetUsage(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = fields
	}
	return out, nil
}
