package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-study-planner/internal/planner"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "study-planner:result:"

// RedisStore keeps batches in Redis with an expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	log.Printf("Result store connected to redis at %s", addr)
	return &RedisStore{client: rdb, ttl: ttl}, nil
}

func (r *RedisStore) Save(ctx context.Context, batch planner.Batch) (string, error) {
	data, err := encode(batch)
	if err != nil {
		return "", err
	}
	id := newID()
	if err := r.client.Set(ctx, keyPrefix+id, data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store result: %w", err)
	}
	return id, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (planner.Batch, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return planner.Batch{}, ErrNotFound
	}
	if err != nil {
		return planner.Batch{}, fmt.Errorf("failed to load result: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
