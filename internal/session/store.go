package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-study-planner/internal/config"
	"ai-study-planner/internal/planner"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired result IDs.
var ErrNotFound = errors.New("result not found or expired")

// ResultStore keeps finished batches for a limited time so they can be
// rendered on a separate request.
type ResultStore interface {
	Save(ctx context.Context, batch planner.Batch) (string, error)
	Get(ctx context.Context, id string) (planner.Batch, error)
	Close() error
}

// NewFromConfig returns a Redis-backed store when REDIS_ADDR is set and an
// in-memory one otherwise.
func NewFromConfig(ctx context.Context, cfg *config.Config) (ResultStore, error) {
	if cfg.RedisAddr == "" {
		return NewMemoryStore(cfg.ResultTTL), nil
	}
	return NewRedisStore(ctx, cfg.RedisAddr, cfg.ResultTTL)
}

func newID() string {
	return uuid.NewString()
}

func encode(batch planner.Batch) ([]byte, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}
	return data, nil
}

func decode(data []byte) (planner.Batch, error) {
	var batch planner.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return planner.Batch{}, fmt.Errorf("failed to decode batch: %w", err)
	}
	return batch, nil
}
