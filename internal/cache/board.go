// Package cache implements a Redis-backed cache for the startup challenge
// board. The cache is strictly best-effort: a nil *BoardCache or a Redis
// failure degrades to fetching straight from the repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/innobridge/platform/internal/models"
)

const boardKey = "innobridge:board:challenges"

// BoardCache caches the unfiltered challenge board
type BoardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBoardCache connects to Redis and returns a board cache
func NewBoardCache(address, password string, db int, ttl time.Duration) (*BoardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &BoardCache{client: client, ttl: ttl}, nil
}

// Get returns the cached board, or (nil, false) on miss or error
func (c *BoardCache) Get(ctx context.Context) ([]*models.Challenge, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, boardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("board cache read failed", "error", err)
		}
		return nil, false
	}

	var challenges []*models.Challenge
	if err := json.Unmarshal(data, &challenges); err != nil {
		slog.Warn("board cache payload corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}

	return challenges, true
}

// Set stores the board with the configured TTL
func (c *BoardCache) Set(ctx context.Context, challenges []*models.Challenge) {
	if c == nil {
		return
	}

	data, err := json.Marshal(challenges)
	if err != nil {
		slog.Warn("board cache encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, boardKey, data, c.ttl).Err(); err != nil {
		slog.Warn("board cache write failed", "error", err)
	}
}

// Invalidate drops the cached board
func (c *BoardCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, boardKey).Err(); err != nil {
		slog.Warn("board cache invalidate failed", "error", err)
	}
}

// Ping checks Redis connectivity
func (c *BoardCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *BoardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
