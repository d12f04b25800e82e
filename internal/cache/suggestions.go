// Package cache provides a Redis-backed cache for the latency-sensitive
// suggestion path. Cache failures are invisible to callers: a miss is
// returned instead.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache stores suggestion lists keyed by prefix and limit.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSuggestionCache creates a suggestion cache and verifies the connection.
func NewSuggestionCache(ctx context.Context, addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*SuggestionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &SuggestionCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func key(prefix string, limit int) string {
	return fmt.Sprintf("suggest:v1:%d:%s", limit, strings.ToLower(prefix))
}

// Get returns the cached suggestions for the prefix, and whether they were
// present. Redis errors are logged and reported as a miss.
func (c *SuggestionCache) Get(ctx context.Context, prefix string, limit int) ([]string, bool) {
	data, err := c.client.Get(ctx, key(prefix, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("suggestion cache get failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var suggestions []string
	if err := json.Unmarshal(data, &suggestions); err != nil {
		c.logger.Warn("suggestion cache decode failed", slog.String("error", err.Error()))
		return nil, false
	}
	return suggestions, true
}

// Set stores the suggestions for the prefix with the configured TTL.
func (c *SuggestionCache) Set(ctx context.Context, prefix string, limit int, suggestions []string) {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(prefix, limit), data, c.ttl).Err(); err != nil {
		c.logger.Warn("suggestion cache set failed", slog.String("error", err.Error()))
	}
}

// Ping checks Redis connectivity.
func (c *SuggestionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (c *SuggestionCache) Close() error {
	return c.client.Close()
}
