// Package cache is the read-through memoization port used in front of
// expensive aggregate reads, with a process-local and a Redis adapter.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a best-effort key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	// InvalidatePattern removes every key matching the regular expression.
	InvalidatePattern(ctx context.Context, pattern string) error
}

// GetOrLoad returns the cached value for key when a fresh entry exists and
// otherwise calls producer, stores its result for ttl and returns it. Cache
// failures degrade to calling producer; producer errors are never cached.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if c != nil {
		if raw, ok, err := c.Get(ctx, key); err == nil && ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	value, err := producer(ctx)
	if err != nil {
		return value, err
	}

	if c != nil {
		if raw, err := json.Marshal(value); err == nil {
			_ = c.Set(ctx, key, raw, ttl)
		}
	}
	return value, nil
}
