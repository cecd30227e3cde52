package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"devprep/backend/utils"

	goredis "github.com/redis/go-redis/v9"
)

const scanBatch = 200

// Redis stores entries under a key prefix so pattern invalidation only scans
// this application's keys.
type Redis struct {
	log    *utils.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedis(addr, prefix string, log *utils.Logger) (*Redis, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisFromClient(rdb, prefix, log), nil
}

func NewRedisFromClient(rdb *goredis.Client, prefix string, log *utils.Logger) *Redis {
	return &Redis{
		log:    log.With("service", "RedisCache"),
		rdb:    rdb,
		prefix: prefix,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) InvalidatePattern(ctx context.Context, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	var doomed []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		if re.MatchString(strings.TrimPrefix(full, r.prefix)) {
			doomed = append(doomed, full)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(doomed); start += scanBatch {
		end := start + scanBatch
		if end > len(doomed) {
			end = len(doomed)
		}
		if err := r.rdb.Del(ctx, doomed[start:end]...).Err(); err != nil {
			return err
		}
	}
	if len(doomed) > 0 {
		r.log.Debug("invalidated cache keys", "pattern", pattern, "count", len(doomed))
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
