package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"socialhub/internal/middleware"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Aside implements read-through caching: it decodes key into dest when
// present, otherwise runs load (which must fill dest) and stores the result
// for ttl. Without a Redis client it simply calls load. Cache failures are
// logged and never fail the read.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		// Undecodable entry: drop it and fall through to the loader.
		client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		middleware.LoggerFromContext(ctx).Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	if err := load(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.LoggerFromContext(ctx).Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}
