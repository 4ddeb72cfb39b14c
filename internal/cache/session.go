package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when an operation needs Redis and none is configured.
var ErrUnavailable = errors.New("cache unavailable")

// RevokeSession marks the session with the given jti as revoked until ttl
// elapses. ttl should be the token's remaining lifetime.
func RevokeSession(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return ErrUnavailable
	}
	if jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedSessionKey(jti), "1", ttl).Err()
}

// IsSessionRevoked reports whether jti was revoked. A missing Redis means no
// revocation list exists, so nothing is considered revoked.
func IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, RevokedSessionKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
