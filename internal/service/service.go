// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"
	"errors"
	"time"

	"socialhub/internal/auth"
	"socialhub/internal/cache"
	"socialhub/internal/mail"
	"socialhub/internal/middleware"

	"go.uber.org/zap"
)

// Mailer queues an email for background delivery.
type Mailer interface {
	Dispatch(msg mail.Message)
}

// RevokeFunc marks a session id as revoked for ttl.
type RevokeFunc func(ctx context.Context, jti string, ttl time.Duration) error

// revokeSession blocks the session described by claims until it would have
// expired anyway. Revocation is best effort: without Redis the cookie is
// still cleared, so only a copied token outlives logout.
func revokeSession(ctx context.Context, revoke RevokeFunc, claims *auth.Claims, now time.Time) {
	if claims == nil || claims.ExpiresAt == nil || revoke == nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(now)
	if ttl <= 0 {
		return
	}
	if err := revoke(ctx, claims.ID, ttl); err != nil {
		log := middleware.LoggerFromContext(ctx)
		if errors.Is(err, cache.ErrUnavailable) {
			log.Debug("session revocation skipped, no redis")
			return
		}
		log.Warn("session revocation failed", zap.String("jti", claims.ID), zap.Error(err))
	}
}
