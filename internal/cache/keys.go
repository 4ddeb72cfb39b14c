package cache

import (
	"context"
	"strconv"
	"time"
)

// Key namespaces. Every key the service writes starts with one of these.
const (
	userNamespace    = "socialhub:user:"
	revokedNamespace = "socialhub:revoked:"
)

// UserTTL bounds how stale a cached profile may get if an invalidation is lost.
const UserTTL = 5 * time.Minute

// UserKey is where the public profile of userID is cached.
func UserKey(userID uint) string {
	return userNamespace + strconv.FormatUint(uint64(userID), 10)
}

// RevokedSessionKey marks a logged-out session token by its jti.
func RevokedSessionKey(jti string) string {
	return revokedNamespace + jti
}

// InvalidateUser drops the cached profile of userID. A failed delete only
// leaves the entry to expire through UserTTL.
func InvalidateUser(ctx context.Context, userID uint) {
	if client == nil {
		return
	}
	client.Del(ctx, UserKey(userID))
}
