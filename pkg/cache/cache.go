package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is a small shared key-value store with best-effort locks.
// The drift scheduler uses TryLock to elect a single scanning replica;
// Set/Get hold small JSON snapshots shared between instances.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// TryLock acquires key for ttl if nobody else holds it. The lock is
	// advisory: expiry releases it even if Unlock is never called.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
