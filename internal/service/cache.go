package service

import (
	"context"
	"time"
)

// Cache is the read-through cache surface used by the catalog and
// analytics services, backed by redis in production.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Cache key layout.
const (
	catalogCachePrefix = "catalog:"
	dashboardCacheKey  = "analytics:dashboard"
)
