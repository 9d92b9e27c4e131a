package config

import (
	"context"

	"github.com/matzehuels/extgraph/pkg/cache"
)

// Open creates the configured byte cache.
//
// A file backend without a directory uses DefaultCacheDir. When that
// directory cannot be determined, caching is disabled rather than failing.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendMemory:
		mc, err := cache.NewMemoryCache(c.Size)
		if err != nil {
			return nil, err
		}
		return mc, nil
	case BackendFile:
		dir := c.Dir
		if dir == "" {
			d, err := DefaultCacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		rc := cache.DefaultRedisConfig(c.RedisAddr)
		rc.Password = c.RedisPassword
		rc.Database = c.RedisDB
		if c.RedisPrefix != "" {
			rc.Prefix = c.RedisPrefix
		}
		rdb, err := cache.NewRedisCache(ctx, rc)
		if err != nil {
			return nil, err
		}
		return rdb, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// Keyer returns the cache keyer for the configured scope, or nil for the
// default keyer.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Scope == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, c.Scope+":")
}
