package cache

import (
	"context"
	"time"

	pkgcache "github.com/syncupstack/syncup-engine/pkg/cache"
)

// MemoryProvider adapts the in-memory TTL cache to the Provider
// interface. Used as a single-process fallback and as a test double.
type MemoryProvider struct {
	cache *pkgcache.MemoryCache
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{cache: pkgcache.NewMemoryCache()}
}

// Get returns ErrCacheMiss for absent or expired keys.
func (p *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := p.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return value, nil
}

// Set stores the payload with the given TTL.
func (p *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	p.cache.Set(key, value, ttl)
	return nil
}

// Del removes the key.
func (p *MemoryProvider) Del(_ context.Context, key string) error {
	p.cache.Delete(key)
	return nil
}

// Close is a no-op for the in-memory provider.
func (p *MemoryProvider) Close() error { return nil }
