package resolver

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/principal"
)

var CacheSize = 100

// Cache is a [Resolver] that keeps successful resolutions in memory. Failures
// are never cached.
type Cache struct {
	resolver Resolver
	data     *lru.Cache[string, principal.Verifier]
}

func (c *Cache) Resolve(ctx context.Context, id did.DID) (principal.Verifier, error) {
	if v, ok := c.data.Get(id.String()); ok {
		return v, nil
	}
	v, err := c.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	c.data.Add(id.String(), v)
	return v, nil
}

var _ Resolver = (*Cache)(nil)

// NewCache wraps a resolver with an in memory LRU cache. The size parameter
// controls the maximum number of DIDs that can be cached. Pass a value less
// than 1 to use the default cache size [CacheSize].
func NewCache(r Resolver, size int) (*Cache, error) {
	if size <= 0 {
		size = CacheSize
	}
	cache, err := lru.New[string, principal.Verifier](size)
	if err != nil {
		return nil, fmt.Errorf("creating resolver LRU: %w", err)
	}
	return &Cache{resolver: r, data: cache}, nil
}
