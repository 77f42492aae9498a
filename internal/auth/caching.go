package auth

import (
	"context"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
)

// CachingProvider memoizes remote token verification so each bearer token
// costs one introspection call per TTL instead of one per request. A
// revoked token therefore stays accepted for at most the TTL; entries are
// keyed by token and age out rather than being invalidated.
type CachingProvider struct {
	inner   Provider
	results *cache.Cache
	ttl     time.Duration
}

func NewCachingProvider(inner Provider, results *cache.Cache, ttl time.Duration) *CachingProvider {
	return &CachingProvider{inner: inner, results: results, ttl: ttl}
}

func (p *CachingProvider) ValidateTokenLocal(token string) (*internal.User, error) {
	return p.inner.ValidateTokenLocal(token)
}

func (p *CachingProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	value, err := p.results.GetOrCompute(token, "user:"+token, p.ttl, func() (any, error) {
		return p.inner.ValidateTokenRemote(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return value.(*internal.User), nil
}

var _ Provider = (*CachingProvider)(nil)
