package source

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/arloliu/grouper/types"
)

const cachedRosterKey = "roster"

// Cached wraps a roster provider and reuses its last successful result for a TTL.
//
// Failures are never cached; the next call retries the wrapped provider.
// Invalidate drops the cached roster so an explicit refresh always reaches
// the underlying source. A Cached built with a non-positive TTL holds no
// cache and forwards every call.
type Cached struct {
	provider types.RosterProvider
	cache    *cache.Cache
}

var _ types.RosterProvider = (*Cached)(nil)

// NewCached creates a caching roster provider.
//
// Parameters:
//   - provider: Underlying provider
//   - ttl: How long a successful roster is reused; non-positive disables caching
//
// Returns:
//   - *Cached: Caching provider
//
// Example:
//
//	src := source.NewCached(notion, 5*time.Minute)
func NewCached(provider types.RosterProvider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		return &Cached{provider: provider}
	}

	return &Cached{
		provider: provider,
		cache:    cache.New(ttl, 2*ttl),
	}
}

// ListPeople returns the cached roster or loads it from the wrapped provider.
func (c *Cached) ListPeople(ctx context.Context) ([]types.Person, error) {
	if c.cache == nil {
		return c.provider.ListPeople(ctx)
	}

	if data, found := c.cache.Get(cachedRosterKey); found {
		if people, ok := data.([]types.Person); ok {
			return clonePeople(people), nil
		}
	}

	people, err := c.provider.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(cachedRosterKey, clonePeople(people))

	return people, nil
}

// Invalidate drops the cached roster.
func (c *Cached) Invalidate() {
	if c.cache == nil {
		return
	}
	c.cache.Delete(cachedRosterKey)
}

// Unwrap returns the wrapped provider.
func (c *Cached) Unwrap() types.RosterProvider {
	return c.provider
}

func clonePeople(people []types.Person) []types.Person {
	out := make([]types.Person, len(people))
	copy(out, people)

	return out
}
