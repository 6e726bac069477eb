package cache

import (
	"context"
	"time"
)

// NullCacheValue marks the cached absence of data so repeated lookups of a
// missing snapshot do not fall through to object storage every time.
const NullCacheValue = "$NULL$"

// GetWithCached implements the cache-aside pattern with null value caching.
// On a miss it calls fn, stores the result (or NullCacheValue when isEmpty
// reports an empty result, under the shorter emptyTTL) and returns it. Cache
// errors degrade to the fetch path; they never fail the call.
func GetWithCached[T any](
	ctx context.Context,
	c Cache,
	key string,
	ttl time.Duration,
	emptyTTL time.Duration,
	isEmpty func(T) bool,
	marshal func(T) string,
	unmarshal func(string) (T, error),
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T

	if cached, err := c.Get(ctx, key); err == nil && cached != "" {
		if cached == NullCacheValue {
			return zero, nil
		}
		if result, err := unmarshal(cached); err == nil {
			return result, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		_ = c.Del(ctx, key)
	}

	result, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	if isEmpty(result) {
		_ = c.Set(ctx, key, NullCacheValue, emptyTTL)
		return result, nil
	}
	_ = c.Set(ctx, key, marshal(result), ttl)
	return result, nil
}
