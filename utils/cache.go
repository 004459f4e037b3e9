package utils

import (
	"context"
	"encoding/json"
	"time"
)

// Listing caches are short-lived; mutations additionally invalidate by
// prefix, so a stale window only survives a missed invalidation.
const defaultCacheTTL = 10 * time.Minute

const cacheOpTimeout = 2 * time.Second

// CacheGetBytes returns the cached payload for a key, if Redis is up and the
// key exists. A miss and an outage look the same to the caller.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores a payload with the given TTL, best effort.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
		Sugar.Warnw("cache set failed", "key", key, "err", err)
	}
}

// CacheSetJSON marshals v and stores the JSON bytes.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSetBytes(key, b, ttl)
}

// InvalidateByPrefix deletes every key under a prefix using SCAN, so listing
// caches can be dropped wholesale after a mutation.
func InvalidateByPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var cursor uint64
	for rounds := 0; rounds < 16; rounds++ {
		keys, next, err := rc.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			if err := rc.Del(ctx, keys...).Err(); err != nil && Sugar != nil {
				Sugar.Warnw("cache invalidation failed", "prefix", prefix, "err", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
