package utils

import (
	"context"
	"encoding/json"
	"time"
)

// Response caching for anonymous page loads. Keys follow the
// "cache:<area>:..." convention so write paths can drop a whole area by
// prefix without tracking individual keys.

const cacheOpTimeout = 2 * time.Second

func cacheCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cacheOpTimeout)
}

// CacheGetBytes looks up a key. A disabled cache, a miss and a redis error
// all come back as ok=false; callers fall through to the database.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// CacheSetJSON marshals v and stores it under key for ttl. Failures are
// swallowed after a log line; a cold cache only costs one extra query.
func CacheSetJSON(key string, v interface{}, ttl time.Duration) {
	rc := GetRedis()
	if rc == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("cache set %s: %v", key, err)
	}
}

// InvalidateByPrefix drops every key under prefix. SCAN keeps redis
// responsive on larger keyspaces; the round cap keeps a write request from
// stalling behind cache bookkeeping.
func InvalidateByPrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var cursor uint64
	for round := 0; round < 10; round++ {
		keys, next, err := rc.Scan(ctx, cursor, prefix+"*", 500).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			_ = rc.Del(ctx, keys...).Err()
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
