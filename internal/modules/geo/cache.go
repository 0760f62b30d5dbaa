package geo

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KV is the subset of *redis.Client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached keeps successful lookups in Redis. Redis errors are logged and the
// lookup goes straight to the wrapped geocoder.
type Cached struct {
	next Geocoder
	kv   KV
	ttl  time.Duration
}

func NewCached(next Geocoder, kv KV, ttl time.Duration) *Cached {
	return &Cached{next: next, kv: kv, ttl: ttl}
}

func cacheKey(address string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(strings.Fields(address), " "))))
	return "geocode:" + hex.EncodeToString(sum[:])
}

func (c *Cached) Lookup(ctx context.Context, address string) (Coordinates, error) {
	key := cacheKey(address)

	raw, err := c.kv.Get(ctx, key).Result()
	switch {
	case err == nil:
		var coords Coordinates
		if jerr := json.Unmarshal([]byte(raw), &coords); jerr == nil {
			return coords, nil
		}
	case !errors.Is(err, redis.Nil):
		zap.S().Debugw("geocode cache read failed", "error", err)
	}

	coords, err := c.next.Lookup(ctx, address)
	if err != nil {
		return Coordinates{}, err
	}
	if b, err := json.Marshal(coords); err == nil {
		if err := c.kv.Set(ctx, key, b, c.ttl).Err(); err != nil {
			zap.S().Debugw("geocode cache write failed", "error", err)
		}
	}
	return coords, nil
}
