package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const notFoundMarker = "notfound"

// ErrNotFound is returned when a tracking number is negatively cached.
var ErrNotFound = errors.New("tracking number not cached as existing")

// ErrMiss is returned when the cache holds nothing for the key; the
// caller should fall through to the database.
var ErrMiss = errors.New("cache miss")

// TrackingCache holds public tracking-lookup snapshots. Every method is
// safe on a nil receiver so the cache can be left unconfigured. Redis
// failures are logged and treated as misses; the database stays the
// source of truth.
type TrackingCache struct {
	redis       *redis.Client
	ttl         time.Duration
	negativeTTL time.Duration
}

func NewTrackingCache(rdb *redis.Client, ttl time.Duration) *TrackingCache {
	return &TrackingCache{
		redis:       rdb,
		ttl:         ttl,
		negativeTTL: time.Minute,
	}
}

func TrackingKey(trackingNumber string) string {
	return "tracking:" + trackingNumber
}

// Get loads a cached snapshot into dest. It returns ErrNotFound for a
// negatively cached number and ErrMiss when the database should be
// consulted.
func (tc *TrackingCache) Get(ctx context.Context, trackingNumber string, dest interface{}) error {
	if tc == nil || tc.redis == nil {
		return ErrMiss
	}

	data, err := tc.redis.Get(ctx, TrackingKey(trackingNumber)).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, dest); err != nil {
			log.Printf("[CACHE] [ERROR] unmarshal failed (continuing with DB): %v", err)
			return ErrMiss
		}
		return nil
	case errors.Is(err, redis.Nil):
		return ErrMiss
	default:
		log.Printf("[CACHE] [ERROR] redis error (continuing with DB): %v", err)
		return ErrMiss
	}
}

func (tc *TrackingCache) Set(ctx context.Context, trackingNumber string, value interface{}) {
	if tc == nil || tc.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[CACHE] [ERROR] marshal failed: %v", err)
		return
	}
	if err := tc.redis.Set(ctx, TrackingKey(trackingNumber), data, tc.ttl).Err(); err != nil {
		log.Printf("[CACHE] [ERROR] set failed: %v", err)
	}
}

// SetNotFound negatively caches a miss so repeated bad lookups do not
// hit the database.
func (tc *TrackingCache) SetNotFound(ctx context.Context, trackingNumber string) {
	if tc == nil || tc.redis == nil {
		return
	}
	if err := tc.redis.Set(ctx, TrackingKey(trackingNumber), notFoundMarker, tc.negativeTTL).Err(); err != nil {
		log.Printf("[CACHE] [ERROR] negative set failed: %v", err)
	}
}

// Invalidate drops the snapshot after a shipment update or delete.
func (tc *TrackingCache) Invalidate(ctx context.Context, trackingNumber string) {
	if tc == nil || tc.redis == nil {
		return
	}
	if err := tc.redis.Del(ctx, TrackingKey(trackingNumber)).Err(); err != nil {
		log.Printf("[CACHE] [ERROR] invalidate failed: %v", err)
	}
}
