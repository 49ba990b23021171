package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type snapshot struct {
	TrackingNumber string `json:"trackingNumber"`
	Status         string `json:"status"`
}

func newTestCache(t *testing.T) *TrackingCache {
	t.Helper()
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return NewTrackingCache(rdb, 5*time.Minute)
}

func TestTrackingCacheRoundTrip(t *testing.T) {
	tc := newTestCache(t)
	ctx := context.Background()

	tc.Set(ctx, "MSL-ABC1234567", snapshot{TrackingNumber: "MSL-ABC1234567", Status: "pending"})

	var got snapshot
	if err := tc.Get(ctx, "MSL-ABC1234567", &got); err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	if got.Status != "pending" {
		t.Fatalf("expected cached status pending, got %q", got.Status)
	}
}

func TestTrackingCacheMiss(t *testing.T) {
	tc := newTestCache(t)

	var got snapshot
	if err := tc.Get(context.Background(), "MSL-0000000000", &got); err != ErrMiss {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestTrackingCacheNegativeEntry(t *testing.T) {
	tc := newTestCache(t)
	ctx := context.Background()

	tc.SetNotFound(ctx, "MSL-0000000000")

	var got snapshot
	if err := tc.Get(ctx, "MSL-0000000000", &got); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrackingCacheInvalidate(t *testing.T) {
	tc := newTestCache(t)
	ctx := context.Background()

	tc.Set(ctx, "MSL-ABC1234567", snapshot{Status: "in-transit"})
	tc.Invalidate(ctx, "MSL-ABC1234567")

	var got snapshot
	if err := tc.Get(ctx, "MSL-ABC1234567", &got); err != ErrMiss {
		t.Fatalf("expected ErrMiss after invalidation, got %v", err)
	}
}

func TestNilTrackingCacheIsSafe(t *testing.T) {
	var tc *TrackingCache
	ctx := context.Background()

	var got snapshot
	if err := tc.Get(ctx, "MSL-ABC1234567", &got); err != ErrMiss {
		t.Fatalf("expected ErrMiss on nil cache, got %v", err)
	}
	tc.Set(ctx, "MSL-ABC1234567", got)
	tc.SetNotFound(ctx, "MSL-ABC1234567")
	tc.Invalidate(ctx, "MSL-ABC1234567")
}

func TestTrackingKey(t *testing.T) {
	if got := TrackingKey("MSL-ABC1234567"); got != "tracking:MSL-ABC1234567" {
		t.Fatalf("unexpected key %q", got)
	}
}
