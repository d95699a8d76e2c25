package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newGate(t *testing.T, ttl time.Duration) (*SweepGate, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSweepGate(rdb, ttl), s
}

func TestSweepGate_OncePerWindow(t *testing.T) {
	g, s := newGate(t, time.Minute)
	ctx := context.Background()

	if !g.Acquire(ctx, "L1", "2024-02-01") {
		t.Fatal("first acquire should pass")
	}
	if g.Acquire(ctx, "L1", "2024-02-01") {
		t.Fatal("second acquire in window should be gated")
	}
	if !g.Acquire(ctx, "L2", "2024-02-01") {
		t.Fatal("other loan must not be gated")
	}
	if !g.Acquire(ctx, "L1", "2024-02-02") {
		t.Fatal("next day must not be gated")
	}

	s.FastForward(2 * time.Minute)
	if !g.Acquire(ctx, "L1", "2024-02-01") {
		t.Fatal("acquire after ttl should pass")
	}
}

func TestSweepGate_Release(t *testing.T) {
	g, _ := newGate(t, time.Minute)
	ctx := context.Background()

	g.Acquire(ctx, "L1", "2024-02-01")
	g.Release(ctx, "L1", "2024-02-01")
	if !g.Acquire(ctx, "L1", "2024-02-01") {
		t.Fatal("acquire after release should pass")
	}
}

func TestSweepGate_RedisDownOpensGate(t *testing.T) {
	g, s := newGate(t, time.Minute)
	s.Close()
	if !g.Acquire(context.Background(), "L1", "2024-02-01") {
		t.Fatal("gate must open when redis is unavailable")
	}
}
