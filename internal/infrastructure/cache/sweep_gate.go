package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SweepGate lets one caller per loan per TTL window through. It only saves work;
// late-fee correctness rests on the charges unique index.
type SweepGate struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSweepGate(rdb *redis.Client, ttl time.Duration) *SweepGate {
	return &SweepGate{rdb: rdb, ttl: ttl}
}

func sweepKey(loanID, day string) string { return "sweep:" + loanID + ":" + day }

// Acquire reports whether the caller should sweep loanID for day. Redis errors
// open the gate.
func (g *SweepGate) Acquire(ctx context.Context, loanID, day string) bool {
	ok, err := g.rdb.SetNX(ctx, sweepKey(loanID, day), 1, g.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release drops the mark so a failed sweep can be retried straight away.
func (g *SweepGate) Release(ctx context.Context, loanID, day string) {
	_ = g.rdb.Del(ctx, sweepKey(loanID, day)).Err()
}
