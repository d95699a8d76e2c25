package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

type RedisOptions struct {
	Addr     string
	DB       int
	Password string
	// PingTimeout bounds the startup check; zero means 5s.
	PingTimeout time.Duration
}

// OpenRedis connects and pings. The client backs idempotency keys and the
// sweep gate.
func OpenRedis(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: o.Addr, DB: o.DB, Password: o.Password})
	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("ping %s: %w", o.Addr, err)
	}
	return r, nil
}
