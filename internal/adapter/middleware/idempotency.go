package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"

	// how long a key stays reserved while its handler runs
	defaultLockTTL = 60 * time.Second
	maxClockSkew   = 10 * time.Minute
	storeTimeout   = 2 * time.Second

	// bodies are buffered to be hashed
	maxBodyBytes = 1 << 20
)

type IdempotencyOption func(*idempotency)

func WithIdempotencyLogger(l *slog.Logger) IdempotencyOption {
	return func(m *idempotency) { m.log = l }
}

func WithIdempotencyClock(now func() time.Time) IdempotencyOption {
	return func(m *idempotency) { m.now = now }
}

type idempotency struct {
	store store
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

type respRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *respRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Idempotency makes mutating requests safe to retry. Each one must carry an
// Idempotency-Key (UUID or 32 hex) and an X-Request-At within maxClockSkew of
// the server clock. A repeat of a finished request replays the stored response;
// a repeat with a different body, or while the first is still running, gets 409.
// Server errors are not stored so the client can retry them. Runs after JWTAuth.
func Idempotency(rdb *redis.Client, ttl time.Duration, opts ...IdempotencyOption) echo.MiddlewareFunc {
	m := &idempotency{
		store: store{rdb: rdb, lockTTL: defaultLockTTL},
		ttl:   ttl,
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m.handle
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

func (m *idempotency) handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		switch req.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return next(c)
		}

		clientKey := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey)))
		if clientKey == "" {
			return badRequest(c, "missing "+HeaderIdempotencyKey)
		}
		if !validClientKey(clientKey) {
			return badRequest(c, "invalid "+HeaderIdempotencyKey+" format")
		}
		reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
		if err != nil {
			return badRequest(c, err.Error())
		}
		now := m.now().UTC()
		if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
			return badRequest(c, HeaderRequestAt+" too skewed")
		}

		actor, ok := ActorFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		}

		var body []byte
		if req.Body != nil {
			body, err = io.ReadAll(io.LimitReader(req.Body, maxBodyBytes+1))
			if err != nil {
				return badRequest(c, "unreadable request body")
			}
			if len(body) > maxBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			}
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		sum := digest(body)

		key := m.store.key(actor.UserID, req.Method, c.Path(), clientKey)
		ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
		defer cancel()

		reserved, err := m.store.reserve(ctx, key, record{Pending: true, BodyDigest: sum, RequestAt: reqAt, StoredAt: now})
		if err != nil {
			m.log.ErrorContext(ctx, "idempotency store unavailable", "err", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
		}
		if !reserved {
			return m.replay(ctx, c, key, sum)
		}

		rec := &respRecorder{ResponseWriter: c.Response().Writer, code: http.StatusOK}
		c.Response().Writer = rec
		if err := next(c); err != nil {
			c.Error(err)
		}

		// detached: the client may already be gone
		bg, done := context.WithTimeout(context.Background(), storeTimeout)
		defer done()
		if rec.code >= http.StatusInternalServerError {
			if err := m.store.release(bg, key); err != nil {
				m.log.Warn("idempotency key not released", "key", key, "err", err)
			}
			return nil
		}
		final := record{
			Status:      rec.code,
			ContentType: rec.Header().Get(echo.HeaderContentType),
			Body:        rec.buf.Bytes(),
			BodyDigest:  sum,
			RequestAt:   reqAt,
			StoredAt:    m.now().UTC(),
		}
		if err := m.store.finish(bg, key, final, m.ttl); err != nil {
			m.log.Warn("idempotency entry not saved", "key", key, "err", err)
		}
		return nil
	}
}

func (m *idempotency) replay(ctx context.Context, c echo.Context, key, sum string) error {
	cur, err := m.store.load(ctx, key)
	if err != nil {
		m.log.WarnContext(ctx, "idempotency entry unreadable", "key", key, "err", err)
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	}
	if cur.BodyDigest != sum {
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderIdempotencyKey + " reused with a different body"})
	}
	if !cur.replayable() {
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	c.Response().Header().Set("Idempotent-Replayed", "true")
	return c.Blob(cur.Status, ct, cur.Body)
}
