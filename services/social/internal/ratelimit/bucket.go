package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/internal/platform/httpserver"
)

// Bucket is a per-client token bucket used as an HTTP abuse guard. It is
// independent of the per-action cooldowns enforced by Limiter.
type Bucket struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *tokens]
	rate    float64 // tokens per second
	burst   int
	now     func() time.Time
}

type tokens struct {
	left float64
	last time.Time
}

// NewBucket keeps at most maxClients buckets; the least recently seen client
// is evicted first and starts again with a full bucket.
func NewBucket(rate float64, burst, maxClients int) *Bucket {
	if maxClients <= 0 {
		maxClients = 10000
	}
	cache, err := lru.New[string, *tokens](maxClients)
	if err != nil {
		panic(err)
	}
	return &Bucket{buckets: cache, rate: rate, burst: burst, now: time.Now}
}

func (b *Bucket) Allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	t, ok := b.buckets.Get(key)
	if !ok {
		t = &tokens{left: float64(b.burst), last: now}
		b.buckets.Add(key, t)
	}

	t.left += now.Sub(t.last).Seconds() * b.rate
	if t.left > float64(b.burst) {
		t.left = float64(b.burst)
	}
	t.last = now

	if t.left < 1 {
		return false
	}
	t.left--
	return true
}

// Middleware limits by authenticated user when known, otherwise by client IP.
func (b *Bucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.Allow(clientKey(r)) {
			rid := httpserver.RequestIDFromContext(r.Context())
			api.RateLimited(w, "RATE_LIMITED", "Too many requests", rid, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		return "user:" + uid
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
