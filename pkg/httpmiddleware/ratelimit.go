package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// Max is the number of requests a key may burst; it refills evenly over
	// Window.
	Max int
	// Window is the time it takes to refill Max requests.
	Window time.Duration
	// KeyFunc extracts the rate limit key from a request. Defaults to
	// ClientIP when TrustProxy is set and RemoteIP otherwise.
	KeyFunc func(*http.Request) string
	// TrustProxy keys requests by the forwarding headers. Only set it when a
	// proxy in front of the server overwrites them; otherwise a client
	// picks its own key.
	TrustProxy bool
	// Message is the error message of rejected requests.
	Message string
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiters keeps one token bucket per key.
type limiters struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func newLimiters(cfg RateLimitConfig) *limiters {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIP
		if cfg.TrustProxy {
			cfg.KeyFunc = ClientIP
		}
	}
	if cfg.Max <= 0 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Message == "" {
		cfg.Message = "rate limit exceeded"
	}
	return &limiters{
		cfg:     cfg,
		every:   rate.Every(cfg.Window / time.Duration(cfg.Max)),
		entries: make(map[string]*limiterEntry),
	}
}

// reserve takes a token for key. It reports whether the request may proceed,
// the tokens left and, when rejected, how long until one is available.
func (l *limiters) reserve(key string, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, found := l.entries[key]
	if !found {
		e = &limiterEntry{limiter: rate.NewLimiter(l.every, l.cfg.Max)}
		l.entries[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(math.Max(0, math.Floor(e.limiter.TokensAt(now)))), 0
}

// evict drops keys idle for longer than a full refill.
func (l *limiters) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.cfg.Window {
			delete(l.entries, key)
		}
	}
}

func (l *limiters) evictEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evict(now)
		}
	}
}

// RateLimit returns a middleware that gives each key a token bucket of Max
// requests refilled over Window. Rejected requests get 429 with a JSON
// error body and a Retry-After header.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimit(newLimiters(cfg))
}

// RateLimitWithCleanup is RateLimit plus a goroutine, stopped with ctx, that
// forgets idle keys.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiters(cfg)
	go l.evictEvery(ctx, 2*l.cfg.Window)
	return rateLimit(l)
}

func rateLimit(l *limiters) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retryAfter := l.reserve(l.cfg.KeyFunc(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":429,"message":` + strconv.Quote(l.cfg.Message) + `}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then the
// host of RemoteAddr. The headers are client-controlled unless a trusted
// proxy sets them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return RemoteIP(r)
}

// RemoteIP returns the host of the connection's RemoteAddr.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
