package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/stark/pkg/lifecycle"
)

// RateLimitConfig bounds requests per client IP over a fixed window.
type RateLimitConfig struct {
	Requests int    `toml:"requests"`
	Window   string `toml:"window"`
	IdleTTL  string `toml:"idle_ttl"`
}

// RateLimitEnv maps rate limit config fields to environment variable names.
type RateLimitEnv struct {
	Requests string
	Window   string
	IdleTTL  string
}

// WindowDuration returns Window as a time.Duration.
func (c *RateLimitConfig) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Window)
	return d
}

// IdleTTLDuration returns IdleTTL as a time.Duration.
func (c *RateLimitConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.Requests == 0 {
		c.Requests = 10
	}
	if c.Window == "" {
		c.Window = "1m"
	}
	if c.IdleTTL == "" {
		c.IdleTTL = "5m"
	}

	if env != nil {
		if v := os.Getenv(env.Requests); env.Requests != "" && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Requests = n
			}
		}
		if v := os.Getenv(env.Window); env.Window != "" && v != "" {
			c.Window = v
		}
		if v := os.Getenv(env.IdleTTL); env.IdleTTL != "" && v != "" {
			c.IdleTTL = v
		}
	}

	if c.Requests < 1 {
		return fmt.Errorf("requests must be positive")
	}
	if d, err := time.ParseDuration(c.Window); err != nil || d <= 0 {
		return fmt.Errorf("invalid window: %q", c.Window)
	}
	if _, err := time.ParseDuration(c.IdleTTL); err != nil {
		return fmt.Errorf("invalid idle_ttl: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	if overlay.Requests != 0 {
		c.Requests = overlay.Requests
	}
	if overlay.Window != "" {
		c.Window = overlay.Window
	}
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds a token bucket per client IP. Each bucket refills at
// Requests per Window and allows a burst of Requests.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a RateLimiter from cfg.
func NewRateLimiter(cfg *RateLimitConfig) *RateLimiter {
	window := cfg.WindowDuration()
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(cfg.Requests)),
		burst:    cfg.Requests,
		idleTTL:  cfg.IdleTTLDuration(),
		now:      time.Now,
	}
}

// Allow consumes a token for key, returning the remaining tokens and whether
// the request may proceed.
func (l *RateLimiter) Allow(key string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.lim.AllowN(now, 1)
	remaining := int(math.Floor(v.lim.TokensAt(now)))
	return max(remaining, 0), allowed
}

// Sweep drops visitors idle for at least the configured TTL and returns how many were removed.
func (l *RateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for k, v := range l.visitors {
		if !v.lastSeen.After(cutoff) {
			delete(l.visitors, k)
			removed++
		}
	}
	return removed
}

// Start sweeps idle visitors on an IdleTTL interval until the coordinator shuts down.
func (l *RateLimiter) Start(lc *lifecycle.Coordinator) {
	if l.idleTTL <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(l.idleTTL)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, ok := l.Allow(clientIP(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			retry := int(math.Ceil(time.Duration(float64(time.Second) / float64(l.limit)).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandlerFunc wraps a single handler function with the limiter.
func (l *RateLimiter) HandlerFunc(fn http.HandlerFunc) http.HandlerFunc {
	return l.Middleware(fn).ServeHTTP
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
