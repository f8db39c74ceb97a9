package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle IP entry is eligible for cleanup.
	maxIdleAge = 10 * time.Minute
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP and prunes idle ones.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*ipEntry
	r   rate.Limit
	b   int
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst.
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		ips: make(map[string]*ipEntry),
		r:   rate.Limit(float64(perMinute) / 60),
		b:   burst,
	}
}

// Limiter returns the bucket of ip.
func (l *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.ips) > cleanupThreshold {
		cutoff := time.Now().Add(-maxIdleAge)
		for k, e := range l.ips {
			if e.lastSeen.Before(cutoff) {
				delete(l.ips, k)
			}
		}
	}

	e, ok := l.ips[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.ips[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(l *IPRateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			if !l.Limiter(ip).Allow() {
				c.Response().Header().Set("Retry-After", "60")
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
