package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter limits requests per client IP using a token bucket per IP.
type IPRateLimiter struct {
	ips   map[string]*visitor
	mu    sync.Mutex
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	lastSweep time.Time
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second; for N per minute
// use rate.Limit(float64(N)/60.0). burst is max tokens per bucket. Buckets idle for longer than
// ten minutes are dropped by a sweep that runs at most once per idle period.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*visitor),
		limit: limit,
		burst: burst,
		idle:  10 * time.Minute,
		now:   time.Now,
	}
}

// LoginRateLimiter returns a limiter for the login endpoints, perMinute requests per IP.
// A zero perMinute returns nil, which Middleware treats as "no limit".
func LoginRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		l.sweep(now)
	}

	v, ok := l.ips[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = v
	}
	v.seen = now
	return v.lim
}

func (l *IPRateLimiter) sweep(now time.Time) {
	for k, v := range l.ips {
		if now.Sub(v.seen) > l.idle {
			delete(l.ips, k)
		}
	}
	l.lastSweep = now
}

// clientIP returns the host part of RemoteAddr. chi's RealIP rewrites RemoteAddr when TRUST_PROXY is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// Middleware returns 429 when the client IP exceeds the rate. A nil limiter passes everything.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.getLimiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			if isAPI(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			http.Error(w, "too many login attempts, try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
