package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter limits requests per client IP using a token bucket per IP.
// Buckets idle longer than it takes them to refill are dropped, since a fresh
// bucket behaves the same.
type IPRateLimiter struct {
	ips       map[string]*ipBucket
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time

	// OnLimit writes the rejection. Defaults to a JSON 429.
	OnLimit http.HandlerFunc
}

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second (e.g. rate.Every(time.Minute) for 1/min);
// for N per minute use rate.Limit(float64(N)/60.0). burst is max tokens per bucket.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:     make(map[string]*ipBucket),
		limit:   limit,
		burst:   burst,
		idle:    refillTime(limit, burst),
		now:     time.Now,
		OnLimit: tooManyRequests,
	}
}

// refillTime is how long an untouched bucket takes to fill up again.
func refillTime(limit rate.Limit, burst int) time.Duration {
	if limit <= 0 || limit == rate.Inf {
		return time.Hour
	}
	d := time.Duration(float64(max(burst, 1)) / float64(limit) * float64(time.Second))
	return max(d, time.Minute)
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.ips {
			if now.Sub(b.lastSeen) >= l.idle {
				delete(l.ips, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.ips[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = b
	}
	b.lastSeen = now
	return b.lim
}

// Len reports how many client buckets are held.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// clientIP is the host part of RemoteAddr. Forwarding headers are not read
// here; chi's RealIP middleware in front of the router has already applied them.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware rejects requests once the client IP exceeds the rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.getLimiter(clientIP(r))
		if !lim.Allow() {
			if l.limit > 0 {
				secs := int(math.Ceil(1 / float64(l.limit)))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			l.OnLimit(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"too many requests"}`))
}

// AuthRateLimiter returns a limiter suitable for login/register: 10 requests per minute per IP, burst 5.
func AuthRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(10.0/60.0), 5)
}

// ResetRateLimiter throttles password reset emails: 3 per 10 minutes per IP.
func ResetRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(3.0/600.0), 3)
}
