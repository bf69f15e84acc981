package middleware

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"checkout-engine/internal/metrics"
	"checkout-engine/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // map[string]*ipLimiter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRateLimiter creates a per-IP limiter allowing rps requests per second with the
// given burst. m may be nil.
func NewRateLimiter(rps float64, burst int, m *metrics.Metrics, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		metrics: m,
		logger:  logger.With().Str("component", "rate-limiter").Logger(),
	}
}

func (l *RateLimiter) limiterFor(ip string) *rate.Limiter {
	v, ok := l.limiters.Load(ip)
	if !ok {
		v, _ = l.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	}
	il := v.(*ipLimiter)
	il.lastSeen.Store(time.Now().UnixNano())
	return il.limiter
}

// Sweep drops limiters idle for longer than maxIdle and returns how many were removed.
func (l *RateLimiter) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).UnixNano()
	removed := 0
	l.limiters.Range(func(key, val any) bool {
		if val.(*ipLimiter).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)
		if !l.limiterFor(ip).Allow() {
			l.logger.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limit exceeded")
			if l.metrics != nil {
				l.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, model.ErrCodeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
