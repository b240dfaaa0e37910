package api

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the request ID stored by the requestID middleware
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// requestID reuses an inbound X-Request-ID or mints a UUID, and echoes it on the response
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder captures the response status for logging.
// It passes Hijack through so WebSocket upgrades still work.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// requestLogger logs each request with zap
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", RequestID(r.Context())),
				zap.String("client_ip", clientIP(r)),
			)
		})
	}
}

// recovery turns a handler panic into a logged 500
func recovery(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("panic recovered",
						zap.Any("error", v),
						zap.String("request_id", RequestID(r.Context())),
						zap.String("path", r.URL.Path),
					)
					respondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// rateLimiter provides per-IP token-bucket limiting.
// Entries idle for staleAfter are swept at most once per sweepEvery.
type rateLimiter struct {
	limit      rate.Limit
	burst      int
	limiters   sync.Map
	lastSweep  atomic.Int64
	sweepEvery time.Duration
	staleAfter time.Duration
}

func newRateLimiter(r rate.Limit, b int) *rateLimiter {
	rl := &rateLimiter{
		limit:      r,
		burst:      b,
		sweepEvery: 5 * time.Minute,
		staleAfter: 10 * time.Minute,
	}
	rl.lastSweep.Store(time.Now().UnixNano())
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	now := time.Now()
	v, _ := rl.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)})
	il := v.(*ipLimiter)
	il.lastSeen.Store(now.UnixNano())

	last := rl.lastSweep.Load()
	if now.Sub(time.Unix(0, last)) > rl.sweepEvery && rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		rl.sweep(now)
	}
	return il.limiter.Allow()
}

func (rl *rateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.staleAfter).UnixNano()
	rl.limiters.Range(func(k, v interface{}) bool {
		if v.(*ipLimiter).lastSeen.Load() < cutoff {
			rl.limiters.Delete(k)
		}
		return true
	})
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
