package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mdflamingo/paydesk/internal/logger"
	"github.com/mdflamingo/paydesk/internal/middleware"
	"go.uber.org/zap"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// rateLimit caps how many mutating requests one caller may send per window.
// Callers are keyed by user id, falling back to the remote address. When the
// limiter itself fails the request is let through.
func rateLimit(l RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.RemoteAddr
			if identity, err := middleware.GetIdentityFromRequest(r); err == nil {
				key = identity.UserID
			}

			ok, retryAfter, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Log.Error("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				logger.Log.Warn("rate limit exceeded", zap.String("key", key))
				w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
				writeError(w, http.StatusTooManyRequests, "Too many requests, please wait a minute")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
