package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Limiter is what the middleware needs from the service
type Limiter interface {
	Allow(ctx context.Context, key LimitKey) (Status, error)
}

// Options configures the middleware
type Options struct {
	// LimitType selects the registered limit
	LimitType string
	// Skip bypasses limiting for matching requests
	Skip func(r *http.Request) bool
}

// Middleware enforces a limit per bearer token, or per client IP for
// anonymous callers, and reports RateLimit-* headers.
func Middleware(limiter Limiter, logger *slog.Logger, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Skip != nil && opts.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := LimitKey{Type: opts.LimitType, Token: bearerToken(r), RemoteIP: realIP(r)}
			if key.Token != "" {
				key.RemoteIP = ""
			}

			status, err := limiter.Allow(r.Context(), key)
			if err != nil && !errors.Is(err, ErrLimitExceeded) {
				// Fail open when the counter store is unavailable
				logger.Error("rate limiter unavailable",
					"error", err,
					"requestId", middleware.GetReqID(r.Context()),
				)
				next.ServeHTTP(w, r)
				return
			}

			if status.Limit.Rate > 0 {
				w.Header().Set("RateLimit-Limit", strconv.Itoa(status.Limit.Max()))
				w.Header().Set("RateLimit-Remaining", strconv.Itoa(status.Remaining))
				w.Header().Set("RateLimit-Reset", strconv.FormatInt(status.Reset.Unix(), 10))
			}

			if errors.Is(err, ErrLimitExceeded) {
				retryAfter := int(time.Until(status.Reset).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				logger.Warn("rate limit exceeded",
					"path", r.URL.Path,
					"method", r.Method,
					"remoteIP", realIP(r),
					"retryAfter", retryAfter,
					"requestId", middleware.GetReqID(r.Context()),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"success":false,"code":"RATE_LIMITED","message":"Too many requests, please retry after %d seconds"}`, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// realIP extracts the client address, preferring proxy headers
func realIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// SkipProbes bypasses health, readiness and metrics endpoints
func SkipProbes(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/healthz") ||
		strings.HasPrefix(r.URL.Path, "/readyz") ||
		strings.HasPrefix(r.URL.Path, "/metrics")
}
