package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var rateLimitRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejected_total",
		Help: "Total number of requests rejected by the rate limiter",
	},
	[]string{"route"},
)

// RateLimitConfig holds fixed-window rate limiter settings.
type RateLimitConfig struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int

	// Window is the length of the counting window.
	Window time.Duration
}

// DefaultRateLimitConfig returns the standard per-route limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{Limit: 10, Window: time.Minute}
}

// RateLimit returns middleware enforcing a fixed-window limit per caller and
// route, with counters held in Redis so the limit spans all instances. The
// counter is incremented and the window TTL set in a single pipeline, so the
// increment-and-check is atomic with respect to concurrent requests. When
// Redis is unreachable the limiter fails open and logs a warning.
//
// Callers are identified by the authenticated user ID when present, otherwise
// by client IP. Rejected requests receive 429 with Retry-After and
// X-RateLimit-* headers, and cause no other side effects.
func RateLimit(client *redis.Client, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			key := fmt.Sprintf("ratelimit:%s:%s %s", callerID(r), r.Method, route)

			ctx := r.Context()
			pipe := client.Pipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			count := incr.Val()
			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				retryAfter := cfg.Window
				if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))

				rateLimitRejectedTotal.WithLabelValues(route).Inc()
				logger.InfoContext(ctx, "request rate limited",
					slog.String("key", key),
					slog.Int64("count", count),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "RATE_LIMITED",
						"message": "rate limit exceeded, try again later",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// callerID returns the rate limit bucket owner: the authenticated user ID if
// the auth middleware ran, otherwise the client IP.
func callerID(r *http.Request) string {
	if id := UserIDFromContext(r.Context()); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
