package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ryanpratama14/hiddengym-api/internal/cache"
)

const (
	RateLimit       = 60              // requests per window
	RateLimitWindow = 1 * time.Minute // window duration
)

// RateLimiter enforces a fixed-window per-client request limit backed by
// Redis. If Redis is unavailable the request is allowed through.
func RateLimiter(redisClient *cache.Redis) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := r.RemoteAddr

			key := fmt.Sprintf("ratelimit:%s", clientIP)

			count, err := redisClient.Incr(r.Context(), key)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Set expiry on first request
			if count == 1 {
				redisClient.Expire(r.Context(), key, RateLimitWindow)
			}

			if count > RateLimit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", RateLimit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded. Try again later."}`))
				return
			}

			remaining := RateLimit - int(count)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", RateLimit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			next.ServeHTTP(w, r)
		})
	}
}
