package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimit creates a fixed-window per-member rate limit middleware
// backed by redis. Without redis, or when redis is unreachable, the
// limiter fails open.
func RateLimit(client *redis.Client, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			memberID := GetMemberID(r.Context())
			if memberID == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rate_limit:%s", memberID)
			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn().Err(err).Msg("Rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(r.Context(), key, window).Err(); err != nil {
					// A counter with no TTL would throttle the member
					// forever, so drop it and fail open
					log.Warn().Err(err).Str("key", key).Msg("Rate limit expire failed, dropping counter")
					client.Del(r.Context(), key)
					next.ServeHTTP(w, r)
					return
				}
			}

			if count > int64(limit) {
				respondError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
