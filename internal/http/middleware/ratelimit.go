package middleware

import (
	"fmt"
	"net/http"
	"time"

	"boardstack-api/internal/auth"
	"boardstack-api/internal/authz"
	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/ratelimit"

	"go.uber.org/zap"
)

// RateLimit enforces the per-user sliding-window limiter on sensitive
// operations. The key is the authenticated user id, so it sits behind the
// auth middleware.
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			claims, ok := auth.GetClaims(ctx)
			if !ok {
				log.Error(ctx, "claims not found in context for rate limiting",
					logger.Module("ratelimit"), logger.Action("check"))
				httperr.InternalError(w, ctx)
				return
			}

			allowed, remaining, err := limiter.Allow(ctx, claims.UserID)
			if err != nil {
				log.Error(ctx, "rate limit check failed",
					logger.Module("ratelimit"), logger.Action("check"),
					zap.Error(err))
				logger.SetRootError(ctx, err)
				httperr.InternalError(w, ctx)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(window).Unix()))

			if !allowed {
				log.Warn(ctx, "rate limit exceeded",
					logger.Module("ratelimit"), logger.Action("check"),
					zap.String("user_id", claims.UserID),
					zap.Int("limit", limit))

				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				httperr.WriteAuthzError(w, ctx, authz.ErrRateLimited())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
