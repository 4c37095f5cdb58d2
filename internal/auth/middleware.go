package auth

import (
	"context"
	"net/http"
	"strings"

	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/observability/logger"

	"go.uber.org/zap"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Middleware validates bearer tokens and injects claims into the request
// context. Everything behind it can assume an authenticated user; the
// access-control guards then decide what that user may touch.
func Middleware(validator *HS256Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn(ctx, "missing authorization header",
					logger.Module("auth"), logger.Action("authenticate"))
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn(ctx, "invalid authorization header format",
					logger.Module("auth"), logger.Action("authenticate"))
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidScheme, "invalid authorization header format")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				reason := FailureUnknown
				if authErr, ok := IsAuthError(err); ok {
					reason = authErr.Reason
				}
				log.Warn(ctx, "token validation failed",
					logger.Module("auth"), logger.Action("authenticate"),
					zap.String("reason", string(reason)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "invalid token")
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = logger.SetUserIDInContext(ctx, claims.UserID)

			log.Debug(ctx, "authenticated request",
				logger.Module("auth"), logger.Action("authenticate"),
				zap.String("user_id", claims.UserID),
				zap.String("system_role", string(claims.SystemRole)),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves claims from context.
func GetClaims(ctx context.Context) (*CustomClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*CustomClaims)
	return claims, ok
}
