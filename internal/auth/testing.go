package auth

import (
	"context"
	"time"

	"boardstack-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// SetClaimsForTesting injects claims into a context to simulate an
// authenticated request. Test use only.
func SetClaimsForTesting(ctx context.Context, claims *CustomClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// SignTestToken produces a signed HS256 token for handler and middleware
// tests. Test use only.
func SignTestToken(secret []byte, issuer, audience, userID string, systemRole domain.SystemRole, expiresAt time.Time) (string, error) {
	claims := &CustomClaims{
		UserID:     userID,
		SystemRole: systemRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
