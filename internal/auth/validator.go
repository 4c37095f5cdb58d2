package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Validator validates HS256 JWT tokens against a single shared secret
// with issuer and audience pinning.
type HS256Validator struct {
	secret    []byte
	issuer    string
	audience  string
	clockSkew time.Duration
}

// NewHS256Validator creates a new HS256 validator.
func NewHS256Validator(secret []byte, issuer, audience string, clockSkew time.Duration) *HS256Validator {
	return &HS256Validator{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}
}

// Validate parses and verifies a token, returning its claims.
func (v *HS256Validator) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, NewAuthError(FailureTokenExpired, "token expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewAuthError(FailureInvalidSignature, "invalid signature", err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, NewAuthError(FailureInvalidIssuer, "invalid issuer", err)
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, NewAuthError(FailureInvalidAudience, "invalid audience", err)
		default:
			return nil, NewAuthError(FailureUnknown, "failed to parse token", err)
		}
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, NewAuthError(FailureUnknown, "invalid token", nil)
	}

	if err := claims.Validate(); err != nil {
		return nil, NewAuthError(FailureUnknown, "invalid claims", err)
	}

	return claims, nil
}
