package auth

import (
	"boardstack-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims are the JWT claims carried by every authenticated request.
// Authentication happens upstream; the access-control core only consumes
// the user id and the system role from here.
type CustomClaims struct {
	UserID     string            `json:"userId"`
	SystemRole domain.SystemRole `json:"systemRole"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on custom claims. The system role
// allow-list is NOT enforced here: an unrecognized system role must surface
// as a 403 from the role resolver, not a 401 at the token boundary.
func (c *CustomClaims) Validate() error {
	if c.UserID == "" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
