package middleware

import (
	"context"

	"boardstack-api/internal/authz"
)

// SetChainForTesting attaches a resolved entity chain to the context,
// standing in for an access guard in handler tests.
func SetChainForTesting(ctx context.Context, chain *authz.Chain) context.Context {
	return context.WithValue(ctx, chainContextKey, chain)
}
