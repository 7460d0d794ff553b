package api

import (
	"context"

	"github.com/innobridge/platform/internal/models"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext extracts the authenticated Principal from context.
// The principal is an immutable snapshot taken when the request was
// authenticated; handlers never re-resolve it mid-request.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	p, ok := ctx.Value(principalContextKey).(*models.Principal)
	if !ok {
		return nil
	}
	return p
}

// ContextWithPrincipal adds a Principal to context
func ContextWithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
