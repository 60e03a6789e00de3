package tenant

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const (
	// ScopeKey is the context key for storing the resolved tenant scope.
	ScopeKey contextKey = "tenantScope"
)

// Scope is the effective tenant for a request: the authoritative slug
// plus the live pool bound to that tenant's partition. It is threaded
// explicitly through the request context, never reconstructed ad hoc
// in a handler.
type Scope struct {
	Slug Slug
	Pool *pgxpool.Pool
}

// GetScope retrieves the tenant scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok
}

// SetScope stores the tenant scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}
