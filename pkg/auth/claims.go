// Package auth provides first-party JWT authentication for phc-engine.
// Tokens are issued at login and carry the principal's role and home
// tenant; downstream code treats the parsed claims as an opaque
// principal and never re-verifies signatures itself.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phc-health/phc-engine/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims is the principal attached to every authenticated request.
// Subject is the user id; TenantID is empty for SUPER_ADMIN accounts.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tid,omitempty"`
}

// Elevated reports whether the principal holds the cross-tenant role.
func (c *Claims) Elevated() bool {
	return c.Role == models.RoleSuperAdmin
}

// TenantUUID parses the principal's home tenant id.
// Returns uuid.Nil and false when the principal has no tenant.
func (c *Claims) TenantUUID() (uuid.UUID, bool) {
	if c.TenantID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.TenantID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext extracts the user ID from JWT claims in the context.
// Returns uuid.Nil if not authenticated or the subject is malformed.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
