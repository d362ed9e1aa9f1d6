// Package auth resolves bearer credentials into the caller identity the catalog trusts.
package auth

import (
	"context"
	"strings"
)

// Roles carried in the token's role claim.
const (
	RoleMerchant = "merchant"
	RoleService  = "service"
	RoleAdmin    = "admin"
)

// Identity is the authenticated caller. MerchantID is the token subject.
type Identity struct {
	MerchantID string
	Roles      []string
}

// HasRole reports whether the identity carries role (case-insensitive).
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	role = normaliseRole(role)
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the identity carries any of roles.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

type contextKey string

const identityContextKey contextKey = "github.com/light-bringer/offercat-service/internal/platform/auth/identity"

// WithIdentity stores identity on ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext returns the identity stored by the middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// MerchantID returns the caller's merchant id, or "" for anonymous requests.
func MerchantID(ctx context.Context) string {
	if identity, ok := IdentityFromContext(ctx); ok {
		return identity.MerchantID
	}
	return ""
}

func normaliseRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
