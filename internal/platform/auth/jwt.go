package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v4"
)

var (
	// ErrTokenInvalid covers malformed, badly signed or expired tokens.
	ErrTokenInvalid = errors.New("auth: token invalid")
	// ErrMissingSubject is returned for tokens without a subject claim.
	ErrMissingSubject = errors.New("auth: token has no subject")
)

// Claims is the token payload. Role may be a single value or a list under "roles".
type Claims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Resolver turns a bearer credential into an Identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// HMACResolver verifies HS256 tokens signed with a shared secret.
type HMACResolver struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

var _ Resolver = (*HMACResolver)(nil)

// NewHMACResolver requires a non-empty secret. An empty issuer disables the issuer check.
func NewHMACResolver(secret, issuer string) (*HMACResolver, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	return &HMACResolver{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Resolve implements Resolver. Tokens without a role claim resolve to a merchant.
func (r *HMACResolver) Resolve(_ context.Context, token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := r.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if r.issuer != "" && !claims.VerifyIssuer(r.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, claims.Issuer)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, ErrMissingSubject
	}

	return &Identity{MerchantID: subject, Roles: rolesFrom(claims)}, nil
}

func rolesFrom(claims *Claims) []string {
	raw := append([]string{claims.Role}, claims.Roles...)
	seen := make(map[string]struct{}, len(raw))
	roles := make([]string, 0, len(raw))
	for _, role := range raw {
		role = normaliseRole(role)
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		roles = append(roles, RoleMerchant)
	}
	return roles
}
