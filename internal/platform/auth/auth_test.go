package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(subject, role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "offercat",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestHMACResolver_Resolve(t *testing.T) {
	resolver, err := NewHMACResolver(testSecret, "offercat")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("subject becomes merchant id", func(t *testing.T) {
		identity, err := resolver.Resolve(ctx, sign(t, testSecret, claimsFor("m-42", "")))
		require.NoError(t, err)
		assert.Equal(t, "m-42", identity.MerchantID)
		assert.Equal(t, []string{RoleMerchant}, identity.Roles)
	})

	t.Run("role claims are merged and normalised", func(t *testing.T) {
		c := claimsFor("svc", "Service")
		c.Roles = []string{"admin", "service"}
		identity, err := resolver.Resolve(ctx, sign(t, testSecret, c))
		require.NoError(t, err)
		assert.Equal(t, []string{RoleService, RoleAdmin}, identity.Roles)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, sign(t, "other", claimsFor("m1", "")))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		c := claimsFor("m1", "")
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := resolver.Resolve(ctx, sign(t, testSecret, c))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := claimsFor("m1", "")
		c.Issuer = "someone-else"
		_, err := resolver.Resolve(ctx, sign(t, testSecret, c))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, sign(t, testSecret, claimsFor("", "")))
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("unsigned token rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor("m1", "")).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = resolver.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestNewHMACResolver_RequiresSecret(t *testing.T) {
	_, err := NewHMACResolver("  ", "")
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	resolver, err := NewHMACResolver(testSecret, "")
	require.NoError(t, err)

	var seen *Identity
	handler := Require(resolver, RoleService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"merchant lacks role", "Bearer " + sign(t, testSecret, claimsFor("m1", "merchant")), http.StatusForbidden},
		{"service allowed", "bearer " + sign(t, testSecret, claimsFor("orders", "service")), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, "orders", seen.MerchantID)
}

func TestMerchantID(t *testing.T) {
	assert.Empty(t, MerchantID(context.Background()))
	ctx := WithIdentity(context.Background(), &Identity{MerchantID: "m9"})
	assert.Equal(t, "m9", MerchantID(ctx))
}
