package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/auth/authtest"
)

func TestVerify_ValidToken(t *testing.T) {
	v := authtest.Verifier(t)

	identity, err := v.Verify(context.Background(), authtest.Token(t, "alice@example.com"))
	require.NoError(t, err)

	assert.Equal(t, &auth.Identity{
		UID:           "uid-alice",
		Email:         "alice@example.com",
		Name:          "alice",
		EmailVerified: true,
	}, identity)
}

func TestVerify_RejectsBadClaims(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *auth.Claims)
		wantErr error
	}{
		{"wrong audience", func(c *auth.Claims) { c.Audience = jwt.ClaimStrings{"other-project"} }, auth.ErrInvalidToken},
		{"wrong issuer", func(c *auth.Claims) { c.Issuer = "https://accounts.google.com" }, auth.ErrInvalidToken},
		{"empty subject", func(c *auth.Claims) { c.Subject = "" }, auth.ErrInvalidToken},
		{"expired", func(c *auth.Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) }, auth.ErrTokenExpired},
		{"missing exp", func(c *auth.Claims) { c.ExpiresAt = nil }, auth.ErrInvalidToken},
		{"issued in the future", func(c *auth.Claims) { c.IssuedAt = jwt.NewNumericDate(time.Now().Add(time.Hour)) }, auth.ErrInvalidToken},
		{"missing auth_time", func(c *auth.Claims) { c.AuthTime = 0 }, auth.ErrInvalidToken},
	}

	v := authtest.Verifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := authtest.Claims("alice@example.com")
			tt.mutate(claims)

			_, err := v.Verify(context.Background(), authtest.Sign(t, claims))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_LeewayAllowsSmallSkew(t *testing.T) {
	claims := authtest.Claims("alice@example.com")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-30 * time.Second))
	raw := authtest.Sign(t, claims)

	_, err := authtest.Verifier(t, auth.WithLeeway(time.Minute)).Verify(context.Background(), raw)
	assert.NoError(t, err)

	_, err = authtest.Verifier(t, auth.WithLeeway(0)).Verify(context.Background(), raw)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerify_UsesInjectedClock(t *testing.T) {
	raw := authtest.Token(t, "alice@example.com")
	later := func() time.Time { return time.Now().Add(3 * time.Hour) }

	_, err := authtest.Verifier(t, auth.WithClock(later)).Verify(context.Background(), raw)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerify_RejectsBadSignatures(t *testing.T) {
	v := authtest.Verifier(t)
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := v.Verify(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("HS256 is not accepted", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, authtest.Claims("alice@example.com"))
		token.Header["kid"] = authtest.KeyID
		raw, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown kid", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, authtest.Claims("alice@example.com"))
		token.Header["kid"] = "rotated-away"
		raw, err := token.SignedString(authtest.PrivateKey(t))
		require.NoError(t, err)

		_, err = v.Verify(ctx, raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		raw := authtest.Token(t, "alice@example.com")
		other := authtest.Token(t, "mallory@example.com")

		parts := strings.Split(raw, ".")
		otherParts := strings.Split(other, ".")
		forged := parts[0] + "." + otherParts[1] + "." + parts[2]

		_, err := v.Verify(ctx, forged)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header    string
		wantToken string
		wantOK    bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := auth.BearerToken(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
