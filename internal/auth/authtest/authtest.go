// Package authtest signs Firebase-shaped ID tokens for tests.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/bookvault/bookvault-server/internal/auth"
)

// ProjectID is the Firebase project the helpers sign for.
const ProjectID = "bookvault-test"

// KeyID is the kid header of signed tokens.
const KeyID = "test-key-1"

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
	keyErr  error
)

// PrivateKey returns a process-wide RSA key, generated on first use.
func PrivateKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("generate rsa key: %v", keyErr)
	}
	return key
}

// Keys returns a key source that knows the signing key.
func Keys(t testing.TB) auth.StaticKeySource {
	return auth.StaticKeySource{KeyID: &PrivateKey(t).PublicKey}
}

// Verifier returns a verifier for ProjectID backed by Keys.
func Verifier(t testing.TB, opts ...auth.Option) *auth.Verifier {
	return auth.NewVerifier(ProjectID, Keys(t), opts...)
}

// Claims returns valid claims for email, issued now.
func Claims(email string) *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		Email:         email,
		EmailVerified: true,
		Name:          nameOf(email),
		AuthTime:      now.Add(-time.Minute).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + ProjectID,
			Subject:   "uid-" + nameOf(email),
			Audience:  jwt.ClaimStrings{ProjectID},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

// Sign signs claims with the test key under KeyID.
func Sign(t testing.TB, claims *auth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = KeyID
	raw, err := token.SignedString(PrivateKey(t))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

// Token returns a valid signed token for email.
func Token(t testing.TB, email string) string {
	return Sign(t, Claims(email))
}

// Bearer returns an Authorization header value for email.
func Bearer(t testing.TB, email string) string {
	return "Bearer " + Token(t, email)
}

func nameOf(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
