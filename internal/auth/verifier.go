package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Verification errors. ErrTokenExpired is split out so clients can refresh
// instead of signing in again.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const (
	issuerPrefix  = "https://securetoken.google.com/"
	defaultLeeway = 5 * time.Minute
	maxUIDLength  = 128
)

// Verifier checks Firebase ID tokens for one project.
type Verifier struct {
	projectID string
	issuer    string
	keys      KeySource
	parser    *jwt.Parser
	now       func() time.Time
	leeway    time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// WithLeeway sets the allowed clock skew for exp, iat and auth_time.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) { v.leeway = d }
}

// NewVerifier creates a verifier for projectID using keys.
func NewVerifier(projectID string, keys KeySource, opts ...Option) *Verifier {
	v := &Verifier{
		projectID: projectID,
		issuer:    issuerPrefix + projectID,
		keys:      keys,
		// Claims are checked by hand below so the clock and leeway are ours.
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation()),
		now:    time.Now,
		leeway: defaultLeeway,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signature and claims of raw and returns the identity.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := v.checkClaims(claims); err != nil {
		return nil, err
	}
	return claims.identity(), nil
}

func (v *Verifier) checkClaims(c *Claims) error {
	now := v.now()

	if !c.VerifyAudience(v.projectID, true) {
		return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if c.Issuer != v.issuer {
		return fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	if c.Subject == "" || len(c.Subject) > maxUIDLength {
		return fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	if !now.Before(c.ExpiresAt.Add(v.leeway)) {
		return ErrTokenExpired
	}
	if c.IssuedAt == nil || c.IssuedAt.After(now.Add(v.leeway)) {
		return fmt.Errorf("%w: issued in the future", ErrInvalidToken)
	}
	if c.AuthTime <= 0 || time.Unix(c.AuthTime, 0).After(now.Add(v.leeway)) {
		return fmt.Errorf("%w: invalid auth_time", ErrInvalidToken)
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
// ok is false when the header is present but not a bearer credential.
func BearerToken(header string) (token string, ok bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
