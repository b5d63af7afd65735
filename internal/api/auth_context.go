package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookvault/bookvault-server/internal/auth"
	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the verified caller.
const identityKey ctxKey = "identity"

// IdentityFrom returns the verified caller, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

// RequireIdentity returns the verified caller or a 401.
func RequireIdentity(ctx context.Context) (*auth.Identity, error) {
	identity := IdentityFrom(ctx)
	if identity == nil {
		return nil, domainerrors.Unauthorized("Authentication required")
	}
	return identity, nil
}

// authenticate verifies the bearer token, if any, and stores the identity in
// the request context. A request without an Authorization header continues
// anonymously; a malformed or invalid token is rejected here with 401.
func (s *Server) authenticate(ctx huma.Context, next func(huma.Context)) {
	header := ctx.Header("Authorization")
	if header == "" {
		next(ctx)
		return
	}

	raw, ok := auth.BearerToken(header)
	if !ok {
		s.reject(ctx, domainerrors.Unauthorized("Invalid authorization header format"))
		return
	}

	identity, err := s.verifier.Verify(ctx.Context(), raw)
	if err != nil {
		s.logger.Debug("token rejected", "error", err, "path", ctx.URL().Path)
		if errors.Is(err, auth.ErrTokenExpired) {
			s.reject(ctx, domainerrors.TokenExpired("Token expired"))
			return
		}
		s.reject(ctx, domainerrors.Unauthorized("Invalid or expired token"))
		return
	}

	next(huma.WithValue(ctx, identityKey, identity))
}

// reject writes err through huma's error pipeline so it renders like any
// handler error.
func (s *Server) reject(ctx huma.Context, err *domainerrors.Error) {
	_ = huma.WriteErr(s.api, ctx, err.HTTPStatus(), err.Message, err)
}
