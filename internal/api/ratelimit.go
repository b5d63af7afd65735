package api

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
)

// limitUpvotes rate limits the public upvote endpoint by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) limitUpvotes(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx)

	if !s.upvoteLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		ctx.SetHeader("Retry-After", "60")
		s.reject(ctx, domainerrors.RateLimited("Too many requests. Please try again later."))
		return
	}

	next(ctx)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(ctx huma.Context) string {
	// X-Forwarded-For may list a chain of proxies; the first is the client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
