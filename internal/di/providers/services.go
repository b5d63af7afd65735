package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/bookvault/bookvault-server/internal/config"
	"github.com/bookvault/bookvault-server/internal/logger"
	"github.com/bookvault/bookvault-server/internal/ratelimit"
	"github.com/bookvault/bookvault-server/internal/service"
)

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, log.Logger), nil
}

// UpvoteLimiterHandle wraps the per-IP upvote limiter so its sweeper stops
// on shutdown.
type UpvoteLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *UpvoteLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideUpvoteLimiter provides the upvote rate limiter.
func ProvideUpvoteLimiter(i do.Injector) (*UpvoteLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(
		ratelimit.PerInterval(cfg.RateLimit.UpvotesPerMinute, time.Minute),
		cfg.RateLimit.UpvoteBurst,
	)
	return &UpvoteLimiterHandle{KeyedRateLimiter: limiter}, nil
}
