package service

import (
	"errors"

	"github.com/bookvault/bookvault-server/internal/auth"
	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
	"github.com/bookvault/bookvault-server/internal/store"
)

// MsgReviewExists is the message the client shows for a second review.
const MsgReviewExists = "Review already exists"

// storeError converts store sentinels into domain errors. Anything else is
// an internal failure described by op.
func storeError(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrBookNotFound):
		return domainerrors.NotFound("book not found")
	case errors.Is(err, store.ErrReviewNotFound):
		return domainerrors.NotFound("review not found")
	case errors.Is(err, store.ErrReviewExists):
		return domainerrors.Duplicate(MsgReviewExists)
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op)
	}
}

// requireCaller rejects anonymous callers and callers without an email,
// since ownership is keyed by email.
func requireCaller(caller *auth.Identity) error {
	if caller == nil {
		return domainerrors.Unauthorized("authentication required")
	}
	if caller.Email == "" {
		return domainerrors.Forbidden("a verified email address is required")
	}
	return nil
}
