package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/domain"
	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
	"github.com/bookvault/bookvault-server/internal/store"
	"github.com/bookvault/bookvault-server/internal/validation"
)

// NewReview is the input for posting a review. ReviewerEmail, if set, must
// match the caller.
type NewReview struct {
	BookID        string `json:"book_id" validate:"required"`
	ReviewerEmail string `json:"user_email"`
	Text          string `json:"review_text" validate:"notblank,max=5000"`
}

type reviewEdit struct {
	Text string `json:"review_text" validate:"notblank,max=5000"`
}

// ReviewService enforces one review per reader per book and authorship of edits.
type ReviewService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(store store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// ListReviews returns a book's reviews, oldest first.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "failed to list reviews")
	}
	return reviews, nil
}

// CreateReview posts the caller's review of a book.
func (s *ReviewService) CreateReview(ctx context.Context, caller *auth.Identity, in NewReview) (*domain.Review, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if in.ReviewerEmail != "" && !domain.SameEmail(in.ReviewerEmail, caller.Email) {
		return nil, domainerrors.Forbidden("user_email must match the signed-in user")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, in.BookID); err != nil {
		return nil, storeError(err, "failed to load book")
	}

	// The unique index catches races; this check gives the common case a
	// clean error without relying on the backend's index.
	existing, err := s.store.FindReview(ctx, in.BookID, caller.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domainerrors.Duplicate(MsgReviewExists)
	case err != nil && !domainerrors.Is(err, store.ErrReviewNotFound):
		return nil, storeError(err, "failed to check existing review")
	}

	review := &domain.Review{
		BookID:        in.BookID,
		ReviewerEmail: caller.Email,
		Text:          in.Text,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, storeError(err, "failed to create review")
	}

	s.logger.Info("review created",
		"review_id", review.ID,
		"book_id", review.BookID,
		"reviewer", review.ReviewerEmail,
	)
	return review, nil
}

func (s *ReviewService) getAuthored(ctx context.Context, caller *auth.Identity, reviewID string) (*domain.Review, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, storeError(err, "failed to get review")
	}
	if !review.IsAuthoredBy(caller.Email) {
		return nil, domainerrors.Forbidden("you did not write this review")
	}
	return review, nil
}

// UpdateReview replaces the text of the caller's review and stamps edited_at.
func (s *ReviewService) UpdateReview(ctx context.Context, caller *auth.Identity, reviewID, text string) (store.UpdateResult, error) {
	if err := s.validator.Validate(reviewEdit{Text: text}); err != nil {
		return store.UpdateResult{}, err
	}
	if _, err := s.getAuthored(ctx, caller, reviewID); err != nil {
		return store.UpdateResult{}, err
	}

	res, err := s.store.UpdateReviewText(ctx, reviewID, text, s.now().UTC())
	if err != nil {
		return res, storeError(err, "failed to update review")
	}
	return res, nil
}

// DeleteReview removes the caller's review.
func (s *ReviewService) DeleteReview(ctx context.Context, caller *auth.Identity, reviewID string) (int64, error) {
	if _, err := s.getAuthored(ctx, caller, reviewID); err != nil {
		return 0, err
	}

	n, err := s.store.DeleteReview(ctx, reviewID)
	if err != nil {
		return 0, storeError(err, "failed to delete review")
	}

	s.logger.Info("review deleted", "review_id", reviewID, "reviewer", caller.Email)
	return n, nil
}
