package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/reviews/{bookId}",
		Summary:     "List reviews",
		Description: "Returns a book's reviews, oldest first",
		Tags:        []string{"Reviews"},
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "addReview",
		Method:      http.MethodPost,
		Path:        "/add-review",
		Summary:     "Add review",
		Description: "Posts the signed-in user's review of a book. One review per user per book.",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPatch,
		Path:        "/update-review/{id}",
		Summary:     "Update review",
		Description: "Replaces the text of your review",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/delete-review/{id}",
		Summary:     "Delete review",
		Description: "Deletes your review",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleDeleteReview)
}

// === DTOs ===

// ReviewResponse is a review as the client sees it.
type ReviewResponse struct {
	ID            string     `json:"_id" doc:"Review ID"`
	BookID        string     `json:"book_id" doc:"Reviewed book"`
	ReviewerEmail string     `json:"user_email" doc:"Author's email"`
	Text          string     `json:"review_text" doc:"Review text"`
	CreatedAt     time.Time  `json:"created_at" doc:"Creation time"`
	EditedAt      *time.Time `json:"edited_at,omitempty" doc:"Last edit time"`
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:            r.ID,
		BookID:        r.BookID,
		ReviewerEmail: r.ReviewerEmail,
		Text:          r.Text,
		CreatedAt:     r.CreatedAt,
		EditedAt:      r.EditedAt,
	}
}

// ListReviewsInput identifies the reviewed book.
type ListReviewsInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// ReviewListOutput wraps a list of reviews for Huma.
type ReviewListOutput struct {
	Body []ReviewResponse
}

// AddReviewRequest is the request body for posting a review.
type AddReviewRequest struct {
	_             struct{} `json:"-" additionalProperties:"true"`
	BookID        string   `json:"book_id" minLength:"1" doc:"Book being reviewed"`
	ReviewerEmail string   `json:"user_email,omitempty" doc:"Must match the signed-in user when present"`
	Text          string   `json:"review_text" minLength:"1" maxLength:"5000" doc:"Review text"`
}

// AddReviewInput wraps the add review request for Huma.
type AddReviewInput struct {
	Body AddReviewRequest
}

// UpdateReviewRequest is the request body for editing a review.
type UpdateReviewRequest struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Text string   `json:"review_text" minLength:"1" maxLength:"5000" doc:"New review text"`
}

// UpdateReviewInput wraps the edit review request for Huma.
type UpdateReviewInput struct {
	ID   string `path:"id" doc:"Review ID"`
	Body UpdateReviewRequest
}

// ReviewIDInput identifies a review by path.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleListReviews(ctx context.Context, input *ListReviewsInput) (*ReviewListOutput, error) {
	reviews, err := s.services.Review.ListReviews(ctx, input.BookID)
	if err != nil {
		return nil, err
	}

	resp := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		resp[i] = toReviewResponse(r)
	}
	return &ReviewListOutput{Body: resp}, nil
}

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*InsertOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.CreateReview(ctx, identity, service.NewReview{
		BookID:        input.Body.BookID,
		ReviewerEmail: input.Body.ReviewerEmail,
		Text:          input.Body.Text,
	})
	if err != nil {
		return nil, err
	}
	return inserted(review.ID), nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*UpdateOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Review.UpdateReview(ctx, identity, input.ID, input.Body.Text)
	if err != nil {
		return nil, err
	}
	return updated(res), nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*DeleteOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Review.DeleteReview(ctx, identity, input.ID)
	if err != nil {
		return nil, err
	}
	return deleted(n), nil
}
