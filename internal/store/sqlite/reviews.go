package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/id"
	"github.com/bookvault/bookvault-server/internal/store"
)

const reviewColumns = `id, book_id, reviewer_email, review_text, created_at, edited_at`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		r         domain.Review
		createdAt string
		editedAt  sql.NullString
	)
	if err := scanner.Scan(&r.ID, &r.BookID, &r.ReviewerEmail, &r.Text, &createdAt, &editedAt); err != nil {
		return nil, err
	}

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.EditedAt, err = parseNullableTime(editedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review and assigns its ID.
// Returns store.ErrReviewExists when the reviewer already reviewed the book.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	reviewID, err := id.Generate()
	if err != nil {
		return err
	}

	var editedAt sql.NullString
	if review.EditedAt != nil {
		editedAt = sql.NullString{String: formatTime(*review.EditedAt), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, reviewer_email, review_text, created_at, edited_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reviewID,
		review.BookID,
		review.ReviewerEmail,
		review.Text,
		formatTime(review.CreatedAt),
		editedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrReviewExists
		}
		return fmt.Errorf("insert review: %w", err)
	}

	review.ID = reviewID
	return nil
}

func (s *Store) getReview(ctx context.Context, where string, args ...any) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE `+where, args...)
	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.getReview(ctx, `id = ?`, reviewID)
}

// FindReview returns the review email wrote for bookID.
func (s *Store) FindReview(ctx context.Context, bookID, email string) (*domain.Review, error) {
	return s.getReview(ctx, `book_id = ? AND reviewer_email = ?`, bookID, email)
}

// ListReviewsByBook returns a book's reviews, oldest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? ORDER BY created_at, rowid`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// UpdateReviewText replaces the review text and stamps edited_at.
func (s *Store) UpdateReviewText(ctx context.Context, reviewID, text string, editedAt time.Time) (store.UpdateResult, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET review_text = ?, edited_at = ? WHERE id = ?`,
		text, formatTime(editedAt), reviewID)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("update review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpdateResult{}, err
	}
	return store.UpdateResult{Matched: n, Modified: n}, nil
}

// DeleteReview removes a review and returns the number of rows deleted.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, reviewID)
	if err != nil {
		return 0, fmt.Errorf("delete review: %w", err)
	}
	return res.RowsAffected()
}
