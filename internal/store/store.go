// Package store defines the persistence interface for the BookVault server.
package store

import (
	"context"
	"time"

	"github.com/bookvault/bookvault-server/internal/domain"
)

// TopBooksLimit is how many books the "top liked" listing returns.
const TopBooksLimit = 6

// UpdateResult reports the outcome of a single-document update, mirroring
// the driver result the client reads.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Store defines the interface for all persistence operations.
type Store interface {
	BookStore
	ReviewStore

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Resetter is implemented by backends that can wipe all data.
type Resetter interface {
	Reset(ctx context.Context) error
}

// BookStore persists books.
//
// Update methods report Matched == 0 for unknown ids rather than failing.
type BookStore interface {
	// CreateBook inserts book, assigning its ID.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	ListBooksByOwner(ctx context.Context, email string) ([]*domain.Book, error)
	TopBooks(ctx context.Context, limit int) ([]*domain.Book, error)
	UpdateBookContent(ctx context.Context, id string, content domain.BookContent) (UpdateResult, error)
	SetReadingStatus(ctx context.Context, id string, status domain.ReadingStatus) (UpdateResult, error)
	SetUpvotes(ctx context.Context, id string, upvotes int64) (UpdateResult, error)
	IncrementUpvotes(ctx context.Context, id string) (UpdateResult, error)
	DeleteBook(ctx context.Context, id string) (int64, error)
	CategorySummary(ctx context.Context) ([]domain.CategoryCount, error)
}

// ReviewStore persists reviews. (book_id, user_email) is unique.
type ReviewStore interface {
	// CreateReview inserts review, assigning its ID. Returns ErrReviewExists
	// when the reviewer already reviewed the book.
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	FindReview(ctx context.Context, bookID, email string) (*domain.Review, error)
	ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error)
	UpdateReviewText(ctx context.Context, id, text string, editedAt time.Time) (UpdateResult, error)
	DeleteReview(ctx context.Context, id string) (int64, error)
}
