// Package service implements BookVault's business rules on top of the store.
package service

import (
	"context"
	"log/slog"

	"github.com/bookvault/bookvault-server/internal/auth"
	"github.com/bookvault/bookvault-server/internal/domain"
	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
	"github.com/bookvault/bookvault-server/internal/store"
	"github.com/bookvault/bookvault-server/internal/validation"
)

// NewBook is the input for creating a book. OwnerEmail, if set, must match
// the caller; OwnerName defaults to the caller's display name.
type NewBook struct {
	Content    domain.BookContent
	OwnerEmail string
	OwnerName  string
}

// BookService orchestrates book operations with ownership enforcement.
type BookService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

// ListBooks returns the catalogue filtered and sorted by filter.
func (s *BookService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, domainerrors.Validationf("unknown category %q", filter.Category)
	}
	if !filter.Sort.IsValid() {
		return nil, domainerrors.Validationf("unknown sort %q", filter.Sort)
	}
	filter.Sort = filter.Sort.Normalize()

	books, err := s.store.ListBooks(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list books")
	}
	return books, nil
}

// TopBooks returns the most upvoted books.
func (s *BookService) TopBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.TopBooks(ctx, store.TopBooksLimit)
	if err != nil {
		return nil, storeError(err, "failed to list top books")
	}
	return books, nil
}

// GetBook returns a single book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "failed to get book")
	}
	return book, nil
}

// ListOwnerBooks returns the books owned by email. Callers may only list
// their own books.
func (s *BookService) ListOwnerBooks(ctx context.Context, caller *auth.Identity, email string) ([]*domain.Book, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if !domain.SameEmail(caller.Email, email) {
		return nil, domainerrors.Forbidden("you can only list your own books")
	}

	books, err := s.store.ListBooksByOwner(ctx, caller.Email)
	if err != nil {
		return nil, storeError(err, "failed to list books")
	}
	return books, nil
}

// CategorySummary counts books per category.
func (s *BookService) CategorySummary(ctx context.Context) ([]domain.CategoryCount, error) {
	summary, err := s.store.CategorySummary(ctx)
	if err != nil {
		return nil, storeError(err, "failed to summarise categories")
	}
	return summary, nil
}

// CreateBook adds a book owned by the caller. The upvote count starts at zero.
func (s *BookService) CreateBook(ctx context.Context, caller *auth.Identity, in NewBook) (*domain.Book, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if in.OwnerEmail != "" && !domain.SameEmail(in.OwnerEmail, caller.Email) {
		return nil, domainerrors.Forbidden("user_email must match the signed-in user")
	}
	if err := s.validator.Validate(in.Content); err != nil {
		return nil, err
	}

	ownerName := in.OwnerName
	if ownerName == "" {
		ownerName = caller.Name
	}

	book := &domain.Book{OwnerEmail: caller.Email, OwnerName: ownerName}
	book.Apply(in.Content)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "failed to create book")
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"owner", book.OwnerEmail,
		"category", book.Category,
	)
	return book, nil
}

// getOwned loads a book and checks the caller owns it.
func (s *BookService) getOwned(ctx context.Context, caller *auth.Identity, bookID string) (*domain.Book, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(caller.Email) {
		return nil, domainerrors.Forbidden("you do not own this book")
	}
	return book, nil
}

// UpdateBook replaces the editable fields of a book the caller owns.
func (s *BookService) UpdateBook(ctx context.Context, caller *auth.Identity, bookID string, content domain.BookContent) (store.UpdateResult, error) {
	if err := s.validator.Validate(content); err != nil {
		return store.UpdateResult{}, err
	}
	if _, err := s.getOwned(ctx, caller, bookID); err != nil {
		return store.UpdateResult{}, err
	}

	res, err := s.store.UpdateBookContent(ctx, bookID, content)
	if err != nil {
		return res, storeError(err, "failed to update book")
	}

	s.logger.Info("book updated", "book_id", bookID, "modified", res.Modified)
	return res, nil
}

// UpdateStatus sets the reading status of a book the caller owns.
func (s *BookService) UpdateStatus(ctx context.Context, caller *auth.Identity, bookID string, status domain.ReadingStatus) (store.UpdateResult, error) {
	if !status.IsValid() {
		return store.UpdateResult{}, domainerrors.Validationf("unknown reading status %q", status)
	}
	if _, err := s.getOwned(ctx, caller, bookID); err != nil {
		return store.UpdateResult{}, err
	}

	res, err := s.store.SetReadingStatus(ctx, bookID, status)
	if err != nil {
		return res, storeError(err, "failed to update reading status")
	}
	return res, nil
}

// Upvote sets the upvote count to *set, or increments it when set is nil.
// Anyone may upvote except the book's owner; caller is nil for anonymous
// requests.
func (s *BookService) Upvote(ctx context.Context, caller *auth.Identity, bookID string, set *int64) (store.UpdateResult, error) {
	if set != nil && *set < 0 {
		return store.UpdateResult{}, domainerrors.Validation("upvote must not be negative")
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return store.UpdateResult{}, err
	}
	if caller != nil && book.IsOwnedBy(caller.Email) {
		return store.UpdateResult{}, domainerrors.Forbidden("you cannot upvote your own book")
	}

	var res store.UpdateResult
	if set != nil {
		res, err = s.store.SetUpvotes(ctx, bookID, *set)
	} else {
		res, err = s.store.IncrementUpvotes(ctx, bookID)
	}
	if err != nil {
		return res, storeError(err, "failed to upvote book")
	}
	return res, nil
}

// DeleteBook removes a book the caller owns. Its reviews are kept.
func (s *BookService) DeleteBook(ctx context.Context, caller *auth.Identity, bookID string) (int64, error) {
	if _, err := s.getOwned(ctx, caller, bookID); err != nil {
		return 0, err
	}

	n, err := s.store.DeleteBook(ctx, bookID)
	if err != nil {
		return 0, storeError(err, "failed to delete book")
	}

	s.logger.Info("book deleted", "book_id", bookID, "owner", caller.Email)
	return n, nil
}
