package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/store"
)

func (s *Store) findBooks(ctx context.Context, filter any, opts *options.FindOptions) ([]*domain.Book, error) {
	cursor, err := s.books.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	books := []*domain.Book{}
	for cursor.Next(ctx) {
		var doc bookDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode book: %w", err)
		}
		books = append(books, doc.toDomain())
	}
	return books, cursor.Err()
}

// CreateBook inserts a new book and assigns its ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.books.InsertOne(ctx, newBookDoc(book))
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert book: unexpected id type %T", res.InsertedID)
	}
	book.ID = oid.Hex()
	return nil
}

// GetBook retrieves a book by ID. Malformed ids are reported as not found.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	oid, ok := objectID(bookID)
	if !ok {
		return nil, store.ErrBookNotFound
	}

	var doc bookDoc
	err := s.books.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return doc.toDomain(), nil
}

// ListBooks returns books matching filter.
func (s *Store) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books, err := s.findBooks(ctx, bookFilter(filter), options.Find().SetSort(bookSort(filter.Sort)))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListBooksByOwner returns every book whose user_email equals email.
func (s *Store) ListBooksByOwner(ctx context.Context, email string) ([]*domain.Book, error) {
	books, err := s.findBooks(ctx, bson.M{"user_email": email}, options.Find().SetSort(bookSort(domain.SortDefault)))
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	return books, nil
}

// TopBooks returns up to limit books by upvotes, highest first.
func (s *Store) TopBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	opts := options.Find().SetSort(bookSort(domain.SortUpvoteDesc)).SetLimit(int64(limit))
	books, err := s.findBooks(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top books: %w", err)
	}
	return books, nil
}

func (s *Store) updateBook(ctx context.Context, bookID string, update bson.M) (store.UpdateResult, error) {
	oid, ok := objectID(bookID)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := s.books.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updateResult(res), nil
}

// UpdateBookContent replaces the owner-editable fields of a book.
func (s *Store) UpdateBookContent(ctx context.Context, bookID string, c domain.BookContent) (store.UpdateResult, error) {
	res, err := s.updateBook(ctx, bookID, bson.M{"$set": bson.M{
		"book_title":     c.Title,
		"cover_photo":    c.CoverPhoto,
		"total_page":     c.TotalPages,
		"book_author":    c.Author,
		"book_category":  string(c.Category),
		"reading_status": string(c.ReadingStatus),
		"book_overview":  c.Overview,
	}})
	if err != nil {
		return res, fmt.Errorf("update book: %w", err)
	}
	return res, nil
}

// SetReadingStatus sets the reading status of a book.
func (s *Store) SetReadingStatus(ctx context.Context, bookID string, status domain.ReadingStatus) (store.UpdateResult, error) {
	res, err := s.updateBook(ctx, bookID, bson.M{"$set": bson.M{"reading_status": string(status)}})
	if err != nil {
		return res, fmt.Errorf("set reading status: %w", err)
	}
	return res, nil
}

// SetUpvotes overwrites the upvote count of a book.
func (s *Store) SetUpvotes(ctx context.Context, bookID string, upvotes int64) (store.UpdateResult, error) {
	res, err := s.updateBook(ctx, bookID, bson.M{"$set": bson.M{"upvote": upvotes}})
	if err != nil {
		return res, fmt.Errorf("set upvotes: %w", err)
	}
	return res, nil
}

// IncrementUpvotes adds one to the upvote count atomically.
func (s *Store) IncrementUpvotes(ctx context.Context, bookID string) (store.UpdateResult, error) {
	res, err := s.updateBook(ctx, bookID, bson.M{"$inc": bson.M{"upvote": 1}})
	if err != nil {
		return res, fmt.Errorf("increment upvotes: %w", err)
	}
	return res, nil
}

// DeleteBook removes a book. Reviews of the book are left in place.
func (s *Store) DeleteBook(ctx context.Context, bookID string) (int64, error) {
	oid, ok := objectID(bookID)
	if !ok {
		return 0, nil
	}
	res, err := s.books.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return res.DeletedCount, nil
}

// CategorySummary counts books per category.
func (s *Store) CategorySummary(ctx context.Context) ([]domain.CategoryCount, error) {
	cursor, err := s.books.Aggregate(ctx, categorySummaryPipeline())
	if err != nil {
		return nil, fmt.Errorf("category summary: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode category summary: %w", err)
	}

	raw := make([]domain.CategoryCount, len(rows))
	for i, r := range rows {
		raw[i] = domain.CategoryCount{Category: r.Category, Count: r.Count}
	}
	return store.MergeCategoryCounts(raw), nil
}
