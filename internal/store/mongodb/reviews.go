package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/store"
)

// CreateReview inserts a review and assigns its ID.
// A unique-index violation on (book_id, user_email) becomes store.ErrReviewExists.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	res, err := s.reviews.InsertOne(ctx, newReviewDoc(review))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrReviewExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert review: unexpected id type %T", res.InsertedID)
	}
	review.ID = oid.Hex()
	return nil
}

func (s *Store) findReview(ctx context.Context, filter bson.M) (*domain.Review, error) {
	var doc reviewDoc
	err := s.reviews.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return doc.toDomain(), nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	oid, ok := objectID(reviewID)
	if !ok {
		return nil, store.ErrReviewNotFound
	}
	return s.findReview(ctx, bson.M{"_id": oid})
}

// FindReview returns the review email wrote for bookID.
func (s *Store) FindReview(ctx context.Context, bookID, email string) (*domain.Review, error) {
	return s.findReview(ctx, bson.M{"book_id": bookID, "user_email": email})
}

// ListReviewsByBook returns a book's reviews, oldest first.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]*domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.reviews.Find(ctx, bson.M{"book_id": bookID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*domain.Review{}
	for cursor.Next(ctx) {
		var doc reviewDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode review: %w", err)
		}
		reviews = append(reviews, doc.toDomain())
	}
	return reviews, cursor.Err()
}

// UpdateReviewText replaces the review text and stamps edited_at.
func (s *Store) UpdateReviewText(ctx context.Context, reviewID, text string, editedAt time.Time) (store.UpdateResult, error) {
	oid, ok := objectID(reviewID)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := s.reviews.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"review_text": text,
		"edited_at":   editedAt,
	}})
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("update review: %w", err)
	}
	return updateResult(res), nil
}

// DeleteReview removes a review.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) (int64, error) {
	oid, ok := objectID(reviewID)
	if !ok {
		return 0, nil
	}
	res, err := s.reviews.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete review: %w", err)
	}
	return res.DeletedCount, nil
}
