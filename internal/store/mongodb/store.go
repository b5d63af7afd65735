// Package mongodb implements store.Store on MongoDB, using the database and
// collection layout of the original BookVault deployment (BookDB.BooksInfo
// and BookDB.reviews).
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/bookvault/bookvault-server/internal/store"
)

// Config holds connection settings.
type Config struct {
	URI               string
	Database          string
	BooksCollection   string
	ReviewsCollection string
	ConnectTimeout    time.Duration
}

// Store provides MongoDB-backed persistence for the BookVault server.
type Store struct {
	client  *mongo.Client
	books   *mongo.Collection
	reviews *mongo.Collection
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to MongoDB with the stable v1 server API, verifies the
// connection and ensures indexes.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:  client,
		books:   db.Collection(cfg.BooksCollection),
		reviews: db.Collection(cfg.ReviewsCollection),
		logger:  logger,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		// Existing deployments may hold duplicate reviews that block the
		// unique index; the service-level check still applies.
		logger.Warn("failed to ensure mongo indexes", "error", err)
	}

	logger.Info("mongo store connected",
		"database", cfg.Database,
		"books", cfg.BooksCollection,
		"reviews", cfg.ReviewsCollection,
	)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := s.books.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_email", Value: 1}}},
			{Keys: bson.D{{Key: "book_category", Value: 1}}},
			{Keys: bson.D{{Key: "upvote", Value: -1}}},
		})
		if err != nil {
			return fmt.Errorf("books indexes: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		_, err := s.reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "book_id", Value: 1}, {Key: "user_email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("book_reviewer_unique"),
			},
			{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "created_at", Value: 1}}},
		})
		if err != nil {
			return fmt.Errorf("reviews indexes: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Reset drops both collections and recreates their indexes.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.books.Drop(ctx); err != nil {
		return fmt.Errorf("drop books: %w", err)
	}
	if err := s.reviews.Drop(ctx); err != nil {
		return fmt.Errorf("drop reviews: %w", err)
	}
	return s.ensureIndexes(ctx)
}

// objectID parses a hex id. ok is false for malformed input, which callers
// treat as "no such document".
func objectID(hex string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(hex)
	return oid, err == nil
}

func updateResult(res *mongo.UpdateResult) store.UpdateResult {
	return store.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
}
