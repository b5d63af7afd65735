// Package seed loads YAML fixtures into a BookVault store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/store"
	"github.com/bookvault/bookvault-server/internal/validation"
)

// ErrResetUnsupported is returned when a reset is requested on a backend
// that cannot wipe its data.
var ErrResetUnsupported = errors.New("store does not support reset")

// Fixtures is the on-disk fixture document.
type Fixtures struct {
	Books   []BookFixture   `yaml:"books"`
	Reviews []ReviewFixture `yaml:"reviews"`
}

// BookFixture is a book plus the key reviews use to refer to it.
type BookFixture struct {
	Key           string `yaml:"key"`
	Title         string `yaml:"book_title"`
	CoverPhoto    string `yaml:"cover_photo"`
	TotalPages    int    `yaml:"total_page"`
	Author        string `yaml:"book_author"`
	OwnerEmail    string `yaml:"user_email"`
	OwnerName     string `yaml:"user_name"`
	Category      string `yaml:"book_category"`
	ReadingStatus string `yaml:"reading_status"`
	Overview      string `yaml:"book_overview"`
	Upvotes       int64  `yaml:"upvote"`
}

// ReviewFixture references its book by fixture key.
type ReviewFixture struct {
	CreatedAt     time.Time `yaml:"created_at"`
	Book          string    `yaml:"book"`
	ReviewerEmail string    `yaml:"user_email"`
	Text          string    `yaml:"review_text"`
}

// Options controls Apply.
type Options struct {
	// Reset wipes the store before loading.
	Reset bool
	// Now stamps reviews without created_at. Defaults to time.Now.
	Now func() time.Time
}

// Summary reports what Apply wrote.
type Summary struct {
	Books   int
	Reviews int
}

// LoadFile reads fixtures from path.
func LoadFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a fixture document. Unknown keys are rejected.
func Decode(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// Validate checks every fixture against the same rules the API enforces and
// that review keys resolve.
func (fx *Fixtures) Validate() error {
	v := validation.New()
	keys := make(map[string]bool, len(fx.Books))

	for i, b := range fx.Books {
		if b.Key == "" {
			return fmt.Errorf("books[%d]: key is required", i)
		}
		if keys[b.Key] {
			return fmt.Errorf("books[%d]: duplicate key %q", i, b.Key)
		}
		keys[b.Key] = true

		if b.OwnerEmail == "" {
			return fmt.Errorf("books[%d] (%s): user_email is required", i, b.Key)
		}
		if b.Upvotes < 0 {
			return fmt.Errorf("books[%d] (%s): upvote must not be negative", i, b.Key)
		}
		if err := v.Validate(b.content()); err != nil {
			return fmt.Errorf("books[%d] (%s): %w", i, b.Key, err)
		}
	}

	type pair struct{ book, email string }
	seen := make(map[pair]bool, len(fx.Reviews))
	for i, r := range fx.Reviews {
		if !keys[r.Book] {
			return fmt.Errorf("reviews[%d]: unknown book key %q", i, r.Book)
		}
		if r.ReviewerEmail == "" || r.Text == "" {
			return fmt.Errorf("reviews[%d]: user_email and review_text are required", i)
		}
		p := pair{r.Book, strings.ToLower(strings.TrimSpace(r.ReviewerEmail))}
		if seen[p] {
			return fmt.Errorf("reviews[%d]: %s already reviewed %q", i, r.ReviewerEmail, r.Book)
		}
		seen[p] = true
	}
	return nil
}

func (b BookFixture) content() domain.BookContent {
	return domain.BookContent{
		Title:         b.Title,
		CoverPhoto:    b.CoverPhoto,
		TotalPages:    b.TotalPages,
		Author:        b.Author,
		Category:      domain.Category(b.Category),
		ReadingStatus: domain.ReadingStatus(b.ReadingStatus),
		Overview:      b.Overview,
	}
}

// Apply validates fx and writes it to st. Books are inserted first so
// reviews can reference their generated ids.
func Apply(ctx context.Context, st store.Store, fx *Fixtures, opts Options, logger *slog.Logger) (Summary, error) {
	var sum Summary
	if err := fx.Validate(); err != nil {
		return sum, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Reset {
		r, ok := st.(store.Resetter)
		if !ok {
			return sum, ErrResetUnsupported
		}
		if err := r.Reset(ctx); err != nil {
			return sum, fmt.Errorf("reset store: %w", err)
		}
		logger.Info("store reset")
	}

	ids := make(map[string]string, len(fx.Books))
	for _, bf := range fx.Books {
		book := &domain.Book{
			OwnerEmail: bf.OwnerEmail,
			OwnerName:  bf.OwnerName,
		}
		book.Apply(bf.content())
		if err := st.CreateBook(ctx, book); err != nil {
			return sum, fmt.Errorf("create book %q: %w", bf.Key, err)
		}
		if bf.Upvotes > 0 {
			if _, err := st.SetUpvotes(ctx, book.ID, bf.Upvotes); err != nil {
				return sum, fmt.Errorf("set upvotes for %q: %w", bf.Key, err)
			}
		}
		ids[bf.Key] = book.ID
		sum.Books++
		logger.Debug("seeded book", "key", bf.Key, "book_id", book.ID)
	}

	for _, rf := range fx.Reviews {
		created := rf.CreatedAt
		if created.IsZero() {
			created = opts.Now()
		}
		review := &domain.Review{
			BookID:        ids[rf.Book],
			ReviewerEmail: rf.ReviewerEmail,
			Text:          rf.Text,
			CreatedAt:     created.UTC(),
		}
		if err := st.CreateReview(ctx, review); err != nil {
			return sum, fmt.Errorf("create review of %q by %s: %w", rf.Book, rf.ReviewerEmail, err)
		}
		sum.Reviews++
	}

	logger.Info("fixtures applied", "books", sum.Books, "reviews", sum.Reviews)
	return sum, nil
}
