// Package storetest holds behaviour tests shared by every store backend.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/id"
	"github.com/bookvault/bookvault-server/internal/store"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the full store contract against a backend.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGetBook", func(t *testing.T) { testCreateAndGetBook(t, newStore(t)) })
	t.Run("GetBookUnknown", func(t *testing.T) { testGetBookUnknown(t, newStore(t)) })
	t.Run("ListBooksFilters", func(t *testing.T) { testListBooksFilters(t, newStore(t)) })
	t.Run("ListBooksSorts", func(t *testing.T) { testListBooksSorts(t, newStore(t)) })
	t.Run("ListBooksLiteralSearch", func(t *testing.T) { testListBooksLiteralSearch(t, newStore(t)) })
	t.Run("ListBooksByOwner", func(t *testing.T) { testListBooksByOwner(t, newStore(t)) })
	t.Run("TopBooks", func(t *testing.T) { testTopBooks(t, newStore(t)) })
	t.Run("UpdateBookContent", func(t *testing.T) { testUpdateBookContent(t, newStore(t)) })
	t.Run("StatusAndUpvotes", func(t *testing.T) { testStatusAndUpvotes(t, newStore(t)) })
	t.Run("DeleteBookKeepsReviews", func(t *testing.T) { testDeleteBookKeepsReviews(t, newStore(t)) })
	t.Run("CategorySummary", func(t *testing.T) { testCategorySummary(t, newStore(t)) })
	t.Run("ReviewLifecycle", func(t *testing.T) { testReviewLifecycle(t, newStore(t)) })
	t.Run("ReviewUniqueness", func(t *testing.T) { testReviewUniqueness(t, newStore(t)) })
}

// Fixture is the catalogue every listing test starts from.
var Fixture = []domain.Book{
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Category: domain.CategoryFantasy, Upvotes: 5, OwnerEmail: "alice@example.com"},
	{Title: "The Return of the King", Author: "J.R.R. Tolkien", Category: domain.CategoryFantasy, Upvotes: 9, OwnerEmail: "alice@example.com"},
	{Title: "Dune", Author: "Frank Herbert", Category: domain.CategorySciFi, Upvotes: 7, OwnerEmail: "bob@example.com"},
	{Title: "Ringworld", Author: "Larry Niven", Category: domain.CategorySciFi, Upvotes: 1, OwnerEmail: "bob@example.com"},
	{Title: "Steve Jobs", Author: "Walter Isaacson", Category: domain.CategoryBiography, Upvotes: 3, OwnerEmail: "carol@example.com"},
	{Title: "C++ (Primer)", Author: "Stanley Lippman", Category: domain.CategoryNonFiction, Upvotes: 0, OwnerEmail: "carol@example.com"},
	{Title: "Gone Girl", Author: "Gillian Flynn", Category: domain.CategoryMystery, Upvotes: 2, OwnerEmail: "carol@example.com"},
	{Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", Category: domain.CategoryFantasy, Upvotes: 4, OwnerEmail: "alice@example.com"},
	{Title: "Ringbearer Tales", Author: "Ann Other", Category: domain.CategoryFantasy, Upvotes: 6, OwnerEmail: "bob@example.com"},
}

// Seed inserts the fixture and returns the stored books in insertion order.
func Seed(t *testing.T, s store.Store) []*domain.Book {
	t.Helper()
	ctx := context.Background()

	out := make([]*domain.Book, 0, len(Fixture))
	for _, b := range Fixture {
		book := b
		book.CoverPhoto = "https://covers.example.com/" + strings.ReplaceAll(strings.ToLower(b.Title), " ", "-") + ".jpg"
		book.TotalPages = 300
		book.OwnerName = strings.Split(b.OwnerEmail, "@")[0]
		book.ReadingStatus = domain.StatusWantToRead
		require.NoError(t, s.CreateBook(ctx, &book))
		out = append(out, &book)
	}
	return out
}

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func testCreateAndGetBook(t *testing.T, s store.Store) {
	ctx := context.Background()

	book := &domain.Book{
		Title:         "Dune",
		CoverPhoto:    "https://covers.example.com/dune.jpg",
		TotalPages:    412,
		Author:        "Frank Herbert",
		OwnerEmail:    "bob@example.com",
		OwnerName:     "Bob",
		Category:      domain.CategorySciFi,
		ReadingStatus: domain.StatusReading,
		Overview:      "Spice.",
	}
	require.NoError(t, s.CreateBook(ctx, book))
	require.True(t, id.Valid(book.ID), "id %q should be 24 lowercase hex", book.ID)

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, got)
}

func testGetBookUnknown(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetBook(ctx, "64b7f0c2a1d3e4f5a6b7c8d9")
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	_, err = s.GetBook(ctx, "not-an-id")
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func testListBooksFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	Seed(t, s)

	all, err := s.ListBooks(ctx, domain.NewBookFilter("All", "", ""))
	require.NoError(t, err)
	assert.Len(t, all, len(Fixture))

	fantasy, err := s.ListBooks(ctx, domain.NewBookFilter("Fantasy", "", ""))
	require.NoError(t, err)
	assert.Len(t, fantasy, 4)
	for _, b := range fantasy {
		assert.Equal(t, domain.CategoryFantasy, b.Category)
	}

	got, err := s.ListBooks(ctx, domain.NewBookFilter("Fantasy", "RING", domain.SortTitleAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ringbearer Tales", "The Lord of the Rings"}, titles(got))

	byAuthor, err := s.ListBooks(ctx, domain.NewBookFilter("", "herbert", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(byAuthor))

	none, err := s.ListBooks(ctx, domain.NewBookFilter("Mystery", "tolkien", ""))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testListBooksSorts(t *testing.T, s store.Store) {
	ctx := context.Background()
	Seed(t, s)

	def, err := s.ListBooks(ctx, domain.BookFilter{})
	require.NoError(t, err)
	want := make([]string, len(Fixture))
	for i, b := range Fixture {
		want[i] = b.Title
	}
	assert.Equal(t, want, titles(def), "default order is insertion order")

	asc, err := s.ListBooks(ctx, domain.BookFilter{Sort: domain.SortTitleAsc})
	require.NoError(t, err)
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Title, asc[i].Title)
	}

	desc, err := s.ListBooks(ctx, domain.BookFilter{Sort: domain.SortTitleDesc})
	require.NoError(t, err)
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].Title, desc[i].Title)
	}

	up, err := s.ListBooks(ctx, domain.BookFilter{Sort: domain.SortUpvoteAsc})
	require.NoError(t, err)
	for i := 1; i < len(up); i++ {
		assert.LessOrEqual(t, up[i-1].Upvotes, up[i].Upvotes)
	}

	down, err := s.ListBooks(ctx, domain.BookFilter{Sort: domain.SortUpvoteDesc})
	require.NoError(t, err)
	for i := 1; i < len(down); i++ {
		assert.GreaterOrEqual(t, down[i-1].Upvotes, down[i].Upvotes)
	}
}

func testListBooksLiteralSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	Seed(t, s)

	got, err := s.ListBooks(ctx, domain.BookFilter{Search: "++ ("})
	require.NoError(t, err)
	assert.Equal(t, []string{"C++ (Primer)"}, titles(got))

	for _, pattern := range []string{".*", "^The", "[a-z]+", "%", "_"} {
		got, err := s.ListBooks(ctx, domain.BookFilter{Search: pattern})
		require.NoError(t, err)
		assert.Empty(t, got, "pattern %q must match literally", pattern)
	}
}

func testListBooksByOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	Seed(t, s)

	got, err := s.ListBooksByOwner(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Ringworld", "Ringbearer Tales"}, titles(got))

	none, err := s.ListBooksByOwner(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testTopBooks(t *testing.T, s store.Store) {
	ctx := context.Background()
	Seed(t, s)

	got, err := s.TopBooks(ctx, store.TopBooksLimit)
	require.NoError(t, err)
	require.Len(t, got, store.TopBooksLimit)

	upvotes := make([]int64, len(got))
	for i, b := range got {
		upvotes[i] = b.Upvotes
	}
	assert.Equal(t, []int64{9, 7, 6, 5, 4, 3}, upvotes)
}

func testUpdateBookContent(t *testing.T, s store.Store) {
	ctx := context.Background()
	books := Seed(t, s)
	target := books[2]

	content := target.Content()
	content.Title = "Dune Messiah"
	content.TotalPages = 256
	content.Overview = "Sequel."

	res, err := s.UpdateBookContent(ctx, target.ID, content)
	require.NoError(t, err)
	assert.Equal(t, store.UpdateResult{Matched: 1, Modified: 1}, res)

	got, err := s.GetBook(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, 256, got.TotalPages)
	assert.Equal(t, target.OwnerEmail, got.OwnerEmail)
	assert.Equal(t, target.OwnerName, got.OwnerName)
	assert.Equal(t, target.Upvotes, got.Upvotes)

	res, err = s.UpdateBookContent(ctx, "64b7f0c2a1d3e4f5a6b7c8d9", content)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Matched)
}

func testStatusAndUpvotes(t *testing.T, s store.Store) {
	ctx := context.Background()
	books := Seed(t, s)
	target := books[0]

	res, err := s.SetReadingStatus(ctx, target.ID, domain.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	res, err = s.SetUpvotes(ctx, target.ID, 41)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)

	res, err = s.IncrementUpvotes(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Modified)

	got, err := s.GetBook(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, got.ReadingStatus)
	assert.Equal(t, int64(42), got.Upvotes)

	res, err = s.IncrementUpvotes(ctx, "64b7f0c2a1d3e4f5a6b7c8d9")
	require.NoError(t, err)
	assert.Equal(t, store.UpdateResult{}, res)
}

func testDeleteBookKeepsReviews(t *testing.T, s store.Store) {
	ctx := context.Background()
	books := Seed(t, s)
	target := books[1]

	review := &domain.Review{BookID: target.ID, ReviewerEmail: "bob@example.com", Text: "Epic.", CreatedAt: time.Now()}
	require.NoError(t, s.CreateReview(ctx, review))

	n, err := s.DeleteBook(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteBook(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = s.GetBook(ctx, target.ID)
	assert.ErrorIs(t, err, store.ErrBookNotFound)

	reviews, err := s.ListReviewsByBook(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func testCategorySummary(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.CategorySummary(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	Seed(t, s)
	got, err := s.CategorySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryCount{
		{Category: "Biography", Count: 1},
		{Category: "Fantasy", Count: 4},
		{Category: "Mystery", Count: 1},
		{Category: "Non-Fiction", Count: 1},
		{Category: "Sci-Fi", Count: 2},
	}, got)
}

func testReviewLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	books := Seed(t, s)
	bookID := books[0].ID

	first := &domain.Review{BookID: bookID, ReviewerEmail: "bob@example.com", Text: "Charming.", CreatedAt: time.Now().Add(-time.Minute).UTC()}
	second := &domain.Review{BookID: bookID, ReviewerEmail: "carol@example.com", Text: "Too many songs.", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateReview(ctx, second))
	require.NoError(t, s.CreateReview(ctx, first))
	assert.True(t, id.Valid(first.ID))

	list, err := s.ListReviewsByBook(ctx, bookID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "oldest first")
	assert.Equal(t, second.ID, list[1].ID)

	found, err := s.FindReview(ctx, bookID, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)

	_, err = s.FindReview(ctx, bookID, "dave@example.com")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	editedAt := time.Now().UTC()
	res, err := s.UpdateReviewText(ctx, first.ID, "Charming, on reread too.", editedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)

	got, err := s.GetReview(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Charming, on reread too.", got.Text)
	require.NotNil(t, got.EditedAt)
	assert.WithinDuration(t, editedAt, *got.EditedAt, time.Millisecond)
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)

	n, err := s.DeleteReview(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetReview(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	_, err = s.GetReview(ctx, "bogus")
	assert.ErrorIs(t, err, store.ErrReviewNotFound)

	empty, err := s.ListReviewsByBook(ctx, "64b7f0c2a1d3e4f5a6b7c8d9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testReviewUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()
	books := Seed(t, s)

	review := &domain.Review{BookID: books[0].ID, ReviewerEmail: "bob@example.com", Text: "Once.", CreatedAt: time.Now()}
	require.NoError(t, s.CreateReview(ctx, review))

	dup := &domain.Review{BookID: books[0].ID, ReviewerEmail: "bob@example.com", Text: "Twice.", CreatedAt: time.Now()}
	assert.ErrorIs(t, s.CreateReview(ctx, dup), store.ErrReviewExists)

	list, err := s.ListReviewsByBook(ctx, books[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Once.", list[0].Text)

	other := &domain.Review{BookID: books[1].ID, ReviewerEmail: "bob@example.com", Text: "Different book.", CreatedAt: time.Now()}
	assert.NoError(t, s.CreateReview(ctx, other))
}
