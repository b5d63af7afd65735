package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/store/storetest"
)

func decodeBooks(t *testing.T, body []byte) []BookResponse {
	t.Helper()
	var books []BookResponse
	require.NoError(t, json.Unmarshal(body, &books))
	return books
}

func decodeUpdate(t *testing.T, body []byte) UpdateResult {
	t.Helper()
	var res UpdateResult
	require.NoError(t, json.Unmarshal(body, &res))
	return res
}

func bookTitles(books []BookResponse) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestAddBook_StampsOwner(t *testing.T) {
	ts := setupTestServer(t)

	body := bookBody("Dune", domain.CategorySciFi)
	body["upvote"] = 500
	body["_id"] = "client-supplied"
	resp := ts.api.Post("/add-book", bearer(t, aliceEmail), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res InsertResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))

	resp = ts.api.Get("/book-details/" + res.InsertedID)
	require.Equal(t, http.StatusOK, resp.Code)

	var book BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.Equal(t, res.InsertedID, book.ID)
	assert.Equal(t, aliceEmail, book.OwnerEmail)
	assert.Equal(t, "alice", book.OwnerName)
	assert.Zero(t, book.Upvotes)
	assert.Equal(t, 320, book.TotalPages)
}

func TestAddBook_ForeignEmailForbidden(t *testing.T) {
	ts := setupTestServer(t)

	body := bookBody("Dune", domain.CategorySciFi)
	body["user_email"] = bobEmail
	resp := ts.api.Post("/add-book", bearer(t, aliceEmail), body)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAddBook_InvalidPayload(t *testing.T) {
	ts := setupTestServer(t)

	body := bookBody("Dune", "Poetry")
	resp := ts.api.Post("/add-book", bearer(t, aliceEmail), body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	body = bookBody("", domain.CategorySciFi)
	resp = ts.api.Post("/add-book", bearer(t, aliceEmail), body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestBookshelf_FilterSearchSort(t *testing.T) {
	ts := setupTestServer(t)
	storetest.Seed(t, ts.store)

	q := url.Values{"category": {"Fantasy"}, "search": {"ring"}, "sort": {"title-asc"}}
	resp := ts.api.Get("/bookshelf?" + q.Encode())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Ringbearer Tales", "The Lord of the Rings"}, bookTitles(decodeBooks(t, resp.Body.Bytes())))

	resp = ts.api.Get("/bookshelf?category=All&sort=upvote-desc")
	require.Equal(t, http.StatusOK, resp.Code)
	books := decodeBooks(t, resp.Body.Bytes())
	require.Len(t, books, len(storetest.Fixture))
	for i := 1; i < len(books); i++ {
		assert.GreaterOrEqual(t, books[i-1].Upvotes, books[i].Upvotes)
	}

	// Metacharacters are matched literally.
	resp = ts.api.Get("/bookshelf?" + url.Values{"search": {"C++ ("}}.Encode())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"C++ (Primer)"}, bookTitles(decodeBooks(t, resp.Body.Bytes())))

	resp = ts.api.Get("/bookshelf?category=Poetry")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestTopLikedBooks(t *testing.T) {
	ts := setupTestServer(t)
	storetest.Seed(t, ts.store)

	resp := ts.api.Get("/top-liked-books")
	require.Equal(t, http.StatusOK, resp.Code)

	books := decodeBooks(t, resp.Body.Bytes())
	require.Len(t, books, 6)
	votes := make([]int64, len(books))
	for i, b := range books {
		votes[i] = b.Upvotes
	}
	assert.Equal(t, []int64{9, 7, 6, 5, 4, 3}, votes)
}

func TestMyBooks(t *testing.T) {
	ts := setupTestServer(t)
	storetest.Seed(t, ts.store)

	resp := ts.api.Get("/my-books/"+bobEmail, bearer(t, bobEmail))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.ElementsMatch(t, []string{"Dune", "Ringworld", "Ringbearer Tales"}, bookTitles(decodeBooks(t, resp.Body.Bytes())))

	resp = ts.api.Get("/my-books?email="+url.QueryEscape(bobEmail), bearer(t, bobEmail))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeBooks(t, resp.Body.Bytes()), 3)

	resp = ts.api.Get("/my-books/"+aliceEmail, bearer(t, bobEmail))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/my-books?email="+url.QueryEscape(aliceEmail), bearer(t, bobEmail))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/my-books/" + bobEmail)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCategoriesSummary(t *testing.T) {
	ts := setupTestServer(t)
	storetest.Seed(t, ts.store)

	resp := ts.api.Get("/categories-summary")
	require.Equal(t, http.StatusOK, resp.Code)

	var summary []CategoryCountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &summary))
	assert.Equal(t, []CategoryCountResponse{
		{Category: "Biography", Count: 1},
		{Category: "Fantasy", Count: 4},
		{Category: "Mystery", Count: 1},
		{Category: "Non-Fiction", Count: 1},
		{Category: "Sci-Fi", Count: 2},
	}, summary)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, aliceEmail, "Dune", domain.CategorySciFi)

	body := bookBody("Dune Messiah", domain.CategorySciFi)
	body["user_email"] = bobEmail // ignored: ownership never changes here

	resp := ts.api.Put("/update-book/"+id, bearer(t, bobEmail), body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put("/update-book/"+id, bearer(t, aliceEmail), body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, decodeUpdate(t, resp.Body.Bytes()))

	book, err := ts.store.GetBook(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, aliceEmail, book.OwnerEmail)

	resp = ts.api.Put("/update-book/ffffffffffffffffffffffff", bearer(t, aliceEmail), body)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateStatus(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, aliceEmail, "Dune", domain.CategorySciFi)

	resp := ts.api.Patch("/update-status/"+id, bearer(t, aliceEmail), map[string]any{"reading_status": "Reading"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, int64(1), decodeUpdate(t, resp.Body.Bytes()).ModifiedCount)

	resp = ts.api.Patch("/update-status/"+id, bearer(t, aliceEmail), map[string]any{"reading_status": "Reading"})
	require.Equal(t, http.StatusOK, resp.Code)
	res := decodeUpdate(t, resp.Body.Bytes())
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.ModifiedCount)

	resp = ts.api.Patch("/update-status/"+id, bearer(t, bobEmail), map[string]any{"reading_status": "Read"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Patch("/update-status/"+id, map[string]any{"reading_status": "Read"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Patch("/update-status/"+id, bearer(t, aliceEmail), map[string]any{"reading_status": "Skimmed"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestUpvote(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, aliceEmail, "Dune", domain.CategorySciFi)

	upvotes := func() int64 {
		book, err := ts.store.GetBook(context.Background(), id)
		require.NoError(t, err)
		return book.Upvotes
	}

	resp := ts.api.Patch("/upvote/" + id)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, int64(1), upvotes())

	resp = ts.api.Patch("/upvote/"+id, bearer(t, bobEmail), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, int64(2), upvotes())

	resp = ts.api.Patch("/upvote/"+id, map[string]any{"upvote": 41})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, decodeUpdate(t, resp.Body.Bytes()))
	assert.Equal(t, int64(41), upvotes())

	resp = ts.api.Patch("/upvote/"+id, map[string]any{"upvote": -3})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Patch("/upvote/"+id, bearer(t, aliceEmail))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, int64(41), upvotes())

	resp = ts.api.Patch("/upvote/ffffffffffffffffffffffff")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteBook_KeepsReviews(t *testing.T) {
	ts := setupTestServer(t)
	id := ts.createBook(t, aliceEmail, "Dune", domain.CategorySciFi)

	resp := ts.api.Post("/add-review", bearer(t, bobEmail), map[string]any{
		"book_id":     id,
		"user_email":  bobEmail,
		"review_text": "Spice must flow.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/delete-book/"+id, bearer(t, bobEmail))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/delete-book/"+id, bearer(t, aliceEmail))
	require.Equal(t, http.StatusOK, resp.Code)

	var res DeleteResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, DeleteResult{Acknowledged: true, DeletedCount: 1}, res)

	resp = ts.api.Get("/book-details/" + id)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/reviews/" + id)
	require.Equal(t, http.StatusOK, resp.Code)
	var reviews []ReviewResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reviews))
	assert.Len(t, reviews, 1)
}
