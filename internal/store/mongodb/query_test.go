package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bookvault/bookvault-server/internal/domain"
)

func TestBookFilter(t *testing.T) {
	t.Run("empty filter matches everything", func(t *testing.T) {
		assert.Equal(t, bson.M{}, bookFilter(domain.NewBookFilter("All", "", "")))
	})

	t.Run("category only", func(t *testing.T) {
		assert.Equal(t, bson.M{"book_category": "Fantasy"}, bookFilter(domain.NewBookFilter("Fantasy", "", "")))
	})

	t.Run("search is quoted and case-insensitive", func(t *testing.T) {
		got := bookFilter(domain.NewBookFilter("Fantasy", "c++ (3rd.)", ""))

		want := primitive.Regex{Pattern: `c\+\+ \(3rd\.\)`, Options: "i"}
		assert.Equal(t, bson.M{
			"book_category": "Fantasy",
			"$or": bson.A{
				bson.M{"book_title": want},
				bson.M{"book_author": want},
			},
		}, got)
	})
}

func TestBookSort(t *testing.T) {
	tests := []struct {
		sort domain.SortOrder
		want bson.D
	}{
		{domain.SortTitleAsc, bson.D{{Key: "book_title", Value: 1}, {Key: "_id", Value: 1}}},
		{domain.SortTitleDesc, bson.D{{Key: "book_title", Value: -1}, {Key: "_id", Value: 1}}},
		{domain.SortUpvoteAsc, bson.D{{Key: "upvote", Value: 1}, {Key: "_id", Value: 1}}},
		{domain.SortUpvoteDesc, bson.D{{Key: "upvote", Value: -1}, {Key: "_id", Value: 1}}},
		{domain.SortDefault, bson.D{{Key: "_id", Value: 1}}},
		{"", bson.D{{Key: "_id", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, bookSort(tt.sort))
		})
	}
}

func TestCategorySummaryPipeline(t *testing.T) {
	pipeline := categorySummaryPipeline()
	require.Len(t, pipeline, 2)

	group := pipeline[0].(bson.M)["$group"].(bson.M)
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$book_category", "Unknown"}}, group["_id"])
}

func TestPageCount_DecodesLegacyShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want pageCount
	}{
		{"int32", int32(310), 310},
		{"int64", int64(1200), 1200},
		{"double", 288.0, 288},
		{"numeric string", " 412 ", 412},
		{"garbage string", "lots", 0},
		{"null", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"total_page": tt.raw})
			require.NoError(t, err)

			var doc struct {
				TotalPages pageCount `bson:"total_page"`
			}
			require.NoError(t, bson.Unmarshal(data, &doc))
			assert.Equal(t, tt.want, doc.TotalPages)
		})
	}
}

func TestPageCount_RejectsDocuments(t *testing.T) {
	data, err := bson.Marshal(bson.M{"total_page": bson.M{"n": 1}})
	require.NoError(t, err)

	var doc struct {
		TotalPages pageCount `bson:"total_page"`
	}
	assert.Error(t, bson.Unmarshal(data, &doc))
}

func TestBookDoc_RoundTrip(t *testing.T) {
	book := &domain.Book{
		Title:         "Dune",
		CoverPhoto:    "https://covers.example.com/dune.jpg",
		TotalPages:    412,
		Author:        "Frank Herbert",
		OwnerEmail:    "bob@example.com",
		OwnerName:     "Bob",
		Category:      domain.CategorySciFi,
		ReadingStatus: domain.StatusRead,
		Upvotes:       3,
	}
	doc := newBookDoc(book)
	doc.ID = primitive.NewObjectID()

	got := doc.toDomain()
	book.ID = doc.ID.Hex()
	assert.Equal(t, book, got)
}

func TestObjectID(t *testing.T) {
	_, ok := objectID("64b7f0c2a1d3e4f5a6b7c8d9")
	assert.True(t, ok)

	_, ok = objectID("not-hex")
	assert.False(t, ok)
}
