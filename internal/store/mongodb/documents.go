package mongodb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bookvault/bookvault-server/internal/domain"
)

// bookDoc is the BooksInfo document shape.
type bookDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"book_title"`
	CoverPhoto    string             `bson:"cover_photo"`
	TotalPages    pageCount          `bson:"total_page"`
	Author        string             `bson:"book_author"`
	OwnerEmail    string             `bson:"user_email"`
	OwnerName     string             `bson:"user_name"`
	Category      string             `bson:"book_category"`
	ReadingStatus string             `bson:"reading_status"`
	Overview      string             `bson:"book_overview"`
	Upvotes       int64              `bson:"upvote"`
}

func newBookDoc(b *domain.Book) bookDoc {
	return bookDoc{
		Title:         b.Title,
		CoverPhoto:    b.CoverPhoto,
		TotalPages:    pageCount(b.TotalPages),
		Author:        b.Author,
		OwnerEmail:    b.OwnerEmail,
		OwnerName:     b.OwnerName,
		Category:      string(b.Category),
		ReadingStatus: string(b.ReadingStatus),
		Overview:      b.Overview,
		Upvotes:       b.Upvotes,
	}
}

func (d *bookDoc) toDomain() *domain.Book {
	return &domain.Book{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		CoverPhoto:    d.CoverPhoto,
		TotalPages:    int(d.TotalPages),
		Author:        d.Author,
		OwnerEmail:    d.OwnerEmail,
		OwnerName:     d.OwnerName,
		Category:      domain.Category(d.Category),
		ReadingStatus: domain.ReadingStatus(d.ReadingStatus),
		Overview:      d.Overview,
		Upvotes:       d.Upvotes,
	}
}

// pageCount decodes total_page from any of the shapes older clients wrote:
// numbers of any width, numeric strings, or null.
type pageCount int

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (p *pageCount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Int32:
		*p = pageCount(v.Int32())
	case bsontype.Int64:
		*p = pageCount(v.Int64())
	case bsontype.Double:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			*p = 0
			return nil
		}
		*p = pageCount(int(f))
	case bsontype.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.StringValue()))
		if err != nil {
			*p = 0
			return nil
		}
		*p = pageCount(n)
	case bsontype.Null, bsontype.Undefined:
		*p = 0
	default:
		return fmt.Errorf("cannot decode BSON %s into total_page", t)
	}
	return nil
}

// reviewDoc is the reviews document shape.
type reviewDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BookID        string             `bson:"book_id"`
	ReviewerEmail string             `bson:"user_email"`
	Text          string             `bson:"review_text"`
	CreatedAt     time.Time          `bson:"created_at"`
	EditedAt      *time.Time         `bson:"edited_at,omitempty"`
}

func newReviewDoc(r *domain.Review) reviewDoc {
	return reviewDoc{
		BookID:        r.BookID,
		ReviewerEmail: r.ReviewerEmail,
		Text:          r.Text,
		CreatedAt:     r.CreatedAt,
		EditedAt:      r.EditedAt,
	}
}

func (d *reviewDoc) toDomain() *domain.Review {
	r := &domain.Review{
		ID:            d.ID.Hex(),
		BookID:        d.BookID,
		ReviewerEmail: d.ReviewerEmail,
		Text:          d.Text,
		CreatedAt:     d.CreatedAt.UTC(),
	}
	if d.EditedAt != nil {
		t := d.EditedAt.UTC()
		r.EditedAt = &t
	}
	return r
}
