// Package domain contains the core business entities of the BookVault catalogue.
package domain

import "strings"

// Category classifies a book. The set is closed.
type Category string

// Book categories offered by the client.
const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "Non-Fiction"
	CategorySciFi      Category = "Sci-Fi"
	CategoryMystery    Category = "Mystery"
	CategoryFantasy    Category = "Fantasy"
	CategoryBiography  Category = "Biography"
)

// CategoryAll is the listing sentinel meaning "no category filter".
const CategoryAll = "All"

// CategoryUnknown labels legacy books stored without a category in summaries.
const CategoryUnknown = "Unknown"

var categories = []Category{
	CategoryFiction,
	CategoryNonFiction,
	CategorySciFi,
	CategoryMystery,
	CategoryFantasy,
	CategoryBiography,
}

// Categories returns every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ReadingStatus tracks where the owner is with a book.
type ReadingStatus string

// Reading statuses.
const (
	StatusRead       ReadingStatus = "Read"
	StatusReading    ReadingStatus = "Reading"
	StatusWantToRead ReadingStatus = "Want-to-Read"
)

// IsValid reports whether s is a known reading status.
func (s ReadingStatus) IsValid() bool {
	switch s {
	case StatusRead, StatusReading, StatusWantToRead:
		return true
	}
	return false
}

// Book is a catalogue entry owned by the user who created it.
type Book struct {
	ID            string        `json:"_id"`
	Title         string        `json:"book_title"`
	CoverPhoto    string        `json:"cover_photo"`
	TotalPages    int           `json:"total_page"`
	Author        string        `json:"book_author"`
	OwnerEmail    string        `json:"user_email"`
	OwnerName     string        `json:"user_name"`
	Category      Category      `json:"book_category"`
	ReadingStatus ReadingStatus `json:"reading_status"`
	Overview      string        `json:"book_overview"`
	Upvotes       int64         `json:"upvote"`
}

// BookContent is the owner-editable part of a book. Ownership and the upvote
// count are never part of it.
type BookContent struct {
	Title         string        `json:"book_title" validate:"notblank,max=300"`
	CoverPhoto    string        `json:"cover_photo" validate:"omitempty,http_url,max=2048"`
	TotalPages    int           `json:"total_page" validate:"gte=0,lte=100000"`
	Author        string        `json:"book_author" validate:"notblank,max=200"`
	Category      Category      `json:"book_category" validate:"book_category"`
	ReadingStatus ReadingStatus `json:"reading_status" validate:"reading_status"`
	Overview      string        `json:"book_overview" validate:"max=10000"`
}

// Content extracts the editable fields of b.
func (b *Book) Content() BookContent {
	return BookContent{
		Title:         b.Title,
		CoverPhoto:    b.CoverPhoto,
		TotalPages:    b.TotalPages,
		Author:        b.Author,
		Category:      b.Category,
		ReadingStatus: b.ReadingStatus,
		Overview:      b.Overview,
	}
}

// Apply overwrites the editable fields of b with c.
func (b *Book) Apply(c BookContent) {
	b.Title = c.Title
	b.CoverPhoto = c.CoverPhoto
	b.TotalPages = c.TotalPages
	b.Author = c.Author
	b.Category = c.Category
	b.ReadingStatus = c.ReadingStatus
	b.Overview = c.Overview
}

// IsOwnedBy reports whether email owns the book. Emails compare case-insensitively.
func (b *Book) IsOwnedBy(email string) bool {
	return SameEmail(b.OwnerEmail, email)
}

// SameEmail compares two addresses the way the identity provider does.
func SameEmail(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// CategoryCount is one row of the category summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
