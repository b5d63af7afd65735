package domain

import "time"

// Review is a reader's opinion of a book. At most one per (book, reviewer).
type Review struct {
	CreatedAt     time.Time  `json:"created_at"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	ID            string     `json:"_id"`
	BookID        string     `json:"book_id"`
	ReviewerEmail string     `json:"user_email"`
	Text          string     `json:"review_text"`
}

// IsAuthoredBy reports whether email wrote the review.
func (r *Review) IsAuthoredBy(email string) bool {
	return SameEmail(r.ReviewerEmail, email)
}

// Edit replaces the text and stamps the edit time.
func (r *Review) Edit(text string, at time.Time) {
	r.Text = text
	at = at.UTC()
	r.EditedAt = &at
}
