package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookvault/bookvault-server/internal/errors"
	"github.com/bookvault/bookvault-server/internal/validation"
)

type bookRequest struct {
	Title         string `json:"book_title" validate:"notblank,max=200"`
	CoverPhoto    string `json:"cover_photo" validate:"required,http_url"`
	TotalPages    int    `json:"total_page" validate:"gte=1"`
	Category      string `json:"book_category" validate:"book_category"`
	ReadingStatus string `json:"reading_status" validate:"reading_status"`
	Email         string `json:"user_email,omitempty" validate:"omitempty,email"`
}

func validBook() bookRequest {
	return bookRequest{
		Title:         "Dune",
		CoverPhoto:    "https://covers.example.com/dune.jpg",
		TotalPages:    412,
		Category:      "Sci-Fi",
		ReadingStatus: "Want-to-Read",
	}
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validBook()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(*bookRequest)
		wantField string
		wantMsg   string
	}{
		{"blank title", func(r *bookRequest) { r.Title = "   " }, "book_title", "is required"},
		{"long title", func(r *bookRequest) { r.Title = strings.Repeat("x", 201) }, "book_title", "must not exceed 200 characters"},
		{"bad cover", func(r *bookRequest) { r.CoverPhoto = "not a url" }, "cover_photo", "must be a valid URL"},
		{"zero pages", func(r *bookRequest) { r.TotalPages = 0 }, "total_page", "must be greater than or equal to 1"},
		{"unknown category", func(r *bookRequest) { r.Category = "Poetry" }, "book_category", "must be one of: Fiction"},
		{"unknown status", func(r *bookRequest) { r.ReadingStatus = "Done" }, "reading_status", "must be one of: Read"},
		{"bad email", func(r *bookRequest) { r.Email = "nope" }, "user_email", "must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBook()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details[tt.wantField], tt.wantMsg)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := validBook()
	req.Title = ""

	err := v.Validate(req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)

	// Should use JSON tag name "book_title", not struct field name "Title"
	assert.Contains(t, details, "book_title")
	assert.NotContains(t, details, "Title")
}
