package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookvault/bookvault-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
	}

	assert.Equal(t, "not found", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrReviewExists.WithCause(cause)

	assert.Contains(t, err.Error(), "review already exists")
	assert.Contains(t, err.Error(), "underlying error")
	assert.ErrorIs(t, err, cause)
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrBookNotFound.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrReviewExists.HTTPCode())
}

func TestSentinels_AreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("get book: %w", store.ErrBookNotFound)

	assert.ErrorIs(t, wrapped, store.ErrBookNotFound)
	assert.NotErrorIs(t, wrapped, store.ErrReviewNotFound)
}
