package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookvault/bookvault-server/internal/domain"
	"github.com/bookvault/bookvault-server/internal/store"
)

func TestMergeCategoryCounts(t *testing.T) {
	got := store.MergeCategoryCounts([]domain.CategoryCount{
		{Category: "Sci-Fi", Count: 2},
		{Category: "", Count: 1},
		{Category: "Unknown", Count: 2},
		{Category: "Fantasy", Count: 3},
		{Category: "Biography", Count: 0},
	})

	assert.Equal(t, []domain.CategoryCount{
		{Category: "Fantasy", Count: 3},
		{Category: "Sci-Fi", Count: 2},
		{Category: "Unknown", Count: 3},
	}, got)
}

func TestMergeCategoryCounts_Empty(t *testing.T) {
	got := store.MergeCategoryCounts(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFold(t *testing.T) {
	assert.Equal(t, store.Fold("the lord of the rings"), store.Fold("The LORD of the Rings"))
	assert.Equal(t, store.Fold("strasse"), store.Fold("STRASSE"))
	assert.Contains(t, store.Fold("Tolkien, J.R.R."), store.Fold("TOLK"))
}
