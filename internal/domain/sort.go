package domain

// SortOrder selects the ordering of a book listing.
type SortOrder string

// Listing orders. SortDefault leaves the store's natural order.
const (
	SortDefault    SortOrder = "default"
	SortTitleAsc   SortOrder = "title-asc"
	SortTitleDesc  SortOrder = "title-desc"
	SortUpvoteAsc  SortOrder = "upvote-asc"
	SortUpvoteDesc SortOrder = "upvote-desc"
)

// IsValid reports whether s is a known order. Empty means default.
func (s SortOrder) IsValid() bool {
	switch s {
	case "", SortDefault, SortTitleAsc, SortTitleDesc, SortUpvoteAsc, SortUpvoteDesc:
		return true
	}
	return false
}

// Normalize maps the empty order to SortDefault.
func (s SortOrder) Normalize() SortOrder {
	if s == "" {
		return SortDefault
	}
	return s
}

// BookFilter describes a catalogue listing: optional category, literal
// case-insensitive search over title and author, and ordering.
type BookFilter struct {
	Category Category // empty means every category
	Search   string
	Sort     SortOrder
}

// NewBookFilter builds a filter from raw listing parameters, treating the
// "All" sentinel as no category.
func NewBookFilter(category, search string, sort SortOrder) BookFilter {
	f := BookFilter{Search: search, Sort: sort.Normalize()}
	if category != "" && category != CategoryAll {
		f.Category = Category(category)
	}
	return f
}
