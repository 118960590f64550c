package store

// Listing bounds for book pages.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sort keys accepted by ListBooks.
const (
	SortByTitle         = "title"
	SortByPublishedYear = "published_year"
	SortByAuthorID      = "author_id"
)

// ListParams selects a page of books.
type ListParams struct {
	Skip   int    // Rows to skip (>= 0)
	Limit  int    // Page size (1..MaxLimit, defaults to DefaultLimit)
	SortBy string // One of the SortBy* keys; anything else sorts by title
}

// Normalize clamps the page bounds and replaces unknown sort keys.
func (p *ListParams) Normalize() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if !ValidSortKey(p.SortBy) {
		p.SortBy = SortByTitle
	}
}

// ValidSortKey reports whether key is an accepted sort key.
func ValidSortKey(key string) bool {
	switch key {
	case SortByTitle, SortByPublishedYear, SortByAuthorID:
		return true
	}
	return false
}
