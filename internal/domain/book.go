package domain

import "time"

// Field limits for catalog records.
const (
	MinPublishedYear = 1800
	MaxTitleLength   = 250
	MaxAuthorLength  = 250
)

// Book is a catalog entry. Author is populated on reads from the joined authors row.
type Book struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	PublishedYear int     `json:"published_year"`
	Genre         Genre   `json:"genre"`
	AuthorID      int64   `json:"author_id"`
	Author        *Author `json:"author,omitempty"`
}

// AuthorName returns the joined author name, or "" when the author was not loaded.
func (b *Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.Name
}

// BookFields holds the writable fields of a book. The author is referenced by
// name and resolved (or created) when the book is written.
type BookFields struct {
	Title         string
	PublishedYear int
	Genre         Genre
	AuthorName    string
}

// ValidPublishedYear reports whether year lies in [MinPublishedYear, now.Year()].
func ValidPublishedYear(year int, now time.Time) bool {
	return year >= MinPublishedYear && year <= now.Year()
}
