package domain

import "strings"

// Genre is one of the fixed catalog genres.
type Genre string

// Catalog genres. The set is closed; the store enforces it with a CHECK constraint.
const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "Non-Fiction"
	GenreScience    Genre = "Science"
	GenreHistory    Genre = "History"
	GenreFantasy    Genre = "Fantasy"
	GenreBiography  Genre = "Biography"
	GenreRomance    Genre = "Romance"
	GenreThriller   Genre = "Thriller"
	GenreMystery    Genre = "Mystery"
	GenrePhilosophy Genre = "Philosophy"
)

// Genres returns every catalog genre in display order.
func Genres() []Genre {
	return []Genre{
		GenreFiction,
		GenreNonFiction,
		GenreScience,
		GenreHistory,
		GenreFantasy,
		GenreBiography,
		GenreRomance,
		GenreThriller,
		GenreMystery,
		GenrePhilosophy,
	}
}

// IsValid reports whether g is one of the catalog genres (exact match).
func (g Genre) IsValid() bool {
	for _, known := range Genres() {
		if g == known {
			return true
		}
	}
	return false
}

// ParseGenre resolves s to a catalog genre ignoring case and surrounding space.
// "non-fiction" and "NON-FICTION" both resolve to GenreNonFiction.
func ParseGenre(s string) (Genre, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Genres() {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (g Genre) String() string {
	return string(g)
}
