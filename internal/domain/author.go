package domain

// Author is a book author. Authors are created on first reference by a book
// write and are never deleted.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
