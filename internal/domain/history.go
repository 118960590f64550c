package domain

import "time"

// HistoryAction is the kind of interaction recorded in a user's history.
type HistoryAction string

// ActionViewed is recorded when an authenticated user fetches a single book.
const ActionViewed HistoryAction = "viewed"

// HistoryEntry records that a user interacted with a book.
// At most one entry exists per (user, book, action).
type HistoryEntry struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	BookID    int64         `json:"book_id"`
	Action    HistoryAction `json:"action"`
	CreatedAt time.Time     `json:"created_at"`
}
