package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/bookcatalog/internal/domain"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// RecordView records that userID viewed bookID. It reports whether a new
// row was written; repeat views hit the unique constraint and are ignored.
func (s *Store) RecordView(ctx context.Context, userID, bookID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_history (user_id, book_id, action, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, book_id, action) DO NOTHING`,
		userID, bookID, string(domain.ActionViewed), formatTime(s.now()))
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, store.ErrNotFound
		}
		return false, fmt.Errorf("record view: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListHistory returns a user's history, oldest first.
func (s *Store) ListHistory(ctx context.Context, userID int64) ([]*domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, book_id, action, created_at
		FROM user_history
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.HistoryEntry, 0)
	for rows.Next() {
		var (
			e         domain.HistoryEntry
			action    string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookID, &action, &createdAt); err != nil {
			return nil, err
		}
		e.Action = domain.HistoryAction(action)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
