package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/bookcatalog/internal/domain"
)

// notViewed restricts a book query to books the bound user has not viewed.
const notViewed = `b.id NOT IN (
		SELECT book_id FROM user_history WHERE user_id = ? AND action = 'viewed'
	)`

// BooksByGenre returns up to limit unseen books of genre, ordered by id.
func (s *Store) BooksByGenre(ctx context.Context, userID int64, genre domain.Genre, limit int) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		bookSelect+` WHERE b.genre = ? AND `+notViewed+` ORDER BY b.id LIMIT ?`,
		string(genre), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("books by genre: %w", err)
	}
	return scanBooks(rows)
}

// BooksByAuthor returns up to limit unseen books by authorID, ordered by id.
func (s *Store) BooksByAuthor(ctx context.Context, userID, authorID int64, limit int) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		bookSelect+` WHERE b.author_id = ? AND `+notViewed+` ORDER BY b.id LIMIT ?`,
		authorID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("books by author: %w", err)
	}
	return scanBooks(rows)
}

// BooksByGenresOrAuthors returns up to limit unseen books whose genre is in
// genres or whose author is in authorIDs, ordered by id.
func (s *Store) BooksByGenresOrAuthors(ctx context.Context, userID int64, genres []domain.Genre, authorIDs []int64, limit int) ([]*domain.Book, error) {
	if len(genres) == 0 && len(authorIDs) == 0 {
		return []*domain.Book{}, nil
	}

	args := make([]any, 0, len(genres)+len(authorIDs)+2)
	for _, g := range genres {
		args = append(args, string(g))
	}
	for _, id := range authorIDs {
		args = append(args, id)
	}
	args = append(args, userID, limit)

	// An empty IN () matches nothing in SQLite.
	query := bookSelect + `
		WHERE (b.genre IN (` + placeholders(len(genres)) + `)
			OR b.author_id IN (` + placeholders(len(authorIDs)) + `))
		AND ` + notViewed + `
		ORDER BY b.id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("books by genres or authors: %w", err)
	}
	return scanBooks(rows)
}

// TopGenres returns the user's n most viewed genres. Ties go to the genre
// viewed first.
func (s *Store) TopGenres(ctx context.Context, userID int64, n int) ([]domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.genre
		FROM user_history h
		JOIN books b ON b.id = h.book_id
		WHERE h.user_id = ? AND h.action = 'viewed'
		GROUP BY b.genre
		ORDER BY COUNT(*) DESC, MIN(h.id)
		LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("top genres: %w", err)
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0, n)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, domain.Genre(g))
	}
	return genres, rows.Err()
}

// TopAuthors returns the ids of the user's n most viewed authors. Ties go to
// the author viewed first.
func (s *Store) TopAuthors(ctx context.Context, userID int64, n int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.author_id
		FROM user_history h
		JOIN books b ON b.id = h.book_id
		WHERE h.user_id = ? AND h.action = 'viewed'
		GROUP BY b.author_id
		ORDER BY COUNT(*) DESC, MIN(h.id)
		LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("top authors: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
