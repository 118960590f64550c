package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/bookcatalog/internal/domain"
	"github.com/listenupapp/bookcatalog/internal/normalize"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// GetAuthorByName looks an author up case-insensitively through name_key.
// Returns store.ErrNotFound if no author matches.
func (s *Store) GetAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	a, err := authorByKey(ctx, s.db, normalize.NameKey(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// getOrCreateAuthor resolves name to an author row inside q. Names that fold
// to the same key ("FRANK HERBERT", "frank herbert") share one row and keep
// the first spelling stored. The insert is a no-op when the key already
// exists, so concurrent writers converge on one row.
func getOrCreateAuthor(ctx context.Context, q queryer, name string) (*domain.Author, error) {
	name = normalize.Text(name)
	if name == "" {
		return nil, fmt.Errorf("author name is required: %w", store.ErrInvalidInput)
	}
	key := normalize.NameKey(name)

	if _, err := q.ExecContext(ctx,
		`INSERT INTO authors (name, name_key) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		name, key); err != nil {
		return nil, fmt.Errorf("insert author: %w", err)
	}

	a, err := authorByKey(ctx, q, key)
	if errors.Is(err, sql.ErrNoRows) {
		// name is UNIQUE too; a different key can only collide on an exact name.
		return authorByExactName(ctx, q, name)
	}
	if err != nil {
		return nil, fmt.Errorf("select author: %w", err)
	}
	return a, nil
}

func authorByKey(ctx context.Context, q queryer, key string) (*domain.Author, error) {
	var a domain.Author
	if err := q.QueryRowContext(ctx,
		`SELECT id, name FROM authors WHERE name_key = ?`, key).Scan(&a.ID, &a.Name); err != nil {
		return nil, err
	}
	return &a, nil
}

func authorByExactName(ctx context.Context, q queryer, name string) (*domain.Author, error) {
	var a domain.Author
	err := q.QueryRowContext(ctx,
		`SELECT id, name FROM authors WHERE name = ?`, name).Scan(&a.ID, &a.Name)
	if err != nil {
		return nil, fmt.Errorf("select author by name: %w", err)
	}
	return &a, nil
}
