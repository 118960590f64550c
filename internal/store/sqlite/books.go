package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/bookcatalog/internal/domain"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// bookSelect selects books joined with their author.
// Must match the scan order in scanBook.
const bookSelect = `SELECT b.id, b.title, b.published_year, b.genre, b.author_id, a.name
	FROM books b
	JOIN authors a ON a.id = b.author_id`

// sortColumns maps accepted sort keys to columns. Keys are whitelisted by
// store.ListParams.Normalize before they reach SQL.
var sortColumns = map[string]string{
	store.SortByTitle:         "b.title",
	store.SortByPublishedYear: "b.published_year",
	store.SortByAuthorID:      "b.author_id",
}

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b          domain.Book
		genre      string
		authorName string
	)
	if err := scanner.Scan(&b.ID, &b.Title, &b.PublishedYear, &genre, &b.AuthorID, &authorName); err != nil {
		return nil, err
	}
	b.Genre = domain.Genre(genre)
	b.Author = &domain.Author{ID: b.AuthorID, Name: authorName}
	return &b, nil
}

// scanBooks drains rows into a non-nil slice.
func scanBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func getBook(ctx context.Context, q queryer, id int64) (*domain.Book, error) {
	b, err := scanBook(q.QueryRowContext(ctx, bookSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBook resolves the author and inserts the book in one transaction.
// Returns store.ErrAlreadyExists if the title is taken.
func (s *Store) CreateBook(ctx context.Context, fields domain.BookFields) (*domain.Book, error) {
	var book *domain.Book
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		author, err := getOrCreateAuthor(ctx, tx, fields.AuthorName)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO books (title, published_year, genre, author_id) VALUES (?, ?, ?, ?)`,
			fields.Title, fields.PublishedYear, string(fields.Genre), author.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists
			}
			return fmt.Errorf("insert book: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("book id: %w", err)
		}

		book = &domain.Book{
			ID:            id,
			Title:         fields.Title,
			PublishedYear: fields.PublishedYear,
			Genre:         fields.Genre,
			AuthorID:      author.ID,
			Author:        author,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return getBook(ctx, s.db, id)
}

// GetBookByTitle retrieves a book by exact title.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBookByTitle(ctx context.Context, title string) (*domain.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, bookSelect+` WHERE b.title = ?`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBooks returns one page of books ordered by the requested key, then id.
func (s *Store) ListBooks(ctx context.Context, params store.ListParams) ([]*domain.Book, error) {
	params.Normalize()
	column := sortColumns[params.SortBy]

	rows, err := s.db.QueryContext(ctx,
		bookSelect+` ORDER BY `+column+`, b.id LIMIT ? OFFSET ?`,
		params.Limit, params.Skip)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return scanBooks(rows)
}

// CountBooks returns the number of books in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// UpdateBook overwrites every writable field of a book in one transaction.
// Returns store.ErrNotFound if the book does not exist and
// store.ErrAlreadyExists if the new title belongs to another book.
func (s *Store) UpdateBook(ctx context.Context, id int64, fields domain.BookFields) (*domain.Book, error) {
	var book *domain.Book
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getBook(ctx, tx, id); err != nil {
			return err
		}

		author, err := getOrCreateAuthor(ctx, tx, fields.AuthorName)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE books SET
				title = ?,
				published_year = ?,
				genre = ?,
				author_id = ?
			WHERE id = ?`,
			fields.Title, fields.PublishedYear, string(fields.Genre), author.ID, id)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists
			}
			return fmt.Errorf("update book: %w", err)
		}

		book = &domain.Book{
			ID:            id,
			Title:         fields.Title,
			PublishedYear: fields.PublishedYear,
			Genre:         fields.Genre,
			AuthorID:      author.ID,
			Author:        author,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book and its history rows in one transaction.
// Returns store.ErrNotFound if no book was deleted.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_history WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("delete history: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
