// Package store defines the persistence interface for the catalog server.
package store

import (
	"context"

	"github.com/listenupapp/bookcatalog/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Authors
	GetAuthorByName(ctx context.Context, name string) (*domain.Author, error)

	// Books
	CreateBook(ctx context.Context, fields domain.BookFields) (*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	GetBookByTitle(ctx context.Context, title string) (*domain.Book, error)
	ListBooks(ctx context.Context, params ListParams) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, id int64, fields domain.BookFields) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	CountBooks(ctx context.Context) (int, error)

	// History
	RecordView(ctx context.Context, userID, bookID int64) (bool, error)
	ListHistory(ctx context.Context, userID int64) ([]*domain.HistoryEntry, error)

	// Recommendations. Every query excludes books the user has viewed.
	BooksByGenre(ctx context.Context, userID int64, genre domain.Genre, limit int) ([]*domain.Book, error)
	BooksByAuthor(ctx context.Context, userID, authorID int64, limit int) ([]*domain.Book, error)
	BooksByGenresOrAuthors(ctx context.Context, userID int64, genres []domain.Genre, authorIDs []int64, limit int) ([]*domain.Book, error)
	TopGenres(ctx context.Context, userID int64, n int) ([]domain.Genre, error)
	TopAuthors(ctx context.Context, userID int64, n int) ([]int64, error)
}
