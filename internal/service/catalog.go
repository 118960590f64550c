package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/listenupapp/bookcatalog/internal/bookio"
	"github.com/listenupapp/bookcatalog/internal/domain"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
	"github.com/listenupapp/bookcatalog/internal/metrics"
	"github.com/listenupapp/bookcatalog/internal/normalize"
	"github.com/listenupapp/bookcatalog/internal/store"
	"github.com/listenupapp/bookcatalog/internal/validation"
)

// CatalogService handles book and author operations.
type CatalogService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest contains the fields of a new book.
type CreateBookRequest struct {
	Title         string `json:"title" validate:"notblank,max=250"`
	PublishedYear int    `json:"published_year" validate:"pubyear"`
	Genre         string `json:"genre" validate:"genre"`
	Author        string `json:"author" validate:"notblank,max=250"`
}

// fields returns the request as cleaned book fields.
func (r CreateBookRequest) fields() domain.BookFields {
	return domain.BookFields{
		Title:         normalize.Field(r.Title),
		PublishedYear: r.PublishedYear,
		Genre:         domain.Genre(r.Genre),
		AuthorName:    normalize.Text(r.Author),
	}
}

// UpdateBookRequest contains a partial book update. Nil fields keep their
// current value.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Genre         *string `json:"genre,omitempty"`
	Author        *string `json:"author,omitempty"`
}

// ImportResult summarises a file import.
type ImportResult struct {
	Imported []string `json:"imported"`
	Skipped  []string `json:"skipped"`
	Message  string   `json:"message"`
}

// ListBooks returns one page of the catalog.
func (s *CatalogService) ListBooks(ctx context.Context, params store.ListParams) ([]*domain.Book, error) {
	if params.Skip < 0 {
		return nil, domainerrors.Validation("skip must be greater than or equal to 0")
	}
	if params.Limit < 0 || params.Limit > store.MaxLimit {
		return nil, domainerrors.Validationf("limit must be between 1 and %d", store.MaxLimit)
	}
	params.Normalize()

	books, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	s.logger.Debug("Listed books",
		"count", len(books),
		"skip", params.Skip,
		"limit", params.Limit,
		"sort_by", params.SortBy,
	)
	return books, nil
}

// CountBooks returns the total number of books in the catalog.
func (s *CatalogService) CountBooks(ctx context.Context) (int, error) {
	n, err := s.store.CountBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// GetBook returns a book by id.
func (s *CatalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgBookNotFound)
	}
	return book, nil
}

// ViewBook returns a book and records the view in the user's history.
func (s *CatalogService) ViewBook(ctx context.Context, userID, id int64) (*domain.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.RecordView(ctx, userID, id); err != nil {
		return nil, err
	}
	return book, nil
}

// RecordView adds a "viewed" history entry. Repeat views are no-ops.
func (s *CatalogService) RecordView(ctx context.Context, userID, bookID int64) error {
	first, err := s.store.RecordView(ctx, userID, bookID)
	if err != nil {
		// The book may have been deleted between the read and the insert.
		return notFoundOr(err, msgBookNotFound)
	}
	metrics.RecordBookView(first)

	s.logger.Info("User viewed book", "user_id", userID, "book_id", bookID, "first_view", first)
	return nil
}

// GetBookByTitle returns the book with exactly this title.
func (s *CatalogService) GetBookByTitle(ctx context.Context, title string) (*domain.Book, error) {
	book, err := s.store.GetBookByTitle(ctx, normalize.Field(title))
	if err != nil {
		return nil, notFoundOr(err, msgBookNotFound)
	}
	return book, nil
}

// ensureTitleFree returns AlreadyExists when a book already uses title.
func (s *CatalogService) ensureTitleFree(ctx context.Context, title string) error {
	_, err := s.GetBookByTitle(ctx, title)
	switch {
	case err == nil:
		s.logger.Warn("Book title already exists", "title", title)
		return domainerrors.AlreadyExists(msgDuplicateTitle)
	case errors.Is(err, domainerrors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup title: %w", err)
	}
}

// CreateBook validates and inserts a book, creating its author if needed.
func (s *CatalogService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	fields := req.fields()

	if err := s.ensureTitleFree(ctx, fields.Title); err != nil {
		return nil, err
	}

	book, err := s.store.CreateBook(ctx, fields)
	if err != nil {
		return nil, s.writeError(err)
	}

	s.logger.Info("Created book",
		"book_id", book.ID,
		"title", book.Title,
		"author_id", book.AuthorID,
	)
	return book, nil
}

// UpdateBook merges req into the current book, re-validates the result and
// writes it back.
func (s *CatalogService) UpdateBook(ctx context.Context, id int64, req UpdateBookRequest) (*domain.Book, error) {
	current, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := CreateBookRequest{
		Title:         current.Title,
		PublishedYear: current.PublishedYear,
		Genre:         string(current.Genre),
		Author:        current.AuthorName(),
	}
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.PublishedYear != nil {
		merged.PublishedYear = *req.PublishedYear
	}
	if req.Genre != nil {
		merged.Genre = *req.Genre
	}
	if req.Author != nil {
		merged.Author = *req.Author
	}

	if err := s.validator.Validate(merged); err != nil {
		return nil, err
	}
	fields := merged.fields()

	if fields.Title != current.Title {
		if err := s.ensureTitleFree(ctx, fields.Title); err != nil {
			return nil, err
		}
	}

	book, err := s.store.UpdateBook(ctx, id, fields)
	if err != nil {
		return nil, s.writeError(err)
	}

	s.logger.Info("Updated book", "book_id", id)
	return book, nil
}

// DeleteBook removes a book and its history.
func (s *CatalogService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound(msgBookNotFound)
		}
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("Deleted book", "book_id", id)
	return nil
}

// GetAuthorByName finds an author case-insensitively.
func (s *CatalogService) GetAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	author, err := s.store.GetAuthorByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "Author not found")
	}
	return author, nil
}

// ImportBooks decodes a JSON or CSV file and creates every book that does
// not exist yet. Each record is written in its own transaction; records that
// fail to parse, fail validation or collide with an existing title are
// reported as skipped.
func (s *CatalogService) ImportBooks(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	records, err := bookio.Decode(filename, r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Imported: make([]string, 0, len(records)),
		Skipped:  make([]string, 0),
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label := strings.TrimSpace(rec.Title)
		if label == "" {
			label = fmt.Sprintf("<line %d>", rec.Line)
		}

		if rec.ParseErr != nil {
			s.logger.Warn("Skipping unreadable import row", "line", rec.Line, "error", rec.ParseErr)
			result.Skipped = append(result.Skipped, label)
			continue
		}

		f := rec.Fields()
		_, err := s.CreateBook(ctx, CreateBookRequest{
			Title:         f.Title,
			PublishedYear: f.PublishedYear,
			Genre:         string(f.Genre),
			Author:        f.AuthorName,
		})
		switch {
		case err == nil:
			result.Imported = append(result.Imported, label)
		case errors.Is(err, domainerrors.ErrAlreadyExists), errors.Is(err, domainerrors.ErrValidation):
			s.logger.Debug("Skipping import row", "line", rec.Line, "title", label, "error", err)
			result.Skipped = append(result.Skipped, label)
		default:
			return nil, fmt.Errorf("import %q: %w", label, err)
		}
	}

	result.Message = fmt.Sprintf("Imported %d books, skipped %d (already exist or invalid)",
		len(result.Imported), len(result.Skipped))
	metrics.RecordImport(len(result.Imported), len(result.Skipped))

	s.logger.Info("Import summary",
		"file", filename,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// ExportBooks writes one page of the catalog to w in the given format.
func (s *CatalogService) ExportBooks(ctx context.Context, w io.Writer, format bookio.Format, params store.ListParams) (int, error) {
	books, err := s.ListBooks(ctx, params)
	if err != nil {
		return 0, err
	}

	if err := bookio.Encode(w, format, books); err != nil {
		return 0, fmt.Errorf("encode %s export: %w", format, err)
	}

	metrics.RecordExport(string(format), len(books))
	return len(books), nil
}

// writeError maps store write failures onto domain errors.
func (s *CatalogService) writeError(err error) error {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(msgDuplicateTitle)
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(msgBookNotFound)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(msgAuthorRequired)
	default:
		return fmt.Errorf("write book: %w", err)
	}
}
