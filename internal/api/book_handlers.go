package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookcatalog/internal/domain"
	"github.com/listenupapp/bookcatalog/internal/service"
	"github.com/listenupapp/bookcatalog/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/get_all_books",
		Summary:     "List books",
		Description: "Returns one page of the catalog sorted by title, published_year or author_id",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/get_book/{id}",
		Summary:     "Get book",
		Description: "Returns a book and records it in the caller's view history",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/books/create_book",
		Summary:       "Create book",
		Description:   "Creates a book, creating its author on first reference",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/books/update_book/{id}",
		Summary:     "Update book",
		Description: "Updates the given fields of a book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/books/delete_book/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book together with its view history",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse is the public representation of a book.
type BookResponse struct {
	ID            int64  `json:"id" doc:"Book ID"`
	Title         string `json:"title" doc:"Unique title"`
	PublishedYear int    `json:"published_year" doc:"Year of publication"`
	Genre         string `json:"genre" doc:"Catalog genre"`
	Author        string `json:"author" doc:"Author name"`
	AuthorID      int64  `json:"author_id" doc:"Author ID"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		PublishedYear: b.PublishedYear,
		Genre:         string(b.Genre),
		Author:        b.AuthorName(),
		AuthorID:      b.AuthorID,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

// PageParams are the shared list query parameters.
type PageParams struct {
	Skip   int    `query:"skip" default:"0" doc:"Number of books to skip"`
	Limit  int    `query:"limit" default:"10" doc:"Page size (1-100)"`
	SortBy string `query:"sort_by" default:"title" doc:"Sort key: title, published_year or author_id"`
}

func (p PageParams) listParams() store.ListParams {
	return store.ListParams{Skip: p.Skip, Limit: p.Limit, SortBy: p.SortBy}
}

// ListBooksInput contains list query parameters.
type ListBooksInput struct {
	PageParams
}

// BookListOutput wraps a list of books for Huma.
type BookListOutput struct {
	TotalCount int `header:"X-Total-Count" doc:"Number of books in the catalog"`
	Body       []BookResponse
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title         string `json:"title" maxLength:"250" doc:"Unique title"`
	PublishedYear int    `json:"published_year" doc:"Year of publication, 1800 to the current year"`
	Genre         string `json:"genre" doc:"One of the catalog genres"`
	Author        string `json:"author" maxLength:"250" doc:"Author name"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is the request body for updating a book. Omitted fields
// keep their current value.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" maxLength:"250" doc:"New title"`
	PublishedYear *int    `json:"published_year,omitempty" doc:"New year of publication"`
	Genre         *string `json:"genre,omitempty" doc:"New genre"`
	Author        *string `json:"author,omitempty" maxLength:"250" doc:"New author name"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   int64 `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.ListBooks(ctx, input.listParams())
	if err != nil {
		return nil, err
	}
	total, err := s.services.Catalog.CountBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{TotalCount: total, Body: toBookResponses(books)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.ViewBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, service.CreateBookRequest{
		Title:         input.Body.Title,
		PublishedYear: input.Body.PublishedYear,
		Genre:         input.Body.Genre,
		Author:        input.Body.Author,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, input.ID, service.UpdateBookRequest{
		Title:         input.Body.Title,
		PublishedYear: input.Body.PublishedYear,
		Genre:         input.Body.Genre,
		Author:        input.Body.Author,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
