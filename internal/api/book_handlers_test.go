package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")

	created := ts.createBook(t, token, "Dune", 1965, "Science", "Frank Herbert")
	assert.Positive(t, created.ID)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, 1965, created.PublishedYear)
	assert.Equal(t, "Science", created.Genre)
	assert.Equal(t, "Frank Herbert", created.Author)
	assert.Positive(t, created.AuthorID)

	path := "/api/v1/books/get_book/" + strconv.FormatInt(created.ID, 10)

	resp := ts.api.Get(path, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var fetched BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	resp = ts.api.Put("/api/v1/books/update_book/"+strconv.FormatInt(created.ID, 10), bearer(token), map[string]any{
		"published_year": 1966,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, 1966, updated.PublishedYear)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Frank Herbert", updated.Author)

	resp = ts.api.Delete("/api/v1/books/delete_book/"+strconv.FormatInt(created.ID, 10), bearer(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get(path, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Book not found", decodeError(t, resp.Body.Bytes()).Message)
}

func TestGetBook_RecordsView(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")
	book := ts.createBook(t, token, "Dune", 1965, "Science", "Frank Herbert")

	claims, err := ts.tokenService.Verify(token)
	require.NoError(t, err)

	path := "/api/v1/books/get_book/" + strconv.FormatInt(book.ID, 10)
	for range 2 {
		resp := ts.api.Get(path, bearer(token))
		require.Equal(t, http.StatusOK, resp.Code)
	}

	history, err := ts.store.ListHistory(t.Context(), claims.UserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, book.ID, history[0].BookID)
}

func TestGetBook_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/get_book/1")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateBook_Errors(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")
	ts.createBook(t, token, "Dune", 1965, "Science", "Frank Herbert")

	tests := []struct {
		name    string
		body    map[string]any
		code    string
		message string
	}{
		{
			name:    "duplicate title",
			body:    map[string]any{"title": "Dune", "published_year": 1965, "genre": "Science", "author": "Frank Herbert"},
			code:    "ALREADY_EXISTS",
			message: "Book with this title already exists",
		},
		{
			name: "unknown genre",
			body: map[string]any{"title": "Neuromancer", "published_year": 1984, "genre": "Cyberpunk", "author": "William Gibson"},
			code: "VALIDATION",
		},
		{
			name: "year before 1800",
			body: map[string]any{"title": "Beowulf", "published_year": 1000, "genre": "Fiction", "author": "Unknown"},
			code: "VALIDATION",
		},
		{
			name: "blank author",
			body: map[string]any{"title": "Anonymous", "published_year": 1900, "genre": "Fiction", "author": "   "},
			code: "VALIDATION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/books/create_book", bearer(token), tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			apiErr := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, tt.code, apiErr.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestCreateBook_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books/create_book", map[string]any{
		"title": "Dune", "published_year": 1965, "genre": "Science", "author": "Frank Herbert",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUpdateBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")

	resp := ts.api.Put("/api/v1/books/update_book/999", bearer(token), map[string]any{"title": "Ghost"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")

	resp := ts.api.Delete("/api/v1/books/delete_book/999", bearer(token))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
}

func TestListBooks_PublicWithPaging(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")
	ts.createBook(t, token, "Emma", 1815, "Fiction", "Jane Austen")
	ts.createBook(t, token, "Dune", 1965, "Science", "Frank Herbert")
	ts.createBook(t, token, "Persuasion", 1817, "Fiction", "Jane Austen")

	resp := ts.api.Get("/api/v1/books/get_all_books")
	require.Equal(t, http.StatusOK, resp.Code)
	var books []BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &books))
	require.Len(t, books, 3)
	assert.Equal(t, []string{"Dune", "Emma", "Persuasion"}, titles(books))

	resp = ts.api.Get("/api/v1/books/get_all_books?sort_by=published_year&skip=1&limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	books = nil
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &books))
	assert.Equal(t, []string{"Persuasion"}, titles(books))
	assert.Equal(t, "3", resp.Header().Get("X-Total-Count"))
}

func TestListBooks_EmptyCatalogIsEmptyArray(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/get_all_books")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
	assert.Equal(t, "0", resp.Header().Get("X-Total-Count"))
}

func TestListBooks_RejectsBadPaging(t *testing.T) {
	ts := setupTestServer(t)

	for _, query := range []string{"skip=-1", "limit=101", "limit=-5"} {
		t.Run(query, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/books/get_all_books?" + query)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func titles(books []BookResponse) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}
