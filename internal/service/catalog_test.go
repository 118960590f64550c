package service

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookcatalog/internal/bookio"
	"github.com/listenupapp/bookcatalog/internal/domain"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
	"github.com/listenupapp/bookcatalog/internal/store"
)

func ptr[T any](v T) *T { return &v }

func dune() CreateBookRequest {
	return CreateBookRequest{Title: "Dune", PublishedYear: 1965, Genre: "Science", Author: "Frank Herbert"}
}

func TestCatalogService_CreateAndGet(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	created, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	got, err := svc.catalog.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, 1965, got.PublishedYear)
	assert.Equal(t, domain.GenreScience, got.Genre)
	assert.Equal(t, "Frank Herbert", got.AuthorName())

	byTitle, err := svc.catalog.GetBookByTitle(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, got, byTitle)
}

func TestCatalogService_CreateTrimsInput(t *testing.T) {
	svc := setupServices(t)

	book, err := svc.catalog.CreateBook(context.Background(), CreateBookRequest{
		Title: "  Dune  ", PublishedYear: 1965, Genre: "Science", Author: " Frank   Herbert ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.AuthorName())
}

func TestCatalogService_CreateDuplicateTitle(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	_, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	_, err = svc.catalog.CreateBook(ctx, dune())
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, "Book with this title already exists", err.Error())
}

func TestCatalogService_CreateValidation(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   CreateBookRequest
		field string
	}{
		{"blank title", CreateBookRequest{Title: " ", PublishedYear: 1965, Genre: "Science", Author: "A"}, "title"},
		{"long title", CreateBookRequest{Title: strings.Repeat("x", 251), PublishedYear: 1965, Genre: "Science", Author: "A"}, "title"},
		{"year too early", CreateBookRequest{Title: "T", PublishedYear: 1799, Genre: "Science", Author: "A"}, "published_year"},
		{"year in future", CreateBookRequest{Title: "T", PublishedYear: 2027, Genre: "Science", Author: "A"}, "published_year"},
		{"unknown genre", CreateBookRequest{Title: "T", PublishedYear: 1965, Genre: "Cookbook", Author: "A"}, "genre"},
		{"genre wrong case", CreateBookRequest{Title: "T", PublishedYear: 1965, Genre: "science", Author: "A"}, "genre"},
		{"blank author", CreateBookRequest{Title: "T", PublishedYear: 1965, Genre: "Science", Author: ""}, "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.catalog.CreateBook(ctx, tt.req)
			require.ErrorIs(t, err, domainerrors.ErrValidation)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
		})
	}
}

func TestCatalogService_GetBookNotFound(t *testing.T) {
	svc := setupServices(t)

	_, err := svc.catalog.GetBook(context.Background(), 404)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Equal(t, "Book not found", err.Error())
}

func TestCatalogService_ViewBookRecordsHistoryOnce(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user, err := svc.store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	book, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	for range 3 {
		got, err := svc.catalog.ViewBook(ctx, user.ID, book.ID)
		require.NoError(t, err)
		assert.Equal(t, book.ID, got.ID)
	}

	history, err := svc.store.ListHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionViewed, history[0].Action)

	_, err = svc.catalog.ViewBook(ctx, user.ID, 999)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_UpdateMergesFields(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	book, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	updated, err := svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{PublishedYear: ptr(1966)})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, 1966, updated.PublishedYear)
	assert.Equal(t, domain.GenreScience, updated.Genre)
	assert.Equal(t, book.AuthorID, updated.AuthorID)

	updated, err = svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{
		Title:  ptr("Dune (Deluxe)"),
		Author: ptr("frank herbert"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune (Deluxe)", updated.Title)
	assert.Equal(t, book.AuthorID, updated.AuthorID, "author resolved case-insensitively")
	assert.Equal(t, "Frank Herbert", updated.AuthorName())
}

func TestCatalogService_UpdateErrors(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	book, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)
	_, err = svc.catalog.CreateBook(ctx, CreateBookRequest{Title: "Emma", PublishedYear: 1815, Genre: "Romance", Author: "Jane Austen"})
	require.NoError(t, err)

	_, err = svc.catalog.UpdateBook(ctx, 999, UpdateBookRequest{Title: ptr("X")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Title: ptr("Emma")})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Genre: ptr("Poetry")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Author: ptr("   ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Keeping the same title is not a collision.
	_, err = svc.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Title: ptr("Dune")})
	assert.NoError(t, err)
}

func TestCatalogService_Delete(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user, err := svc.store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	book, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)
	_, err = svc.catalog.ViewBook(ctx, user.ID, book.ID)
	require.NoError(t, err)

	require.NoError(t, svc.catalog.DeleteBook(ctx, book.ID))

	_, err = svc.catalog.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	history, err := svc.store.ListHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	err = svc.catalog.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_ListBooks(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	for _, req := range []CreateBookRequest{
		{Title: "Neuromancer", PublishedYear: 1984, Genre: "Science", Author: "William Gibson"},
		{Title: "Brave New World", PublishedYear: 1932, Genre: "Fiction", Author: "Aldous Huxley"},
		dune(),
	} {
		_, err := svc.catalog.CreateBook(ctx, req)
		require.NoError(t, err)
	}

	books, err := svc.catalog.ListBooks(ctx, store.ListParams{Limit: 2, SortBy: "published_year"})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Brave New World", books[0].Title)
	assert.Equal(t, "Dune", books[1].Title)

	_, err = svc.catalog.ListBooks(ctx, store.ListParams{Skip: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.catalog.ListBooks(ctx, store.ListParams{Limit: 101})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalogService_Authors(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	created, err := svc.catalog.CreateBook(ctx, CreateBookRequest{
		Title: "Germinal", PublishedYear: 1885, Genre: "Fiction", Author: "Émile Zola",
	})
	require.NoError(t, err)

	found, err := svc.catalog.GetAuthorByName(ctx, "ÉMILE ZOLA")
	require.NoError(t, err)
	assert.Equal(t, created.AuthorID, found.ID)

	_, err = svc.catalog.GetAuthorByName(ctx, "Nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_CountBooks(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	n, err := svc.catalog.CountBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	n, err = svc.catalog.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCatalogService_ImportBooks(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	_, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	csvFile := "title,published_year,genre,author\n" +
		"Dune,1965,Science,Frank Herbert\n" +
		"Emma,1815,Romance,Jane Austen\n" +
		"Persuasion,1817,Romance,jane austen\n" +
		"Future Book,2999,Fiction,Someone\n" +
		"Broken,abc,Fiction,Someone\n"

	result, err := svc.catalog.ImportBooks(ctx, "books.csv", strings.NewReader(csvFile))
	require.NoError(t, err)

	assert.Equal(t, []string{"Emma", "Persuasion"}, result.Imported)
	assert.Equal(t, []string{"Dune", "Future Book", "Broken"}, result.Skipped)
	assert.Equal(t, "Imported 2 books, skipped 3 (already exist or invalid)", result.Message)

	emma, err := svc.catalog.GetBookByTitle(ctx, "Emma")
	require.NoError(t, err)
	persuasion, err := svc.catalog.GetBookByTitle(ctx, "Persuasion")
	require.NoError(t, err)
	assert.Equal(t, emma.AuthorID, persuasion.AuthorID)
}

func TestCatalogService_ImportBooksJSONDuplicatesWithinFile(t *testing.T) {
	svc := setupServices(t)

	jsonFile := `[
		{"title": "Cosmos", "published_year": 1980, "genre": "Science", "author": "Carl Sagan"},
		{"title": "Cosmos", "published_year": 1980, "genre": "Science", "author": "Carl Sagan"}
	]`

	result, err := svc.catalog.ImportBooks(context.Background(), "books.json", strings.NewReader(jsonFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cosmos"}, result.Imported)
	assert.Equal(t, []string{"Cosmos"}, result.Skipped)
}

func TestCatalogService_ImportBooksUnsupported(t *testing.T) {
	svc := setupServices(t)

	_, err := svc.catalog.ImportBooks(context.Background(), "books.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, "Only JSON and CSV files are supported", err.Error())
}

func TestCatalogService_ExportBooks(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	book, err := svc.catalog.CreateBook(ctx, dune())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.catalog.ExportBooks(ctx, &buf, bookio.FormatCSV, store.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,title,published_year,genre,author,author_id", lines[0])
	assert.Equal(t, "1,Dune,1965,Science,Frank Herbert,"+strconv.FormatInt(book.AuthorID, 10), lines[1])
}
