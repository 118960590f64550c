package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recommendByGenre",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/recommendations/genre",
		Summary:     "Recommend by genre",
		Description: "Books of the given genre the caller has not viewed",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecommendByGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "recommendByAuthor",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/recommendations/author",
		Summary:     "Recommend by author",
		Description: "Books by the given author the caller has not viewed",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecommendByAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "recommendByHistory",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/recommendations/history",
		Summary:     "Recommend from history",
		Description: "Unviewed books sharing a genre or author with the caller's most viewed ones",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecommendByHistory)
}

// GenreRecommendationInput selects the genre to recommend from.
type GenreRecommendationInput struct {
	Genre string `query:"genre" required:"true" doc:"Genre name, case-insensitive"`
}

// AuthorRecommendationInput selects the author to recommend from.
type AuthorRecommendationInput struct {
	AuthorName string `query:"author_name" required:"true" doc:"Author name, case-insensitive"`
}

func (s *Server) handleRecommendByGenre(ctx context.Context, input *GenreRecommendationInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Recommendations.ByGenre(ctx, userID, input.Genre)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleRecommendByAuthor(ctx context.Context, input *AuthorRecommendationInput) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Recommendations.ByAuthor(ctx, userID, input.AuthorName)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleRecommendByHistory(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Recommendations.ByHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}
