package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookcatalog/internal/domain"
	"github.com/listenupapp/bookcatalog/internal/metrics"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// RecommendationLimits bounds the size of each recommendation list.
type RecommendationLimits struct {
	Genre      int // books per genre request
	Author     int // books per author request
	History    int // books per history request
	TopGenres  int // genres taken from history
	TopAuthors int // authors taken from history
}

// DefaultRecommendationLimits returns the stock list sizes.
func DefaultRecommendationLimits() RecommendationLimits {
	return RecommendationLimits{
		Genre:      10,
		Author:     10,
		History:    15,
		TopGenres:  3,
		TopAuthors: 3,
	}
}

// RecommendationService suggests books a user has not viewed yet.
type RecommendationService struct {
	store  store.Store
	limits RecommendationLimits
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(store store.Store, limits RecommendationLimits, logger *slog.Logger) *RecommendationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationService{
		store:  store,
		limits: limits,
		logger: logger,
	}
}

// ByGenre returns unseen books in genre. The genre is matched
// case-insensitively; an unknown genre yields an empty list.
func (s *RecommendationService) ByGenre(ctx context.Context, userID int64, genre string) ([]*domain.Book, error) {
	g, ok := domain.ParseGenre(genre)
	if !ok {
		s.logger.Debug("Unknown genre requested", "user_id", userID, "genre", genre)
		metrics.RecordRecommendation("genre", 0)
		return []*domain.Book{}, nil
	}

	books, err := s.store.BooksByGenre(ctx, userID, g, s.limits.Genre)
	if err != nil {
		return nil, fmt.Errorf("recommend by genre: %w", err)
	}

	metrics.RecordRecommendation("genre", len(books))
	s.logger.Info("Genre recommendations served",
		"user_id", userID,
		"genre", g,
		"count", len(books),
	)
	return books, nil
}

// ByAuthor returns unseen books by the named author. An unknown author
// yields an empty list.
func (s *RecommendationService) ByAuthor(ctx context.Context, userID int64, authorName string) ([]*domain.Book, error) {
	author, err := s.store.GetAuthorByName(ctx, authorName)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RecordRecommendation("author", 0)
		return []*domain.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	books, err := s.store.BooksByAuthor(ctx, userID, author.ID, s.limits.Author)
	if err != nil {
		return nil, fmt.Errorf("recommend by author: %w", err)
	}

	metrics.RecordRecommendation("author", len(books))
	s.logger.Info("Author recommendations served",
		"user_id", userID,
		"author_id", author.ID,
		"count", len(books),
	)
	return books, nil
}

// ByHistory returns unseen books sharing a genre or an author with the
// user's most viewed genres and authors.
func (s *RecommendationService) ByHistory(ctx context.Context, userID int64) ([]*domain.Book, error) {
	genres, err := s.store.TopGenres(ctx, userID, s.limits.TopGenres)
	if err != nil {
		return nil, fmt.Errorf("top genres: %w", err)
	}
	authors, err := s.store.TopAuthors(ctx, userID, s.limits.TopAuthors)
	if err != nil {
		return nil, fmt.Errorf("top authors: %w", err)
	}

	books, err := s.store.BooksByGenresOrAuthors(ctx, userID, genres, authors, s.limits.History)
	if err != nil {
		return nil, fmt.Errorf("recommend by history: %w", err)
	}

	metrics.RecordRecommendation("history", len(books))
	s.logger.Info("History recommendations served",
		"user_id", userID,
		"genres", len(genres),
		"authors", len(authors),
		"count", len(books),
	)
	return books, nil
}
