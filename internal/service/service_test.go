package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookcatalog/internal/auth"
	"github.com/listenupapp/bookcatalog/internal/store/sqlite"
	"github.com/listenupapp/bookcatalog/internal/validation"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type testServices struct {
	store           *sqlite.Store
	tokens          *auth.TokenService
	auth            *AuthService
	catalog         *CatalogService
	recommendations *RecommendationService
}

// setupServices wires every service onto a fresh SQLite store.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := auth.NewTokenServiceFromHex(testKeyHex, 20*time.Minute)
	require.NoError(t, err)

	v := validation.NewWithClock(func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	})

	return &testServices{
		store:           s,
		tokens:          tokens,
		auth:            NewAuthService(s, tokens, v, logger),
		catalog:         NewCatalogService(s, v, logger),
		recommendations: NewRecommendationService(s, DefaultRecommendationLimits(), logger),
	}
}
