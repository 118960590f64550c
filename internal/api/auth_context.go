package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookcatalog/internal/auth"
	"github.com/listenupapp/bookcatalog/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// claimsKey is the context key for the verified token claims.
const claimsKey ctxKey = "claims"

// msgAuthRequired is returned for every request that needs a valid token.
const msgAuthRequired = "Authentication required"

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (int64, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok || claims == nil || claims.UserID == 0 {
		return 0, huma.Error401Unauthorized(msgAuthRequired)
	}
	return claims.UserID, nil
}

// GetUsername returns the authenticated username, or "" when anonymous.
func GetUsername(ctx context.Context) string {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok && claims != nil {
		return claims.Username
	}
	return ""
}

func setClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware validates Bearer tokens and stores the claims in context.
// If no token is present or it is invalid, the request continues anonymously
// and handlers use GetUserID to reject it.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
		})
	}
}
