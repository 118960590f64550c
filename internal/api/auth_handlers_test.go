package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookcatalog/internal/service"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"password": "secret123",
	})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body RegisterResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "User alice successfully registered", body.Message)
	assert.Positive(t, body.UserID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "alice",
		"password": "another-password",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	apiErr := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "ALREADY_EXISTS", apiErr.Code)
	assert.Equal(t, "Username already registered", apiErr.Message)
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": "bob",
		"password": "ab",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)
}

func TestLogin_URLEncodedForm(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerAndLogin(t, "alice")

	claims, err := ts.tokenService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_MultipartForm(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", "alice"))
	require.NoError(t, mw.WriteField("password", "secret123"))
	require.NoError(t, mw.Close())

	resp := ts.api.Post("/api/v1/auth/login", "Content-Type: "+mw.FormDataContentType(), &buf)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var token service.TokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &token))
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, 20*60, token.ExpiresIn)
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))
}

func TestLogin_RejectsBadCredentialsIdentically(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerAndLogin(t, "alice")

	attempts := map[string]url.Values{
		"wrong password": {"username": {"alice"}, "password": {"nope"}},
		"unknown user":   {"username": {"mallory"}, "password": {"secret123"}},
		"empty form":     {},
	}

	for name, form := range attempts {
		t.Run(name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/login",
				"Content-Type: application/x-www-form-urlencoded",
				strings.NewReader(form.Encode()),
			)

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			apiErr := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
			assert.Equal(t, "Invalid username or password", apiErr.Message)
		})
	}
}

func TestProtectedEndpoint_RequiresValidToken(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name    string
		headers []any
	}{
		{"missing header", nil},
		{"wrong scheme", []any{"Authorization: Basic YWxpY2U6c2VjcmV0"}},
		{"garbage token", []any{bearer("v4.local.garbage")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/recommendations/history", tt.headers...)

			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			apiErr := decodeError(t, resp.Body.Bytes())
			assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
			assert.Equal(t, "Authentication required", apiErr.Message)
		})
	}
}
