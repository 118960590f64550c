package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookcatalog/internal/http/response"
	"github.com/listenupapp/bookcatalog/internal/service"
)

// maxLoginFormSize bounds the login form body.
const maxLoginFormSize = 64 << 10

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/register",
		Summary:       "Register new user",
		Description:   "Creates a new user account. Usernames are unique.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	// OAuth2 password-style login takes form fields, which huma does not bind.
	s.router.Post(apiPrefix+"/auth/login", s.handleLogin)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" maxLength:"150" doc:"Unique username"`
	Password string `json:"password" maxLength:"1024" doc:"Password (at least 3 characters)"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// RegisterResponse contains the result of a registration.
type RegisterResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
	UserID  int64  `json:"user_id" doc:"ID of the new user"`
}

// RegisterOutput wraps the register response for Huma.
type RegisterOutput struct {
	Body RegisterResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		Body: RegisterResponse{Message: resp.Message, UserID: resp.UserID},
	}, nil
}

// handleLogin accepts username and password as URL-encoded or multipart form
// fields and returns a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginFormSize)

	if err := parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, "Login form too large", s.logger)
			return
		}
		response.BadRequest(w, "Invalid login form", s.logger)
		return
	}

	token, err := s.services.Auth.Login(r.Context(), service.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Cache-Control", CacheNoStore)
	response.Success(w, token, s.logger)
}

// parseForm parses URL-encoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxLoginFormSize)
	}
	return r.ParseForm()
}
