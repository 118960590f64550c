package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookcatalog/internal/auth"
	"github.com/listenupapp/bookcatalog/internal/domain"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
	"github.com/listenupapp/bookcatalog/internal/metrics"
	"github.com/listenupapp/bookcatalog/internal/store"
	"github.com/listenupapp/bookcatalog/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// RegisterRequest contains the credentials for a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,max=150"`
	Password string `json:"password" validate:"required,min=3,max=1024"`
}

// RegisterResponse contains the result of a registration request.
type RegisterResponse struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the result of a successful login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		metrics.RecordAuthAttempt("register", false)
		return nil, err
	}

	// Fast path for the common duplicate case; the UNIQUE constraint below
	// still catches a concurrent registration of the same name.
	if _, err := s.store.GetUserByUsername(ctx, req.Username); err == nil {
		s.logger.Warn("Attempt to register an existing username", "username", req.Username)
		metrics.RecordAuthAttempt("register", false)
		return nil, domainerrors.AlreadyExists(msgUsernameTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, req.Username, passwordHash)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			metrics.RecordAuthAttempt("register", false)
			return nil, domainerrors.AlreadyExists(msgUsernameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordAuthAttempt("register", true)
	s.logger.Info("User registered",
		"user_id", user.ID,
		"username", user.Username,
	)

	return &RegisterResponse{
		UserID:  user.ID,
		Message: fmt.Sprintf("User %s successfully registered", user.Username),
	}, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail with the same error and take the same time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.BurnVerify(password)
			return nil, domainerrors.InvalidCredentials(msgBadCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domainerrors.InvalidCredentials(msgBadCredentials)
	}
	return user, nil
}

// Login authenticates a user and issues an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		metrics.RecordAuthAttempt("login", false)
		return nil, domainerrors.InvalidCredentials(msgBadCredentials)
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			s.logger.Warn("Failed login attempt", "username", req.Username)
			metrics.RecordAuthAttempt("login", false)
		}
		return nil, err
	}

	token, expiresAt, err := s.tokenService.Issue(user.Username, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.RecordAuthAttempt("login", true)
	s.logger.Info("User logged in", "user_id", user.ID)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		ExpiresIn:   int(s.tokenService.TTL().Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifyAccessToken validates a bearer token and returns its claims.
// Used by authentication middleware.
func (s *AuthService) VerifyAccessToken(_ context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := s.tokenService.Verify(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized(msgInvalidToken).WithCause(err)
	}
	return claims, nil
}
