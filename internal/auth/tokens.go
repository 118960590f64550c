package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/goccy/go-json"

	"github.com/listenupapp/bookcatalog/internal/id"
)

const (
	tokenIssuer   = "bookcatalog-server"
	tokenAudience = "bookcatalog-client"

	// userIDClaim carries the numeric user id next to sub (the username).
	userIDClaim = "id"

	// TokenType is the OAuth2 token_type returned alongside access tokens.
	TokenType = "bearer"
)

// ErrInvalidToken is returned for every token that fails verification:
// malformed, tampered, signed with another key, or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues and verifies PASETO v4.local access tokens.
// Tokens are self-contained; nothing is persisted.
type TokenService struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
	now func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, ttl time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("access token duration must be positive, got %s", ttl)
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{key: symmetric, ttl: ttl, now: time.Now}, nil
}

// NewTokenServiceFromHex creates a token service from a hex-encoded key.
func NewTokenServiceFromHex(keyHex string, ttl time.Duration) (*TokenService, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}
	return NewTokenService(key, ttl)
}

// TTL returns the default access token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates an access token for the user with the default lifetime.
func (s *TokenService) Issue(username string, userID int64) (string, time.Time, error) {
	return s.IssueWithTTL(username, userID, s.ttl)
}

// IssueWithTTL creates an access token that expires ttl from now.
func (s *TokenService) IssueWithTTL(username string, userID int64, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(username)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(tokenID)
	if err := token.Set(userIDClaim, userID); err != nil {
		return "", time.Time{}, fmt.Errorf("set %s claim: %w", userIDClaim, err)
	}

	return token.V4Encrypt(s.key, nil), expiresAt, nil
}

// Verify decrypts the token and checks issuer, audience and validity window.
// Any failure yields ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	now := s.now()

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(now))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
