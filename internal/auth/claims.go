package auth

import "time"

// Claims are the decrypted contents of an access token.
type Claims struct {
	Username string `json:"sub"`
	UserID   int64  `json:"id"`

	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
