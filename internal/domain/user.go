// Package domain contains the core catalog types shared by the store, services and API.
package domain

import "time"

// User is a registered account. Users are immutable after registration.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
