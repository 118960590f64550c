package store

import "errors"

// Sentinel errors returned by Store implementations, usually wrapped with
// context. Callers match them with errors.Is.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
)
