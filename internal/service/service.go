// Package service implements the catalog's use cases on top of store.Store.
// Services validate input, translate store sentinels into domain errors and
// record metrics; handlers only map those errors onto HTTP responses.
package service

import (
	"errors"

	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
	"github.com/listenupapp/bookcatalog/internal/store"
)

// Messages shared by several operations.
const (
	msgBookNotFound   = "Book not found"
	msgDuplicateTitle = "Book with this title already exists"
	msgUsernameTaken  = "Username already registered"
	msgBadCredentials = "Invalid username or password"
	msgInvalidToken   = "Could not validate user"
	msgAuthorRequired = "author name is required"
)

// notFoundOr maps store.ErrNotFound to a NotFound domain error with msg and
// passes every other error through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return err
}
