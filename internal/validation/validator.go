// Package validation provides request validation using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/listenupapp/bookcatalog/internal/domain"
	domainerrors "github.com/listenupapp/bookcatalog/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New creates a validator with the catalog's custom tags registered:
//
//	genre    - value is one of the catalog genres
//	pubyear  - value is in [1800, current year]
//	notblank - value is non-empty after trimming whitespace
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injectable clock for the pubyear rule.
func NewWithClock(now func() time.Time) *Validator {
	v := validator.New()

	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		name, _, _ = strings.Cut(name, ",")
		if name == "-" {
			return fld.Name
		}
		return name
	})

	val := &Validator{v: v, now: now}

	//nolint:errcheck // Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return domain.Genre(fl.Field().String()).IsValid()
	})
	//nolint:errcheck // Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		return domain.ValidPublishedYear(int(fl.Field().Int()), val.now())
	})
	//nolint:errcheck // Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return val
}

// Validate validates a struct and returns a domain validation error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to a domain error whose details map
// each offending field to a readable message.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "genre":
		names := make([]string, 0, len(domain.Genres()))
		for _, g := range domain.Genres() {
			names = append(names, string(g))
		}
		return "must be one of: " + strings.Join(names, ", ")
	case "pubyear":
		return fmt.Sprintf("must be between %d and %d", domain.MinPublishedYear, v.now().Year())
	default:
		return "is invalid"
	}
}
