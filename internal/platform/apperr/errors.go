// Package apperr holds the error taxonomy shared by every module. Services wrap
// these sentinels with fmt.Errorf("...: %w", err) and the HTTP layer maps them
// to status codes with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers both "absent" and "not owned by the actor" so that
	// non-owners learn nothing about existence.
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInsufficientStock = errors.New("not enough stock available")
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflicting update, please retry")
)

// ValidationError reports malformed input field by field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
