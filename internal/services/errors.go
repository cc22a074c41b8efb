package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	// ErrEmptyPost is returned when a post has neither text nor media.
	ErrEmptyPost = errors.New("Post must have either text content or at least one media file")

	// ErrInvalidCredentials is returned on any failed authentication, without
	// revealing whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("Invalid username or password")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries field-level registration errors, keyed by field name.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return strings.Join(parts, "; ")
}

// MediaValidationError aggregates every per-file rejection from a single
// post-creation attempt, so the caller sees all problems at once.
type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}
