package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error kinds. Services return these (wrapped with context) so
// callers can branch with errors.Is / errors.As instead of matching
// message text.
var (
	// ErrNotFound indicates a referenced resource, stage, application,
	// receipt or inventory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateResource indicates a catalog add with an already-used name.
	ErrDuplicateResource = errors.New("resource already exists")

	// ErrPermissionDenied indicates the acting user's role lacks the
	// capability for the requested operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState indicates an operation against an entity in the
	// wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrResourceInUse indicates a delete blocked because stage history
	// references the resource.
	ErrResourceInUse = errors.New("resource is in use")
)

// ValidationError reports malformed input: a negative quantity, a missing
// required type attribute, an empty name.
type ValidationError struct {
	Field             string
	Reason            string
	MissingAttributes []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingAttributes) > 0 {
		return fmt.Sprintf("validation failed: missing required attributes: %s",
			strings.Join(e.MissingAttributes, ", "))
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// InsufficientStockError reports an allocation that would require more
// stock than currently on hand. Retryable by the caller.
type InsufficientStockError struct {
	Resource  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock of %q: available %d, requested %d",
		e.Resource, e.Available, e.Requested)
}
