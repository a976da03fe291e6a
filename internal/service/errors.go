package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports an operation that would duplicate existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports a missing referenced resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// PermissionError reports an operation attempted by someone other than the
// resource owner.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func newConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func newNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func newPermissionError(message string) error {
	return &PermissionError{Message: message}
}

// translateStoreError maps storage-layer failures onto the service taxonomy.
// Unique-constraint violations can still surface after an application-level
// existence check loses a race; they become ConflictError rather than leaking
// a raw storage error.
func translateStoreError(err error, resource, conflictMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Message: conflictMessage}
	default:
		return err
	}
}
