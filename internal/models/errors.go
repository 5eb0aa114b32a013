package models

import (
	"errors"
	"fmt"
)

// Error classes surfaced to callers. Concrete errors below match them via errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrRelationConflict = errors.New("relation conflict")
	ErrStorage          = errors.New("storage failure")
)

// ValidationError reports a malformed, missing or wrong-typed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced client, product area, request or user that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// RelationError reports a delete blocked by requests that still reference the entity.
type RelationError struct {
	Entity string
	ID     int64
	Count  int
}

func (e *RelationError) Error() string {
	return fmt.Sprintf("%s %d is referenced by %d request(s)", e.Entity, e.ID, e.Count)
}

func (e *RelationError) Is(target error) bool {
	return target == ErrRelationConflict
}

// StorageError wraps a transaction or driver failure.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage classifies err as a StorageError unless it already belongs to one of
// the caller-facing classes.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRelationConflict) ||
		errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Err: err}
}
