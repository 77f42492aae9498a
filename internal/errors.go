package internal

import (
	"errors"
	"fmt"
)

// AppError is the wire shape for errors in API responses.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string { return e.Message }

// ValidationError marks malformed input rejected before any computation.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError { return &ValidationError{Msg: msg} }

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a referenced resource that does not exist (or is not
// visible to the requesting user).
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// DatabaseError wraps a ledger read/write failure. The cause stays opaque
// to API callers.
type DatabaseError struct {
	Op  string
	Err error
}

func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("database: %s: %v", e.Op, e.Err) }
func (e *DatabaseError) Unwrap() error { return e.Err }

// CacheError marks a cache-layer failure. It is absorbed by the cache and
// treated as a miss; it must never surface to callers.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache: %s: %v", e.Op, e.Err) }
func (e *CacheError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
