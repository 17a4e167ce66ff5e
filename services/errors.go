package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateOrderID signals an orderId collision at insert time. It is
// retried internally and never reaches a caller.
var ErrDuplicateOrderID = errors.New("order id already exists")

// ValidationError is malformed or missing input. Fields maps the JSON field
// name to the reason it was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// ConflictError is a double booking or a transition out of a terminal state.
// Tables lists the table numbers already held, when that is the cause.
type ConflictError struct {
	Message string
	Tables  []string
}

func (e *ConflictError) Error() string {
	if len(e.Tables) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Tables, ", "))
	}
	return e.Message
}

func errTablesTaken(tables []string) *ConflictError {
	return &ConflictError{Message: "tables already reserved for this slot", Tables: tables}
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// StorageError wraps a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr leaves domain errors untouched and wraps anything else.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		se *StorageError
	)
	if errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ne) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
