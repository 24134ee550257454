package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// StatusCoder is implemented by every error in this package so the HTTP
// boundary can map it without knowing the concrete type.
type StatusCoder interface {
	error
	StatusCode() int
}

// ValidationError reports malformed, missing or out-of-range input.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
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
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Add records a message against a field and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// HasErrors reports whether anything was recorded.
func (e *ValidationError) HasErrors() bool {
	return e.Message != "" || len(e.Fields) > 0
}

// Invalid builds a message-only ValidationError.
func Invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InvalidField builds a ValidationError for a single field.
func InvalidField(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}

// ConflictError reports a duplicate membership mark or subscription edge.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string    { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusBadRequest }

func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// NotFoundError reports a missing resource or relation row. Status lets a
// caller surface "relation not present" as 400 while resource lookups stay 404.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
	Status   int
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusNotFound
}

func NotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// NotPresent is a missing relation row (mark, subscription). It maps to 400.
func NotPresent(message string) *NotFoundError {
	return &NotFoundError{Message: message, Status: http.StatusBadRequest}
}

// PermissionError reports a mutation attempted by someone other than the owner.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return "you do not have permission to perform this action"
	}
	return e.Message
}

func (e *PermissionError) StatusCode() int { return http.StatusForbidden }

func Forbidden(message string) *PermissionError {
	return &PermissionError{Message: message}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsPermission(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}
