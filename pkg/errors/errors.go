// Package errors defines structured error types for the risk registry service.
// Every domain error carries a stable error code from pkg/constants and the HTTP
// status it maps to, so handlers never need to inspect error strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/trackops/riskregistry/pkg/constants"
)

// ================================================================================
// Error Interface
// ================================================================================

// RegistryError represents a structured error with domain metadata.
type RegistryError interface {
	error

	// Code returns the stable domain error code.
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code this error maps to.
	HTTPStatus() int

	// Description returns a human-readable description of the error category.
	Description() string

	// Unwrap returns the underlying cause for error chain support.
	Unwrap() error

	// WithCause attaches a cause error to the chain.
	WithCause(cause error) RegistryError

	// WithMetadata attaches additional context metadata.
	WithMetadata(key string, value interface{}) RegistryError

	// Metadata returns all attached metadata.
	Metadata() map[string]interface{}
}

// ================================================================================
// Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) WithCause(cause error) RegistryError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) RegistryError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates a RegistryError with the specified parameters.
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) RegistryError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// AsRegistryError extracts a RegistryError from an error chain.
func AsRegistryError(err error) (RegistryError, bool) {
	var re RegistryError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ================================================================================
// Predefined Constructors
// ================================================================================

// ErrValidation creates a VALIDATION_ERROR. Raised before any scoring or
// persistence occurs; the caller must correct the input and resubmit.
func ErrValidation(message string) RegistryError {
	return NewError(
		constants.ErrCodeValidation,
		http.StatusBadRequest,
		"The request contains missing or out-of-range fields.",
		message,
	)
}

// ErrNotFound creates a NOT_FOUND error for the named entity.
func ErrNotFound(entity string, id string) RegistryError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		fmt.Sprintf("%s not found", entity),
		fmt.Sprintf("%s not found: %s", entity, id),
	).WithMetadata("entity", entity).WithMetadata("id", id)
}

// ErrHasDependents creates a HAS_DEPENDENTS error. No partial deletion occurs.
func ErrHasDependents(entity string, id string, dependents int64) RegistryError {
	return NewError(
		constants.ErrCodeHasDependents,
		http.StatusConflict,
		"The entity still owns dependent records and cannot be deleted.",
		fmt.Sprintf("%s %s still owns %d dependent record(s)", entity, id, dependents),
	).WithMetadata("entity", entity).WithMetadata("id", id).WithMetadata("dependents", dependents)
}

// ErrDuplicateControl creates a DUPLICATE_CONTROL error for a repeat attachment.
func ErrDuplicateControl(riskID string, controlID string) RegistryError {
	return NewError(
		constants.ErrCodeDuplicateControl,
		http.StatusConflict,
		"The control is already attached to this risk.",
		fmt.Sprintf("control %s is already attached to risk %s", controlID, riskID),
	).WithMetadata("risk_id", riskID).WithMetadata("control_id", controlID)
}

// ErrConflict creates a CONFLICT error for uniqueness violations.
func ErrConflict(message string) RegistryError {
	return NewError(
		constants.ErrCodeConflict,
		http.StatusConflict,
		"The request conflicts with existing state.",
		message,
	)
}

// ErrInternal creates an INTERNAL_ERROR for unexpected infrastructure failures.
func ErrInternal(message string) RegistryError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The service encountered an unexpected condition.",
		message,
	)
}

// ErrDatabase wraps a database failure as an INTERNAL_ERROR.
func ErrDatabase(err error) RegistryError {
	return ErrInternal("database operation failed").WithCause(err)
}
