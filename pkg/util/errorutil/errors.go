package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared between the repository, the session cache and the HTTP layer.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is done on Code, so values built by the
// constructors below (with their own message and details) still match.
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrDuplicateEmail     = NewDomainError(CodeDuplicateEmail, "user already exists", http.StatusConflict, nil)
	ErrIncorrectPassword  = NewDomainError(CodeIncorrectPassword, "current password is incorrect", http.StatusBadRequest, nil)
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
	ErrPasswordTooShort   = NewDomainError(CodePasswordTooShort, "password must be at least 6 characters", http.StatusBadRequest, nil)
	ErrStorageFailure     = NewDomainError(CodeStorageFailure, "storage failure", http.StatusInternalServerError, nil)
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewDuplicateEmail(email string) error {
	return NewDomainError(CodeDuplicateEmail, "user already exists", http.StatusConflict, map[string]any{"email": email})
}

func NewIncorrectPassword() error {
	return NewDomainError(CodeIncorrectPassword, "current password is incorrect", http.StatusBadRequest, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
}

func NewPasswordTooShort(min int) error {
	return NewDomainError(CodePasswordTooShort,
		fmt.Sprintf("password must be at least %d characters", min),
		http.StatusBadRequest,
		map[string]any{"min_length": min})
}

// NewStorageFailure wraps a backend or serialization fault for the given collection key.
func NewStorageFailure(key string, err error) error {
	return &DomainError{
		Code:       CodeStorageFailure,
		Message:    fmt.Sprintf("storage failure on %q", key),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
