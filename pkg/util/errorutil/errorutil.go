package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered in the response envelope.
const (
	CodeAuthInvalid        = "AUTH_INVALID"
	CodeAuthExpired        = "AUTH_EXPIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeForbiddenSelf      = "FORBIDDEN_SELF_ACTION"
	CodeEditLocked         = "EDIT_LOCKED"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidUsername    = "INVALID_USERNAME"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnknownModule      = "UNKNOWN_MODULE"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeLastAdmin          = "LAST_ADMIN"
	CodeInternal           = "INTERNAL_ERROR"
	internalMessageDefault = "internal server error"
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewInvalidUsername(message string) error {
	return NewDomainError(CodeInvalidUsername, message, http.StatusBadRequest, nil)
}

func NewWeakPassword(message string) error {
	return NewDomainError(CodeWeakPassword, message, http.StatusBadRequest, nil)
}

func NewUnknownModule(module string) error {
	return NewDomainError(CodeUnknownModule, fmt.Sprintf("unknown module %q", module), http.StatusBadRequest,
		map[string]any{"module": module})
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
	return NewDomainError(CodeAuthInvalid, message, http.StatusUnauthorized, nil)
}

func NewAuthExpired(message string) error {
	return NewDomainError(CodeAuthExpired, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewForbiddenSelfAction(message string) error {
	return NewDomainError(CodeForbiddenSelf, message, http.StatusForbidden, nil)
}

func NewEditLocked(message string) error {
	return NewDomainError(CodeEditLocked, message, http.StatusForbidden, nil)
}

func NewConflict(code, message string, details map[string]any) error {
	return NewDomainError(code, message, http.StatusConflict, details)
}

func NewUsernameTaken(username string) error {
	return NewConflict(CodeUsernameTaken, "username already exists", map[string]any{"username": username})
}

func NewLastAdmin(username string) error {
	return NewConflict(CodeLastAdmin, "at least one admin must remain", map[string]any{"username": username})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    internalMessageDefault,
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
		Message:    internalMessageDefault,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
