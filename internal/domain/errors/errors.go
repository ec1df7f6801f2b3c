// Package errors holds the error categories shared by the vault services.
// Handlers switch on the categories with errors.Is; a DomainError adds the
// response code and details on top of its category.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Categories
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrStoreUnavailable is returned by every ledger operation when no store is configured
	// or the configured store cannot be reached.
	ErrStoreUnavailable = fmt.Errorf("ledger store unavailable: %w", ErrServiceUnavailable)
)

// DomainError carries a category, a stable response code and optional details.
type DomainError struct {
	Err     error
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing goal, plan or transaction. resource is the
// upper-case code prefix, e.g. GOAL.
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    resource + "_NOT_FOUND",
		Message: fmt.Sprintf("%s not found", strings.ToLower(resource)),
	}
}

// ValidationError reports a rejected field.
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// AsDomainError returns the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
