package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors shared by the store, services and handlers. Concrete errors
// are built with NewError/WithError and marked with one of these.
var (
	ErrNotFound          = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists     = new(ErrCodeAlreadyExists, "resource already exists")
	ErrInvalidTransition = new(ErrCodeInvalidTransition, "invalid status transition")
	ErrValidation        = new(ErrCodeValidation, "validation error")
	ErrSystem            = new(ErrCodeSystemError, "system error")

	statusCodeMap = map[error]int{
		ErrNotFound:          http.StatusNotFound,
		ErrAlreadyExists:     http.StatusConflict,
		ErrInvalidTransition: http.StatusConflict,
		ErrValidation:        http.StatusBadRequest,
		ErrSystem:            http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeValidation        = "validation_error"
	ErrCodeSystemError       = "system_error"
)

// InternalError is a coded domain error used as a mark reference.
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so copies of a sentinel compare equal.
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidTransition checks if an error is a rejected status change
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// HTTPStatusFromErr maps a marked error to its HTTP status code.
// Unmarked errors are reported as 500.
func HTTPStatusFromErr(err error) int {
	for ref, status := range statusCodeMap {
		if errors.Is(err, ref) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// CodeFromErr returns the machine-readable code of the sentinel err is marked with.
func CodeFromErr(err error) string {
	for ref := range statusCodeMap {
		if errors.Is(err, ref) {
			return ref.(*InternalError).Code
		}
	}
	return ErrCodeSystemError
}

// HintsFromErr returns the user facing hints attached to err.
func HintsFromErr(err error) []string {
	return errors.GetAllHints(err)
}
