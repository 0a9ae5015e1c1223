package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors shared across the engine. Scheme resolution is deliberately
// forgiving (see the cart sync validation pass), so most of these are captured
// into notices rather than returned to callers.
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrSchemeNotFound   = new(ErrCodeSchemeNotFound, "subscription scheme not found")
	ErrSchemeMismatch   = new(ErrCodeSchemeMismatch, "subscription scheme mismatch")
	ErrSystem           = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"

	// ErrCodeSchemeNotFound marks a requested or persisted scheme key that no
	// longer exists in the item's current scheme set.
	ErrCodeSchemeNotFound = "scheme_not_found"

	// ErrCodeSchemeMismatch marks an applied scheme key that differs from the
	// intended one with no resolvable cause.
	ErrCodeSchemeMismatch = "scheme_mismatch"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
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

// Is implements error matching for wrapped errors
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

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsSchemeNotFound checks if an error is a scheme not found error
func IsSchemeNotFound(err error) bool {
	return errors.Is(err, ErrSchemeNotFound)
}

// IsSchemeMismatch checks if an error is a scheme mismatch error
func IsSchemeMismatch(err error) bool {
	return errors.Is(err, ErrSchemeMismatch)
}

// Hint extracts the user-facing hint from an error, if any. The cart sync
// validation pass uses this to turn resolution failures into notices.
func Hint(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}
