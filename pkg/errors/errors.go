package pkgerrors

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidTransition  = -2001
	CodeIllegalState       = -2002
	CodeRetryLimit         = -2003
	CodeDuplicateReference = -2004
	CodeNotFound           = -2005
	CodeInvalidArgument    = -2006
	CodeConflict           = -2007
	CodeUnknown            = -9999
)

type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidTransitionError reports an edge missing from the legal-transition
// table. This is a logic bug in the caller, never a user-correctable state.
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("invalid transition: %s -> %s", from, to),
	}
}

func NewIllegalStateError(msg string) *AppError {
	return &AppError{
		Code:    CodeIllegalState,
		Message: msg,
	}
}

func NewRetryLimitError(max int) *AppError {
	return &AppError{
		Code:    CodeRetryLimit,
		Message: fmt.Sprintf("maximum retry count (%d) reached", max),
	}
}

func NewDuplicateReferenceError(reference string, err error) *AppError {
	return &AppError{
		Code:    CodeDuplicateReference,
		Message: fmt.Sprintf("payment reference '%s' already exists", reference),
		Err:     err,
	}
}

func NewNotFoundError(identifier string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("payment with ID or reference '%s' not found", identifier),
	}
}

func NewInvalidArgumentError(msg string) *AppError {
	return &AppError{
		Code:    CodeInvalidArgument,
		Message: msg,
	}
}

// NewConflictError reports a lost update: the caller's snapshot no longer
// matches the stored status, so its transition was refused.
func NewConflictError(expectedStatus string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("payment was modified concurrently (expected status '%s')", expectedStatus),
	}
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsInvalidTransitionError(err error) bool  { return hasCode(err, CodeInvalidTransition) }
func IsIllegalStateError(err error) bool       { return hasCode(err, CodeIllegalState) }
func IsRetryLimitError(err error) bool         { return hasCode(err, CodeRetryLimit) }
func IsDuplicateReferenceError(err error) bool { return hasCode(err, CodeDuplicateReference) }
func IsNotFoundError(err error) bool           { return hasCode(err, CodeNotFound) }
func IsInvalidArgumentError(err error) bool    { return hasCode(err, CodeInvalidArgument) }
func IsConflictError(err error) bool           { return hasCode(err, CodeConflict) }

func GetErrorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}
