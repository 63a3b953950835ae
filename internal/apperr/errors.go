// Package apperr defines the error kinds surfaced by the application record
// service and the wizard.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindPersistence Kind = "PERSISTENCE_ERROR"
	KindNotFound    Kind = "NOT_FOUND"
	KindUnknown     Kind = "UNKNOWN_ERROR"
)

// Messages shown to applicants and operators.
const (
	MsgRequiredFields  = "All required fields must be filled"
	MsgSaveFailed      = "Failed to save application"
	MsgFetchFailed     = "Failed to fetch applications"
	MsgNotFound        = "Application not found"
	MsgStatusFailed    = "Failed to update application status"
	MsgUnexpectedError = "An unexpected error occurred"
)

// Error carries a kind and a user-facing message. Details and the wrapped
// cause are for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// MissingFields reports required fields that are still empty.
func MissingFields(fields []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: MsgRequiredFields,
		Details: "missing: " + strings.Join(fields, ", "),
	}
}

// Persistence wraps a gateway failure.
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func NotFound(details string) *Error {
	return &Error{Kind: KindNotFound, Message: MsgNotFound, Details: details}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the text that may be shown to a caller.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgUnexpectedError
}
