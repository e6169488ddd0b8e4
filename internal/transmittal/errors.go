package transmittal

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// Error is a caller-facing failure with a human readable message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound() error {
	return &Error{Kind: ErrNotFound, Message: "Transmittal not found"}
}

func invalidState(message string) error {
	return &Error{Kind: ErrInvalidState, Message: message}
}
