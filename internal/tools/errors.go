package tools

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is a failure whose message is meant for the caller as is. Kind is
// one of the sentinels above and is what errors.Is matches against.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func invalid(msg string) error { return &Error{Kind: ErrInvalidArgument, Message: msg} }
