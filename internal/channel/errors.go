package channel

import (
	"errors"
	"fmt"
)

// ErrorCode categorises channel failures.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorConnection
	ErrorDisconnected
	ErrorTimeout
	ErrorInvalidConfig
	ErrorNotConnected
	ErrorSerialization
)

func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorConnection:
		return "connection_error"
	case ErrorDisconnected:
		return "disconnected"
	case ErrorTimeout:
		return "timeout"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ChannelError is a structured error with code and context.
type ChannelError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

func (e *ChannelError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChannelError) Unwrap() error {
	return e.Wrapped
}

// Is matches any ChannelError with the same code.
func (e *ChannelError) Is(target error) bool {
	t, ok := target.(*ChannelError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewError(code ErrorCode, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *ChannelError {
	return &ChannelError{Code: code, Message: message, Wrapped: err}
}

// IsConnectionError reports whether err came from losing or failing to reach
// the relay.
func IsConnectionError(err error) bool {
	var ce *ChannelError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == ErrorConnection || ce.Code == ErrorDisconnected || ce.Code == ErrorTimeout
}
