package ws

import "errors"

var (
	ErrClosed        = errors.New("bridge_closed")
	errInvalidParams = errors.New("invalid_params")
	errUnknownMethod = errors.New("unknown_method")
)

// RemoteError is a failure reported by the wallet on the far side.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Method + ": " + e.Message
}
