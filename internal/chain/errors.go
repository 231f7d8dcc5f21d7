package chain

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("not_connected")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRemoteRejected = errors.New("remote_rejected")
	ErrTransient      = errors.New("transient")
	ErrLogKeyNotFound = errors.New("log_key_not_found")
)

// RemoteError is a well-formed request the ledger declined. Message is the
// remote raw log, unmodified.
type RemoteError struct {
	TxHash  string
	Code    uint32
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("Transaction failed.\n\nStatus code: %d\n\n%s", e.Code, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejected
}

// CheckReceipt turns a receipt with a non-zero code into a *RemoteError.
func CheckReceipt(r Receipt) error {
	if r.Code == 0 {
		return nil
	}
	return &RemoteError{TxHash: r.TxHash, Code: r.Code, Message: r.RawLog}
}
