package mcu

import (
	"errors"
	"fmt"
)

// A CommunicationError wraps a transport failure while talking to the
// MCU. Callers distinguish it from logical errors with errors.As or
// IsCommunicationError.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mcu communication failed during %s", e.Op)
	}
	return fmt.Sprintf("mcu communication failed during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// NewCommunicationError wraps err as a communication failure that
// happened during op.
func NewCommunicationError(op string, err error) error {
	return &CommunicationError{Op: op, Err: err}
}

// IsCommunicationError reports whether err is or wraps a
// *CommunicationError.
func IsCommunicationError(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}
