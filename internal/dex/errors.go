package dex

import (
	"errors"
	"fmt"
)

// ReadError wraps a failed view call. Read failures are recoverable:
// callers retain the last-known snapshot and log, they do not surface
// an error to the user.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// IsReadError reports whether err is a recoverable read failure.
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}
