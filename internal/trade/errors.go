package trade

import (
	"errors"
	"fmt"

	"gardendex/internal/model"
)

// ErrBusy is returned when a submission races an in-flight operation
// on the same surface.
var ErrBusy = errors.New("operation already in flight")

// ValidationError rejects a submission before any remote call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// OperationError is a confirmed failure of an in-flight operation,
// classified by the phase it failed in: an approval failure aborts the
// action call, an execution failure means the action itself reverted
// or could not confirm.
type OperationError struct {
	Kind     model.OperationKind
	Stage    model.Phase
	Err      error
	Fallback string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// UserMessage is the text the view shows: the underlying error's
// message when available, else the per-operation fallback.
func (e *OperationError) UserMessage() string {
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return e.Fallback
}

// UserMessage extracts a short human-readable message from any error
// this package returns.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.UserMessage()
	}
	if errors.Is(err, ErrBusy) {
		return "Another operation is still pending. Please wait."
	}
	return err.Error()
}
