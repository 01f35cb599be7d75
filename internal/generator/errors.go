package generator

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSpec   = errors.New("invalid_generation_spec")
	ErrNotResumable  = errors.New("generation_not_resumable")
	ErrBatchCanceled = errors.New("generation_cancelled")
)

const (
	OpCreateFloor = "create floor"
	OpCreateUnit  = "create unit"
)

// MissingConfigurationError means a floor has no mix (UnitType empty) or a
// mix entry references a unit type without a registered configuration.
type MissingConfigurationError struct {
	Floor    int
	UnitType string
	Key      string
}

func (e *MissingConfigurationError) Error() string {
	if e.UnitType == "" && e.Key == "" {
		return fmt.Sprintf("no unit mix configured for floor %d", e.Floor)
	}
	return fmt.Sprintf("no configuration registered for unit type %q on floor %d", e.UnitType, e.Floor)
}

// RemoteCallError wraps a failed catalog call.
type RemoteCallError struct {
	Op     string
	Floor  int
	PlotNo string
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.PlotNo != "" {
		return fmt.Sprintf("%s %s on floor %d: %v", e.Op, e.PlotNo, e.Floor, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", e.Op, e.Floor, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

type canceledError struct {
	cursor Cursor
	cause  error
}

func (e *canceledError) Error() string {
	return fmt.Sprintf("generation cancelled at floor %d: %v", e.cursor.Floor, e.cause)
}

// Is lets callers match both ErrBatchCanceled and the context cause.
func (e *canceledError) Is(target error) bool { return target == ErrBatchCanceled }

func (e *canceledError) Unwrap() error { return e.cause }
