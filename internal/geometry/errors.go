package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation indicates an operation that is rejected outright,
	// such as disabling the last enabled monitor.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrCollisionUnresolvable indicates the displacement budget ran out
	// before the layout reached a fixed point.
	ErrCollisionUnresolvable = errors.New("collision unresolvable")

	// ErrUnknownMonitor indicates an operation named a monitor that is not
	// in the layout.
	ErrUnknownMonitor = fmt.Errorf("%w: unknown monitor", ErrInvalidOperation)

	// ErrInvariant indicates a layout that violates overlap, position, or
	// workspace uniqueness rules.
	ErrInvariant = errors.New("layout invariant violated")
)

// OpError describes a failed layout operation on a specific monitor.
type OpError struct {
	Op      string
	Monitor string
	Err     error
}

func (e *OpError) Error() string {
	if e.Monitor == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Monitor, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
