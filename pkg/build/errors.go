package build

import (
	"fmt"
)

// ErrUnknownStrategy is returned when a strategy is requested that
// has not been registered.
type ErrUnknownStrategy struct {
	attempted string
}

// NewErrUnknownStrategy returns a new error specialized to the
// attempted strategy.
func NewErrUnknownStrategy(s string) ErrUnknownStrategy {
	return ErrUnknownStrategy{s}
}

func (e ErrUnknownStrategy) Error() string {
	return "no strategy with name " + e.attempted + " exists"
}

// ErrWrongState is returned when a session step is attempted out of
// order.
type ErrWrongState struct {
	Op    string
	State State
}

func (e ErrWrongState) Error() string {
	return fmt.Sprintf("cannot %s a session in state %s", e.Op, e.State)
}
