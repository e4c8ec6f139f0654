package period

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlan       = errors.New("unknown plan for transition")
	ErrNotSubscribed     = errors.New("account has no paid subscription")
	ErrInvalidPeriod     = errors.New("period end must be after period start")
	ErrInvalidTransition = errors.New("transition not allowed from current state")
)

// TransitionError reports a transition attempt rejected by the state guards.
type TransitionError struct {
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %q not allowed from state %q", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func newTransitionError(from State, event string) error {
	return &TransitionError{From: from, Event: event}
}
