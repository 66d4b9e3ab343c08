package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMotionInput = errors.New("invalid motion input")
	ErrMotionNotFound     = errors.New("motion not found")
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrNotAuthorized      = errors.New("actor lacks authority for this transition")
	ErrInvalidTransition  = errors.New("transition not permitted from current state")
	ErrPollStillOpen      = errors.New("the motion's poll is still open")
	ErrStateConflict      = errors.New("motion state changed concurrently")
)

// TransitionError reports a rejected workflow transition together with the
// states that are reachable from the current one, so callers can self-correct.
// It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	CurrentState string
	Requested    string
	Allowed      []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s not permitted (allowed: %s)",
		e.CurrentState, e.Requested, strings.Join(e.Allowed, ", "))
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
