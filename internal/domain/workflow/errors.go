package workflow

import "errors"

var (
	// ErrInvalidTransition means the current step has no edge for the trigger
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState means a stored step name is not one of the wizard's steps
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed means every edge for the trigger was guarded and none passed
	ErrGuardFailed = errors.New("guard condition failed")
)
