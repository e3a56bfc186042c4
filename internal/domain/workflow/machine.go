package workflow

import "context"

// StateMachine holds the wizard's current step and moves it along configured edges
type StateMachine interface {
	// State is the step the machine is on
	State() State

	// CanFire reports whether trigger has an edge from the current step
	CanFire(trigger Trigger) bool

	// Fire follows the first edge for trigger whose guard passes
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the triggers leaving the current step
	PermittedTriggers() []Trigger
}
