package workflow

import "context"

// PrefillTarget reports the state the wizard should jump to after free-text extraction
type PrefillTarget func(ctx context.Context) State

// NewWizardMachine builds the trip-entry machine positioned at initial.
//
// Every field state accepts its answer and advances along Sequence.
// Confirmation resets to the first step whether the trip was saved or discarded.
// The first step may also jump ahead to whichever state target reports.
func NewWizardMachine(initial State, target PrefillTarget) StateMachine {
	b := NewBuilder()

	for _, s := range Sequence {
		if s.CollectsField() {
			b.Configure(s).Permit(TriggerAccept, s.Next())
		}
	}

	b.Configure(StateAwaitingConfirmation).
		Permit(TriggerSaved, StateAwaitingDate).
		Permit(TriggerDiscard, StateAwaitingDate)

	if target != nil {
		first := b.Configure(StateAwaitingDate)
		for _, s := range Sequence {
			dest := s
			first.PermitIf(TriggerPrefill, dest, func(ctx context.Context) bool {
				return target(ctx) == dest
			})
		}
	}

	return b.Build(initial)
}
