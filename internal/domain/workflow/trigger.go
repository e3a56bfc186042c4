package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerAccept advances after a field answer passed validation
	TriggerAccept Trigger = "ACCEPT"
	// TriggerPrefill jumps from the first step to the first missing field after free-text extraction
	TriggerPrefill Trigger = "PREFILL"
	// TriggerSaved resets after the trip was persisted
	TriggerSaved Trigger = "SAVED"
	// TriggerDiscard resets after the user declined the confirmation
	TriggerDiscard Trigger = "DISCARD"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
