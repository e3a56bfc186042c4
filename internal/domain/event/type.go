package event

// Type identifies the type of domain event
type Type string

const (
	TypeSessionStarted      Type = "session.started"
	TypeSessionClosed       Type = "session.closed"
	TypeInputRejected       Type = "input.rejected"
	TypeExtractionCompleted Type = "extraction.completed"
	TypeTripSaved           Type = "trip.saved"
	TypeTripSaveFailed      Type = "trip.save_failed"
	TypeDraftDiscarded      Type = "draft.discarded"
)

// Types lists every defined event type
var Types = []Type{
	TypeSessionStarted,
	TypeSessionClosed,
	TypeInputRejected,
	TypeExtractionCompleted,
	TypeTripSaved,
	TypeTripSaveFailed,
	TypeDraftDiscarded,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
