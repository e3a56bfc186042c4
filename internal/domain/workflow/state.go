package workflow

// State represents one step of the trip-entry conversation
type State string

const (
	StateAwaitingDate         State = "AWAITING_DATE"
	StateAwaitingCountry      State = "AWAITING_COUNTRY"
	StateAwaitingCity         State = "AWAITING_CITY"
	StateAwaitingTicketCost   State = "AWAITING_TICKET_COST"
	StateAwaitingLodgingCost  State = "AWAITING_LODGING_COST"
	StateAwaitingAllowance    State = "AWAITING_ALLOWANCE"
	StateAwaitingCostCenter   State = "AWAITING_COST_CENTER"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
)

// Sequence is the fixed order in which the wizard collects fields
var Sequence = []State{
	StateAwaitingDate,
	StateAwaitingCountry,
	StateAwaitingCity,
	StateAwaitingTicketCost,
	StateAwaitingLodgingCost,
	StateAwaitingAllowance,
	StateAwaitingCostCenter,
	StateAwaitingConfirmation,
}

var validStates = map[State]bool{
	StateAwaitingDate:         true,
	StateAwaitingCountry:      true,
	StateAwaitingCity:         true,
	StateAwaitingTicketCost:   true,
	StateAwaitingLodgingCost:  true,
	StateAwaitingAllowance:    true,
	StateAwaitingCostCenter:   true,
	StateAwaitingConfirmation: true,
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid wizard state
func (s State) IsValid() bool {
	return validStates[s]
}

// CollectsField returns true for states that wait for a trip field (every state but confirmation)
func (s State) CollectsField() bool {
	return s.IsValid() && s != StateAwaitingConfirmation
}

// Next returns the state that follows s in Sequence.
// The last state wraps around to the first.
func (s State) Next() State {
	for i, st := range Sequence {
		if st == s {
			return Sequence[(i+1)%len(Sequence)]
		}
	}
	return StateAwaitingDate
}
