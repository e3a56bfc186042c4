package workflow

import (
	"context"
	"fmt"
	"slices"
)

// GuardFunc reports whether a guarded edge may be followed
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects the wizard's edges and stamps out machines from them
type StateMachineBuilder interface {
	// Configure returns the edge set leaving state
	Configure(state State) StateConfiguration

	// Build returns a machine starting at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration adds edges leaving one state
type StateConfiguration interface {
	// Permit adds an unconditional edge
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf adds an edge followed only when guard passes.
	// Edges sharing a trigger are tried in the order they were added.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type edge struct {
	to    State
	guard GuardFunc
}

// edgeTable maps a source state and trigger to its candidate edges
type edgeTable map[State]map[Trigger][]edge

func (t edgeTable) clone() edgeTable {
	out := make(edgeTable, len(t))
	for from, byTrigger := range t {
		copied := make(map[Trigger][]edge, len(byTrigger))
		for trigger, edges := range byTrigger {
			copied[trigger] = slices.Clone(edges)
		}
		out[from] = copied
	}
	return out
}

type builder struct {
	edges edgeTable
}

type stateEdges struct {
	edges map[Trigger][]edge
}

type machine struct {
	current State
	edges   edgeTable
}

// NewBuilder returns an empty builder
func NewBuilder() StateMachineBuilder {
	return &builder{edges: make(edgeTable)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: configure unknown state %q", state))
	}
	byTrigger, ok := b.edges[state]
	if !ok {
		byTrigger = make(map[Trigger][]edge)
		b.edges[state] = byTrigger
	}
	return &stateEdges{edges: byTrigger}
}

// Build copies the edge table so later Configure calls do not leak into running machines
func (b *builder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("workflow: start at unknown state %q", initialState))
	}
	return &machine{current: initialState, edges: b.edges.clone()}
}

func (s *stateEdges) Permit(trigger Trigger, toState State) StateConfiguration {
	return s.PermitIf(trigger, toState, nil)
}

func (s *stateEdges) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("workflow: edge to unknown state %q", toState))
	}
	s.edges[trigger] = append(s.edges[trigger], edge{to: toState, guard: guard})
	return s
}

func (m *machine) State() State {
	return m.current
}

// CanFire ignores guards; they are evaluated by Fire with the caller's context
func (m *machine) CanFire(trigger Trigger) bool {
	return len(m.edges[m.current][trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	candidates := m.edges[m.current][trigger]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s is not accepted in %s", ErrInvalidTransition, trigger, m.current)
	}
	for _, e := range candidates {
		if e.guard == nil || e.guard(ctx) {
			m.current = e.to
			return nil
		}
	}
	return fmt.Errorf("%w: no edge for %s in %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers lists the triggers with edges from the current state, sorted
func (m *machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.edges[m.current]))
	for trigger := range m.edges[m.current] {
		triggers = append(triggers, trigger)
	}
	slices.Sort(triggers)
	return triggers
}
