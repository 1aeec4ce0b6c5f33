package speech

import "sync"

// State represents the worker's lifecycle state.
type State int

const (
	// StateIdle indicates the worker is waiting for a command.
	StateIdle State = iota
	// StateSpeaking indicates a speak command is being synthesized.
	StateSpeaking
	// StateTerminated indicates the worker has processed the shutdown
	// sentinel. Terminal: no transitions leave this state.
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// StateMachine tracks the worker state and validates transitions. The worker
// goroutine writes, the presentation layer reads.
type StateMachine struct {
	mu          sync.RWMutex
	current     State
	transitions map[State][]State
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:       {StateSpeaking, StateTerminated},
			StateSpeaking:   {StateIdle},
			StateTerminated: {},
		},
	}
}

// Transition attempts to move to the given state and reports whether the
// transition was valid.
func (sm *StateMachine) Transition(to State) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}
