package model

// State represents the reported state of a CI check context.
type State string

const (
	StateExpected State = "EXPECTED" // No builder has picked the check up yet.
	StatePending  State = "PENDING"  // A builder is running the check.
	StateSuccess  State = "SUCCESS"
	StateFailure  State = "FAILURE"
	StateError    State = "ERROR"
)

// States lists every valid state in reporting order. Display order of
// statuses is by timestamp, never by state; this order is only used where a
// deterministic enumeration is needed (metrics lines, legends).
var States = []State{StateExpected, StatePending, StateSuccess, StateFailure, StateError}

// Valid reports whether s is one of the known check states.
func (s State) Valid() bool {
	switch s {
	case StateExpected, StatePending, StateSuccess, StateFailure, StateError:
		return true
	}
	return false
}
