package domain

import "fmt"

// State is the phase a timer is in.
type State int

const (
	StateCounting State = iota
	StatePaused
	StateRestCounting
	StateRestPaused
	StateRinging
)

func (s State) String() string {
	switch s {
	case StateCounting:
		return "Counting"
	case StatePaused:
		return "Paused"
	case StateRestCounting:
		return "RestCounting"
	case StateRestPaused:
		return "RestPaused"
	case StateRinging:
		return "Ringing"
	default:
		return "unknown"
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "Counting":
		return StateCounting, nil
	case "Paused":
		return StatePaused, nil
	case "RestCounting":
		return StateRestCounting, nil
	case "RestPaused":
		return StateRestPaused, nil
	case "Ringing":
		return StateRinging, nil
	default:
		return 0, fmt.Errorf("%w: unknown timer state %q", ErrInvalidSnapshot, s)
	}
}

// Running reports whether the state has a decrementing counter.
func (s State) Running() bool {
	return s == StateCounting || s == StateRestCounting
}

// Rest reports whether the rest counter is the active one.
func (s State) Rest() bool {
	return s == StateRestCounting || s == StateRestPaused
}
