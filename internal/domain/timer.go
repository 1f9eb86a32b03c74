package domain

import (
	"fmt"
	"time"
)

const (
	// TickUnit is the granularity of the per-second driver. Configured
	// durations are whole multiples of it.
	TickUnit = time.Second

	// RingingGrace is reserved for acknowledging a ring before teardown. It is
	// advisory; no transition enforces it.
	RingingGrace = 2 * time.Second
)

// Spec is the input of a create-timer command.
type Spec struct {
	ID          int
	Label       string
	Main        time.Duration
	Rest        time.Duration
	Repetitions int
	ToneID      string
	Vibrate     bool
}

// Validate rejects malformed creation input.
func (s Spec) Validate() error {
	if s.ID < 0 {
		return ErrInvalidID
	}
	if s.Main < TickUnit || s.Main%TickUnit != 0 {
		return ErrInvalidDuration
	}
	if s.Rest < 0 || s.Rest%TickUnit != 0 {
		return ErrInvalidDuration
	}
	if s.Repetitions < 1 {
		return ErrInvalidRepetitions
	}
	return nil
}

// Timer is one interval timer. The exported fields are exactly the snapshot
// that crosses the foreground/background boundary.
type Timer struct {
	ID                int
	Label             string
	State             State
	MainDuration      time.Duration
	RemainingMain     time.Duration
	RestDuration      time.Duration
	RemainingRest     time.Duration
	ToneID            string
	Vibrate           bool
	TotalRepetitions  int
	CurrentRepetition int
}

// New returns a timer in Counting at the start of its first repetition.
func New(s Spec) (Timer, error) {
	if err := s.Validate(); err != nil {
		return Timer{}, err
	}
	return Timer{
		ID:                s.ID,
		Label:             s.Label,
		State:             StateCounting,
		MainDuration:      s.Main,
		RemainingMain:     s.Main,
		RestDuration:      s.Rest,
		RemainingRest:     s.Rest,
		ToneID:            s.ToneID,
		Vibrate:           s.Vibrate,
		TotalRepetitions:  s.Repetitions,
		CurrentRepetition: 1,
	}, nil
}

// Validate checks a snapshot received from outside, e.g. a wake payload.
func (t Timer) Validate() error {
	spec := Spec{ID: t.ID, Main: t.MainDuration, Rest: t.RestDuration, Repetitions: t.TotalRepetitions}
	if err := spec.Validate(); err != nil {
		return err
	}
	switch {
	case t.State < StateCounting || t.State > StateRinging:
		return fmt.Errorf("%w: state %d", ErrInvalidSnapshot, int(t.State))
	case t.CurrentRepetition < 1 || t.CurrentRepetition > t.TotalRepetitions:
		return fmt.Errorf("%w: repetition %d of %d", ErrInvalidSnapshot, t.CurrentRepetition, t.TotalRepetitions)
	case t.RemainingMain < 0 || t.RemainingMain > t.MainDuration:
		return fmt.Errorf("%w: remaining main %s", ErrInvalidSnapshot, t.RemainingMain)
	case t.RemainingRest < 0 || t.RemainingRest > t.RestDuration:
		return fmt.Errorf("%w: remaining rest %s", ErrInvalidSnapshot, t.RemainingRest)
	case t.RestDuration == 0 && t.State.Rest():
		return fmt.Errorf("%w: %s without a rest phase", ErrInvalidSnapshot, t.State)
	case t.State == StateRinging && t.CurrentRepetition != t.TotalRepetitions:
		return fmt.Errorf("%w: ringing before the last repetition", ErrInvalidSnapshot)
	}
	return nil
}

// Done reports whether the timer has rung.
func (t Timer) Done() bool {
	return t.State == StateRinging
}

// ActiveRemaining is the time left in the current phase.
func (t Timer) ActiveRemaining() time.Duration {
	if t.State.Rest() {
		return t.RemainingRest
	}
	return t.RemainingMain
}

func (t *Timer) setActiveRemaining(d time.Duration) {
	if t.State.Rest() {
		t.RemainingRest = d
		return
	}
	t.RemainingMain = d
}

// NextWakeOffset returns the time until the active phase ends. It is false
// for paused and ringing timers, which have nothing to wake for.
func (t Timer) NextWakeOffset() (time.Duration, bool) {
	if !t.State.Running() {
		return 0, false
	}
	return t.ActiveRemaining(), true
}

// Tick is the granular driver: it takes elapsed off the active counter and
// crosses the boundary once the counter is exhausted. The counters are reset
// to their configured values, never carrying a deficit. It reports whether
// the timer is ringing.
func (t *Timer) Tick(elapsed time.Duration) (Event, bool) {
	if !t.State.Running() || elapsed <= 0 {
		return Event{}, t.Done()
	}
	left := t.ActiveRemaining() - elapsed
	if left > 0 {
		t.setActiveRemaining(left)
		return Event{}, false
	}
	ev := t.crossBoundary()
	return ev, t.Done()
}

// BoundaryFired is the jump driver: the whole remaining active phase is known
// to have elapsed. Calling it on a ringing timer changes nothing and reports
// true again.
func (t *Timer) BoundaryFired() (Event, bool) {
	if !t.State.Running() {
		return Event{}, t.Done()
	}
	ev := t.crossBoundary()
	return ev, t.Done()
}

// crossBoundary applies the transition table. Both drivers go through here.
func (t *Timer) crossBoundary() Event {
	switch t.State {
	case StateCounting:
		if t.CurrentRepetition >= t.TotalRepetitions {
			t.RemainingMain = 0
			t.State = StateRinging
			return newEvent(EventRang, t)
		}
		t.RemainingMain = t.MainDuration
		if t.RestDuration > 0 {
			t.RemainingRest = t.RestDuration
			t.State = StateRestCounting
			return newEvent(EventRestBegan, t)
		}
		t.CurrentRepetition++
		return newEvent(EventNone, t)
	case StateRestCounting:
		// A rest phase never ends the timer.
		t.RemainingRest = t.RestDuration
		t.RemainingMain = t.MainDuration
		t.CurrentRepetition++
		t.State = StateCounting
		return newEvent(EventRestEnded, t)
	}
	return Event{}
}

// Pause freezes the active counter. It reports whether anything changed.
func (t *Timer) Pause() bool {
	switch t.State {
	case StateCounting:
		t.State = StatePaused
	case StateRestCounting:
		t.State = StateRestPaused
	default:
		return false
	}
	return true
}

// Resume restarts a paused counter where it stopped.
func (t *Timer) Resume() bool {
	switch t.State {
	case StatePaused:
		t.State = StateCounting
	case StateRestPaused:
		t.State = StateRestCounting
	default:
		return false
	}
	return true
}
