package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, main, rest time.Duration, reps int) Timer {
	t.Helper()
	tm, err := New(Spec{ID: 7, Label: "plank", Main: main, Rest: rest, Repetitions: reps, ToneID: "beep", Vibrate: true})
	require.NoError(t, err)
	return tm
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

// tickN drives the granular driver n times and collects the visible events.
func tickN(tm *Timer, n int) []Event {
	var events []Event
	for i := 0; i < n; i++ {
		if ev, _ := tm.Tick(TickUnit); ev.Kind != EventNone {
			events = append(events, ev)
		}
	}
	return events
}

// jumpFor drives the jump driver across every boundary that falls within
// elapsed, the way a precise wake scheduled at each boundary would.
func jumpFor(tm *Timer, elapsed time.Duration) []Event {
	var events []Event
	for {
		offset, ok := tm.NextWakeOffset()
		if !ok || offset > elapsed {
			if ok {
				tm.RemainingMain, tm.RemainingRest = remainingAfter(tm, elapsed)
			}
			return events
		}
		elapsed -= offset
		if ev, _ := tm.BoundaryFired(); ev.Kind != EventNone {
			events = append(events, ev)
		}
	}
}

func remainingAfter(tm *Timer, elapsed time.Duration) (time.Duration, time.Duration) {
	if tm.State.Rest() {
		return tm.RemainingMain, tm.RemainingRest - elapsed
	}
	return tm.RemainingMain - elapsed, tm.RemainingRest
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"valid", Spec{Main: 5 * time.Second, Rest: 2 * time.Second, Repetitions: 2}, nil},
		{"no rest", Spec{Main: time.Second, Repetitions: 1}, nil},
		{"zero main", Spec{Main: 0, Repetitions: 1}, ErrInvalidDuration},
		{"sub-second main", Spec{Main: 1500 * time.Millisecond, Repetitions: 1}, ErrInvalidDuration},
		{"negative rest", Spec{Main: time.Second, Rest: -time.Second, Repetitions: 1}, ErrInvalidDuration},
		{"fractional rest", Spec{Main: time.Second, Rest: 500 * time.Millisecond, Repetitions: 1}, ErrInvalidDuration},
		{"zero repetitions", Spec{Main: time.Second, Repetitions: 0}, ErrInvalidRepetitions},
		{"negative id", Spec{ID: -1, Main: time.Second, Repetitions: 1}, ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := New(tt.spec)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StateCounting, tm.State)
			assert.Equal(t, 1, tm.CurrentRepetition)
			assert.Equal(t, tt.spec.Main, tm.RemainingMain)
			assert.Equal(t, tt.spec.Rest, tm.RemainingRest)
		})
	}
}

func TestSnapshotValidate(t *testing.T) {
	base := mustNew(t, 5*time.Second, 2*time.Second, 2)
	require.NoError(t, base.Validate())

	bad := []func(*Timer){
		func(tm *Timer) { tm.CurrentRepetition = 3 },
		func(tm *Timer) { tm.CurrentRepetition = 0 },
		func(tm *Timer) { tm.RemainingMain = 6 * time.Second },
		func(tm *Timer) { tm.RemainingRest = -time.Second },
		func(tm *Timer) { tm.State = State(42) },
		func(tm *Timer) { tm.State = StateRinging },
		func(tm *Timer) { tm.RestDuration, tm.RemainingRest, tm.State = 0, 0, StateRestCounting },
	}
	for i, mutate := range bad {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			tm := base
			mutate(&tm)
			assert.Error(t, tm.Validate())
		})
	}
}

func TestTickScenarioWithRest(t *testing.T) {
	tm := mustNew(t, 5*time.Second, 2*time.Second, 2)

	events := tickN(&tm, 5)
	require.Equal(t, []EventKind{EventRestBegan}, kinds(events))
	assert.Equal(t, StateRestCounting, tm.State)
	assert.Equal(t, 2*time.Second, tm.RemainingRest)

	events = tickN(&tm, 2)
	require.Equal(t, []EventKind{EventRestEnded}, kinds(events))
	assert.Equal(t, StateCounting, tm.State)
	assert.Equal(t, 2, tm.CurrentRepetition)
	assert.Equal(t, 5*time.Second, tm.RemainingMain)

	events = tickN(&tm, 5)
	require.Equal(t, []EventKind{EventRang}, kinds(events))
	assert.Equal(t, StateRinging, tm.State)
	assert.Equal(t, "plank", events[0].Label)
	assert.Equal(t, 2, events[0].CurrentRepetition)
	assert.Equal(t, 2, events[0].TotalRepetitions)
}

func TestTickWithoutRestNeverRests(t *testing.T) {
	for reps := 1; reps <= 4; reps++ {
		for main := 1; main <= 4; main++ {
			tm := mustNew(t, time.Duration(main)*time.Second, 0, reps)
			events := tickN(&tm, main*reps)
			assert.Equal(t, []EventKind{EventRang}, kinds(events), "main=%d reps=%d", main, reps)
			assert.Equal(t, StateRinging, tm.State)
			assert.Equal(t, reps, tm.CurrentRepetition)
		}
	}
}

func TestTickWithRestAlternates(t *testing.T) {
	for reps := 2; reps <= 5; reps++ {
		tm := mustNew(t, 3*time.Second, 2*time.Second, reps)
		events := tickN(&tm, 3*reps+2*(reps-1))

		var want []EventKind
		for i := 0; i < reps-1; i++ {
			want = append(want, EventRestBegan, EventRestEnded)
		}
		want = append(want, EventRang)
		assert.Equal(t, want, kinds(events), "reps=%d", reps)
		assert.True(t, tm.Done())
	}
}

func TestTickAndJumpAreEquivalent(t *testing.T) {
	configs := []struct {
		main, rest time.Duration
		reps       int
	}{
		{5 * time.Second, 2 * time.Second, 2},
		{3 * time.Second, 0, 3},
		{1 * time.Second, 1 * time.Second, 4},
		{4 * time.Second, 3 * time.Second, 1},
		{2 * time.Second, 5 * time.Second, 3},
	}
	for _, c := range configs {
		total := int((c.main*time.Duration(c.reps) + c.rest*time.Duration(c.reps-1)) / TickUnit)
		for n := 0; n <= total+2; n++ {
			name := fmt.Sprintf("%s/%s/%d/n=%d", c.main, c.rest, c.reps, n)
			ticked := mustNew(t, c.main, c.rest, c.reps)
			jumped := ticked

			tickEvents := tickN(&ticked, n)
			jumpEvents := jumpFor(&jumped, time.Duration(n)*TickUnit)

			assert.Equal(t, kinds(tickEvents), kinds(jumpEvents), name)
			assert.Equal(t, ticked.State, jumped.State, name)
			assert.Equal(t, ticked.CurrentRepetition, jumped.CurrentRepetition, name)
			assert.Equal(t, ticked.ActiveRemaining(), jumped.ActiveRemaining(), name)
		}
	}
}

func TestMixedDriversMatchTicking(t *testing.T) {
	ticked := mustNew(t, 5*time.Second, 2*time.Second, 3)
	mixed := ticked

	all := tickN(&ticked, 19)

	var got []Event
	got = append(got, tickN(&mixed, 3)...)
	// The remaining 2s of work are crossed by a jump.
	got = append(got, jumpFor(&mixed, 2*time.Second)...)
	got = append(got, tickN(&mixed, 4)...)
	got = append(got, jumpFor(&mixed, 10*time.Second)...)

	assert.Equal(t, kinds(all), kinds(got))
	assert.Equal(t, ticked.State, mixed.State)
	assert.Equal(t, ticked.CurrentRepetition, mixed.CurrentRepetition)
	assert.Equal(t, StateRinging, mixed.State)
}

func TestBoundaryFiredIsIdempotentWhenRinging(t *testing.T) {
	tm := mustNew(t, time.Second, 0, 1)
	ev, done := tm.BoundaryFired()
	require.True(t, done)
	require.Equal(t, EventRang, ev.Kind)

	for i := 0; i < 3; i++ {
		ev, done = tm.BoundaryFired()
		assert.True(t, done)
		assert.Equal(t, EventNone, ev.Kind)
		assert.Equal(t, 1, tm.CurrentRepetition)
		assert.Equal(t, StateRinging, tm.State)
	}
	_, done = tm.Tick(TickUnit)
	assert.True(t, done)
}

func TestPausedTimerIgnoresDrivers(t *testing.T) {
	tm := mustNew(t, 5*time.Second, 2*time.Second, 2)
	tickN(&tm, 2)
	require.True(t, tm.Pause())
	assert.False(t, tm.Pause())

	ev, done := tm.BoundaryFired()
	assert.False(t, done)
	assert.Equal(t, EventNone, ev.Kind)
	tickN(&tm, 10)
	assert.Equal(t, StatePaused, tm.State)
	assert.Equal(t, 3*time.Second, tm.RemainingMain)
	_, ok := tm.NextWakeOffset()
	assert.False(t, ok)

	require.True(t, tm.Resume())
	assert.Equal(t, StateCounting, tm.State)
	assert.Equal(t, 3*time.Second, tm.RemainingMain)

	tickN(&tm, 3)
	require.True(t, tm.Pause())
	assert.Equal(t, StateRestPaused, tm.State)
	require.True(t, tm.Resume())
	assert.Equal(t, StateRestCounting, tm.State)
}

func TestParseStateRoundTrip(t *testing.T) {
	for s := StateCounting; s <= StateRinging; s++ {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseState("Sleeping")
	assert.Error(t, err)
}
