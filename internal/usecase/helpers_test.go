package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multitimer/internal/codec"
	"multitimer/internal/domain"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type scheduledWake struct {
	at      time.Time
	payload []byte
}

// recordingAlarms is an in-memory wake facility: it keeps the latest wake per
// id and delivers only when told to.
type recordingAlarms struct {
	mu        sync.Mutex
	pending   map[int]scheduledWake
	scheduled int
	cancelled []int
}

func newRecordingAlarms() *recordingAlarms {
	return &recordingAlarms{pending: make(map[int]scheduledWake)}
}

func (a *recordingAlarms) Schedule(id int, at time.Time, payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[id] = scheduledWake{at: at, payload: payload}
	a.scheduled++
	return nil
}

func (a *recordingAlarms) Cancel(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, id)
	a.cancelled = append(a.cancelled, id)
}

func (a *recordingAlarms) get(id int) (scheduledWake, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.pending[id]
	return w, ok
}

// take removes and returns the pending wake for id, as a delivery would.
func (a *recordingAlarms) take(t *testing.T, id int) scheduledWake {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.pending[id]
	require.True(t, ok, "no wake pending for timer %d", id)
	delete(a.pending, id)
	return w
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Notify(ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) kinds() []domain.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kinds(s.events)
}

func kinds(events []domain.Event) []domain.EventKind {
	out := make([]domain.EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTimer(t *testing.T, id int, main, rest time.Duration, reps int) domain.Timer {
	t.Helper()
	tm, err := domain.New(domain.Spec{ID: id, Label: "work", Main: main, Rest: rest, Repetitions: reps})
	require.NoError(t, err)
	return tm
}

func decode(t *testing.T, payload []byte) codec.Wake {
	t.Helper()
	w, err := codec.DecodeWake(payload)
	require.NoError(t, err)
	return w
}
