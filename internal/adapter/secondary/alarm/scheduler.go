// Package alarm provides the precise one-shot wake facility for hosts that
// stay alive while the user interface is away. Each timer id has at most one
// pending wake; scheduling again replaces it.
package alarm

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"multitimer/internal/domain"
	"multitimer/internal/logging"
)

// WakeFunc receives a delivered wake.
type WakeFunc func(id int, payload []byte)

// Scheduler implements domain.AlarmScheduler on top of Clock.AfterFunc.
// Pending wakes are mirrored to an optional repository so a restarted
// process can adopt them.
type Scheduler struct {
	clock clockwork.Clock
	repo  domain.WakeRepository

	mu      sync.Mutex
	pending map[int]*pendingWake
	onWake  WakeFunc
}

type pendingWake struct {
	at      time.Time
	payload []byte
	timer   clockwork.Timer
}

// NewScheduler creates an empty scheduler. repo may be nil.
func NewScheduler(c clockwork.Clock, repo domain.WakeRepository) *Scheduler {
	return &Scheduler{
		clock:   c,
		repo:    repo,
		pending: make(map[int]*pendingWake),
	}
}

// OnWake sets the delivery callback. It is called outside the scheduler's
// lock and may schedule again.
func (s *Scheduler) OnWake(fn WakeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWake = fn
}

// Schedule arms a wake for id at the given instant, stopping any wake already
// pending for it.
func (s *Scheduler) Schedule(id int, at time.Time, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[id]; ok {
		old.timer.Stop()
	}
	w := &pendingWake{at: at, payload: append([]byte(nil), payload...)}
	w.timer = s.clock.AfterFunc(at.Sub(s.clock.Now()), func() { s.fire(id, w) })
	s.pending[id] = w
	logging.Tracef("alarm %d armed for %s", id, at.Format(time.RFC3339Nano))
	return s.persistLocked()
}

// Cancel stops the pending wake for id, if any.
func (s *Scheduler) Cancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.pending[id]
	if !ok {
		return
	}
	w.timer.Stop()
	delete(s.pending, id)
	if err := s.persistLocked(); err != nil {
		logging.Warnf("alarm %d: %v", id, err)
	}
}

// Pending lists the armed wakes ordered by id.
func (s *Scheduler) Pending() []domain.ScheduledWake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Stored returns the wakes a previous process left in the repository.
func (s *Scheduler) Stored() ([]domain.ScheduledWake, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.Load()
}

// Sync rewrites the repository from the wakes currently armed. A restored
// process calls it once adoption is done so wakes that were consumed on
// restore are not offered again on the next start.
func (s *Scheduler) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Close stops every pending wake but leaves the repository untouched, so the
// wakes can be adopted after a restart.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.pending {
		w.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) fire(id int, w *pendingWake) {
	s.mu.Lock()
	if s.pending[id] != w {
		// Replaced or cancelled after the timer had already fired.
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	if err := s.persistLocked(); err != nil {
		logging.Warnf("alarm %d: %v", id, err)
	}
	fn := s.onWake
	s.mu.Unlock()

	if fn == nil {
		logging.Warnf("alarm %d fired with no receiver", id)
		return
	}
	fn(id, w.payload)
}

func (s *Scheduler) snapshotLocked() []domain.ScheduledWake {
	out := make([]domain.ScheduledWake, 0, len(s.pending))
	for id, w := range s.pending {
		out = append(out, domain.ScheduledWake{ID: id, At: w.at, Payload: w.payload})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Scheduler) persistLocked() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(s.snapshotLocked())
}
