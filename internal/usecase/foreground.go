package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"multitimer/internal/domain"
	"multitimer/internal/logging"
)

// ForegroundScheduler owns the timers of a continuously resident host. One
// shared ticker drives every timer once per unit; it is created with the
// first timer and stopped when the last one leaves.
type ForegroundScheduler struct {
	clock   clockwork.Clock
	unit    time.Duration
	onEvent func(domain.Event)
	onRing  func(domain.Timer)

	mu     sync.Mutex
	timers map[int]*domain.Timer
	ticker clockwork.Ticker
	quit   chan struct{}
}

// NewForegroundScheduler creates an idle scheduler. onEvent receives every
// visible boundary event; onRing receives timers removed because they rang.
// Both run outside the scheduler's lock and may be nil.
func NewForegroundScheduler(c clockwork.Clock, unit time.Duration, onEvent func(domain.Event), onRing func(domain.Timer)) *ForegroundScheduler {
	return &ForegroundScheduler{
		clock:   c,
		unit:    unit,
		onEvent: onEvent,
		onRing:  onRing,
		timers:  make(map[int]*domain.Timer),
	}
}

// Add inserts t, replacing any timer with the same id.
func (s *ForegroundScheduler) Add(t domain.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[t.ID] = &t
	s.startLocked()
}

// Remove drops a timer. Unknown ids are ignored.
func (s *ForegroundScheduler) Remove(id int) bool {
	_, ok := s.Take(id)
	return ok
}

// Take removes a timer and hands it to the caller.
func (s *ForegroundScheduler) Take(id int) (domain.Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return domain.Timer{}, false
	}
	delete(s.timers, id)
	if len(s.timers) == 0 {
		s.stopLocked()
	}
	return *t, true
}

// TakeAll empties the scheduler, e.g. when the host moves to the background.
func (s *ForegroundScheduler) TakeAll() []domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Timer, 0, len(s.timers))
	for _, id := range s.idsLocked() {
		out = append(out, *s.timers[id])
	}
	clear(s.timers)
	s.stopLocked()
	return out
}

// Update applies fn to a resident timer. It reports whether the timer exists
// and fn changed it.
func (s *ForegroundScheduler) Update(id int, fn func(*domain.Timer) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	return fn(t)
}

// Has reports whether id is resident.
func (s *ForegroundScheduler) Has(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Timers returns copies of the resident timers ordered by id.
func (s *ForegroundScheduler) Timers() []domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Timer, 0, len(s.timers))
	for _, id := range s.idsLocked() {
		out = append(out, *s.timers[id])
	}
	return out
}

// Running reports whether the shared ticker is active.
func (s *ForegroundScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

// Tick runs one pass over every resident timer and drops those that rang.
func (s *ForegroundScheduler) Tick() {
	s.mu.Lock()
	events, rung := s.tickLocked()
	s.mu.Unlock()
	s.dispatch(events, rung)
}

// Stop halts the shared ticker without dropping timers.
func (s *ForegroundScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ForegroundScheduler) tickLocked() ([]domain.Event, []domain.Timer) {
	var (
		events []domain.Event
		rung   []domain.Timer
	)
	for _, id := range s.idsLocked() {
		t := s.timers[id]
		ev, done := t.Tick(s.unit)
		if ev.Kind != domain.EventNone {
			events = append(events, ev)
		}
		if done {
			rung = append(rung, *t)
			delete(s.timers, id)
		}
	}
	if len(s.timers) == 0 {
		s.stopLocked()
	}
	return events, rung
}

func (s *ForegroundScheduler) dispatch(events []domain.Event, rung []domain.Timer) {
	for _, ev := range events {
		logging.Debugf("foreground timer %d: %s (%d/%d)", ev.TimerID, ev.Kind, ev.CurrentRepetition, ev.TotalRepetitions)
		if s.onEvent != nil {
			s.onEvent(ev)
		}
	}
	for _, t := range rung {
		if s.onRing != nil {
			s.onRing(t)
		}
	}
}

func (s *ForegroundScheduler) idsLocked() []int {
	ids := make([]int, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *ForegroundScheduler) startLocked() {
	if s.ticker != nil {
		return
	}
	s.ticker = s.clock.NewTicker(s.unit)
	s.quit = make(chan struct{})
	logging.Debugf("foreground ticker started")
	go s.run(s.ticker, s.quit)
}

func (s *ForegroundScheduler) stopLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.quit)
	s.ticker = nil
	s.quit = nil
	logging.Debugf("foreground ticker stopped")
}

func (s *ForegroundScheduler) run(tk clockwork.Ticker, quit chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case <-tk.Chan():
			s.tickFrom(quit)
		}
	}
}

// tickFrom ignores ticks from a ticker that has since been replaced.
func (s *ForegroundScheduler) tickFrom(quit chan struct{}) {
	s.mu.Lock()
	if s.quit != quit {
		s.mu.Unlock()
		return
	}
	events, rung := s.tickLocked()
	s.mu.Unlock()
	s.dispatch(events, rung)
}
