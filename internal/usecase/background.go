package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"multitimer/internal/codec"
	"multitimer/internal/domain"
	"multitimer/internal/logging"
)

// BackgroundAlarmBridge keeps timers alive while the host is suspended. Each
// running timer has exactly one outstanding precise wake; the wake payload
// carries the timer snapshot so a delivery can rebuild it without any other
// state.
type BackgroundAlarmBridge struct {
	clock      clockwork.Clock
	unit       time.Duration
	alarms     domain.AlarmScheduler
	sink       domain.NotificationSink
	foreground func() bool
	onEvent    func(domain.Event)
	onRing     func(domain.Timer)

	mu      sync.Mutex
	tracked map[int]*trackedWake
}

// trackedWake is the bridge's view of one timer. Counters in timer were exact
// at anchor. due is zero while the timer is parked (paused).
type trackedWake struct {
	timer  domain.Timer
	anchor time.Time
	due    time.Time
	token  string
}

// BridgeOption customizes a BackgroundAlarmBridge.
type BridgeOption func(*BackgroundAlarmBridge)

// WithForeground tells the bridge how to learn whether the host is visible.
// Notifications are only sent while it reports false.
func WithForeground(fn func() bool) BridgeOption {
	return func(b *BackgroundAlarmBridge) { b.foreground = fn }
}

// WithEventHook receives every visible event, notified or not.
func WithEventHook(fn func(domain.Event)) BridgeOption {
	return func(b *BackgroundAlarmBridge) { b.onEvent = fn }
}

// WithRingHook receives timers that stopped being tracked because they rang.
func WithRingHook(fn func(domain.Timer)) BridgeOption {
	return func(b *BackgroundAlarmBridge) { b.onRing = fn }
}

// NewBackgroundAlarmBridge wires the bridge to the wake facility and sink.
func NewBackgroundAlarmBridge(c clockwork.Clock, alarms domain.AlarmScheduler, sink domain.NotificationSink, opts ...BridgeOption) *BackgroundAlarmBridge {
	b := &BackgroundAlarmBridge{
		clock:      c,
		unit:       domain.TickUnit,
		alarms:     alarms,
		sink:       sink,
		foreground: func() bool { return false },
		tracked:    make(map[int]*trackedWake),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// outcome collects what must happen after the bridge lock is released.
type outcome struct {
	events []domain.Event
	rung   []domain.Timer
}

// Schedule takes over t with its counters exact as of now and arms its next
// wake, superseding any wake already outstanding for the same id. A first
// boundary no more than one unit away is crossed immediately.
func (b *BackgroundAlarmBridge) Schedule(t domain.Timer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	now := b.clock.Now()

	b.mu.Lock()
	var out outcome
	b.armLocked(t, now, now, b.unit, &out)
	b.mu.Unlock()

	b.dispatch(out)
	return nil
}

// HandleWake processes one delivered wake. Deliveries whose token is not the
// one outstanding for the timer are stale and ignored; a delivery before its
// due instant is re-armed for that instant without a transition.
func (b *BackgroundAlarmBridge) HandleWake(id int, payload []byte) {
	w, err := codec.DecodeWake(payload)
	if err != nil {
		logging.Warnf("wake for timer %d dropped: %v", id, err)
		return
	}
	if w.Timer.ID != id {
		logging.Warnf("wake for timer %d carries timer %d; dropped", id, w.Timer.ID)
		return
	}
	now := b.clock.Now()

	b.mu.Lock()
	tr, ok := b.tracked[id]
	if !ok || tr.token != w.Token {
		b.mu.Unlock()
		logging.Debugf("stale wake for timer %d ignored", id)
		return
	}
	if early := w.DueAt.Sub(now); early > 0 {
		// The facility woke us too soon; ask again for the same instant.
		b.mu.Unlock()
		logging.Debugf("wake for timer %d arrived %s early; rescheduled", id, early)
		if err := b.alarms.Schedule(id, w.DueAt, payload); err != nil {
			logging.Errorf("reschedule wake for timer %d: %v", id, err)
		}
		return
	}
	logging.Tracef("wake for timer %d at %s (due %s)", id, now.Format(time.RFC3339), w.DueAt.Format(time.RFC3339))
	var out outcome
	b.armLocked(w.Timer, w.Anchor, now, 0, &out)
	b.mu.Unlock()

	b.dispatch(out)
}

// Release stops tracking a timer and returns it with counters settled to now,
// ready for the granular driver.
func (b *BackgroundAlarmBridge) Release(id int) (domain.Timer, bool) {
	now := b.clock.Now()

	b.mu.Lock()
	tr, ok := b.tracked[id]
	if !ok {
		b.mu.Unlock()
		return domain.Timer{}, false
	}
	t, out := b.releaseLocked(id, tr, now)
	b.mu.Unlock()

	b.dispatch(out)
	return t, true
}

// ReleaseAll hands every tracked timer back, ordered by id.
func (b *BackgroundAlarmBridge) ReleaseAll() []domain.Timer {
	now := b.clock.Now()

	b.mu.Lock()
	var (
		all []domain.Timer
		out outcome
	)
	for _, id := range b.idsLocked() {
		t, o := b.releaseLocked(id, b.tracked[id], now)
		all = append(all, t)
		out.events = append(out.events, o.events...)
	}
	b.mu.Unlock()

	b.dispatch(out)
	return all
}

// Cancel forgets a timer and cancels its outstanding wake.
func (b *BackgroundAlarmBridge) Cancel(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tracked[id]; !ok {
		return false
	}
	delete(b.tracked, id)
	b.alarms.Cancel(id)
	return true
}

// Pause settles a tracked timer, freezes it and cancels its wake. The timer
// stays tracked until resumed, released or cancelled.
func (b *BackgroundAlarmBridge) Pause(id int) bool {
	now := b.clock.Now()

	b.mu.Lock()
	tr, ok := b.tracked[id]
	if !ok || tr.due.IsZero() {
		b.mu.Unlock()
		return false
	}
	b.alarms.Cancel(id)
	var out outcome
	t := tr.timer
	out.events = t.SettleAt(tr.anchor, now)
	paused := t.Pause()
	if t.Done() {
		delete(b.tracked, id)
		out.rung = append(out.rung, t)
	} else {
		b.tracked[id] = &trackedWake{timer: t, anchor: now}
	}
	b.mu.Unlock()

	b.dispatch(out)
	return paused
}

// Resume re-arms a parked timer from now.
func (b *BackgroundAlarmBridge) Resume(id int) bool {
	now := b.clock.Now()

	b.mu.Lock()
	tr, ok := b.tracked[id]
	if !ok || !tr.due.IsZero() {
		b.mu.Unlock()
		return false
	}
	t := tr.timer
	if !t.Resume() {
		b.mu.Unlock()
		return false
	}
	var out outcome
	b.armLocked(t, now, now, b.unit, &out)
	b.mu.Unlock()

	b.dispatch(out)
	return true
}

// Timers returns the tracked timers as they stand now, ordered by id. Nothing
// is mutated and no events are emitted.
func (b *BackgroundAlarmBridge) Timers() []domain.Timer {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Timer, 0, len(b.tracked))
	for _, id := range b.idsLocked() {
		tr := b.tracked[id]
		t := tr.timer
		if !tr.due.IsZero() {
			t.SettleAt(tr.anchor, now)
		}
		out = append(out, t)
	}
	return out
}

// Has reports whether id is tracked, armed or parked.
func (b *BackgroundAlarmBridge) Has(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tracked[id]
	return ok
}

// Pending returns the instant of each outstanding wake keyed by timer id.
func (b *BackgroundAlarmBridge) Pending() map[int]time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]time.Time, len(b.tracked))
	for id, tr := range b.tracked {
		if !tr.due.IsZero() {
			out[id] = tr.due
		}
	}
	return out
}

// Adopt takes over wakes that outlived a previous process, catching up on any
// boundary that passed while nobody was listening. It returns the ids taken
// over.
func (b *BackgroundAlarmBridge) Adopt(wakes []domain.ScheduledWake) []int {
	now := b.clock.Now()
	var adopted []int

	b.mu.Lock()
	var out outcome
	for _, sw := range wakes {
		w, err := codec.DecodeWake(sw.Payload)
		if err != nil || w.Timer.ID != sw.ID {
			logging.Warnf("stored wake for timer %d dropped: %v", sw.ID, err)
			continue
		}
		b.armLocked(w.Timer, w.Anchor, now, 0, &out)
		adopted = append(adopted, sw.ID)
	}
	b.mu.Unlock()

	b.dispatch(out)
	return adopted
}

// armLocked advances t from anchor to now and either arms its next wake,
// parks it, or hands it to the ring hook. lead is non-zero only when a caller
// hands over a timer, never on a delivered wake.
func (b *BackgroundAlarmBridge) armLocked(t domain.Timer, anchor, now time.Time, lead time.Duration, out *outcome) {
	due, events := t.ScheduleFrom(anchor, now, lead)
	out.events = append(out.events, events...)

	switch {
	case t.Done():
		if _, ok := b.tracked[t.ID]; ok {
			b.alarms.Cancel(t.ID)
		}
		delete(b.tracked, t.ID)
		out.rung = append(out.rung, t)
		return
	case due.IsZero():
		if _, ok := b.tracked[t.ID]; ok {
			b.alarms.Cancel(t.ID)
		}
		b.tracked[t.ID] = &trackedWake{timer: t, anchor: now}
		return
	}

	w := codec.Wake{
		Token:  uuid.New().String(),
		Anchor: due.Add(-t.ActiveRemaining()),
		DueAt:  due,
		Timer:  t,
	}
	payload, err := codec.EncodeWake(w)
	if err != nil {
		logging.Errorf("encode wake for timer %d: %v", t.ID, err)
		return
	}
	b.tracked[t.ID] = &trackedWake{timer: t, anchor: w.Anchor, due: due, token: w.Token}
	if err := b.alarms.Schedule(t.ID, due, payload); err != nil {
		logging.Errorf("schedule wake for timer %d: %v", t.ID, err)
		return
	}
	logging.Debugf("timer %d (%s %d/%d) wakes at %s", t.ID, t.State, t.CurrentRepetition, t.TotalRepetitions, due.Format(time.RFC3339))
}

func (b *BackgroundAlarmBridge) releaseLocked(id int, tr *trackedWake, now time.Time) (domain.Timer, outcome) {
	var out outcome
	delete(b.tracked, id)
	t := tr.timer
	if tr.due.IsZero() {
		return t, out
	}
	b.alarms.Cancel(id)
	out.events = t.SettleAt(tr.anchor, now)
	return t, out
}

func (b *BackgroundAlarmBridge) dispatch(out outcome) {
	background := !b.foreground()
	for _, ev := range out.events {
		if background && b.sink != nil {
			if err := b.sink.Notify(ev); err != nil {
				logging.Warnf("notify timer %d %s: %v", ev.TimerID, ev.Kind, err)
			}
		}
		if b.onEvent != nil {
			b.onEvent(ev)
		}
	}
	for _, t := range out.rung {
		if b.onRing != nil {
			b.onRing(t)
		}
	}
}

func (b *BackgroundAlarmBridge) idsLocked() []int {
	ids := make([]int, 0, len(b.tracked))
	for id := range b.tracked {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
