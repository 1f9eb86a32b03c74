package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"multitimer/internal/domain"
	"multitimer/internal/logging"
)

var (
	// ErrStopped is returned by Execute once the service loop has exited.
	ErrStopped = errors.New("timer service stopped")

	// ErrUnknownCommand is returned for a command type the loop does not know.
	ErrUnknownCommand = errors.New("unknown command")
)

// TimerUseCase is the primary port for timer operations.
type TimerUseCase interface {
	Start(ctx context.Context)
	Send(cmd Command)
	Execute(ctx context.Context, cmd Command) error
	Create(ctx context.Context, spec domain.Spec, autoID bool) (int, error)
	HandleWake(id int, payload []byte)
	Restore(wakes []domain.ScheduledWake) int
	Timers() []TimerView
	Events(after uint64) []FeedEntry
	Subscribe(fn func(FeedEntry)) (cancel func())
	Foreground() bool
}

// ServiceOptions tune a TimerUseCase.
type ServiceOptions struct {
	// Foreground is the initial host visibility.
	Foreground bool
	// FeedSize bounds the number of retained events.
	FeedSize int
}

// timerService implements TimerUseCase. Commands are applied one at a time
// by a single loop; the drivers it delegates to are safe for their own
// concurrent callbacks.
type timerService struct {
	clock clockwork.Clock
	fg    *ForegroundScheduler
	bg    *BackgroundAlarmBridge
	feed  *eventFeed

	foreground atomic.Bool

	mu      sync.Mutex
	ringing map[int]ringingTimer
	// live holds every id created and not yet discarded or acknowledged.
	live map[int]bool

	cmdCh chan commandRequest
	done  chan struct{}
	once  sync.Once
}

type ringingTimer struct {
	timer domain.Timer
	at    time.Time
}

type commandRequest struct {
	cmd      Command
	resultCh chan commandResult
}

// commandResult reports the outcome of one command and the id it acted on.
type commandResult struct {
	id  int
	err error
}

// NewTimerService wires both drivers to the given secondary ports.
func NewTimerService(c clockwork.Clock, alarms domain.AlarmScheduler, sink domain.NotificationSink, opts ServiceOptions) (TimerUseCase, error) {
	if c == nil || alarms == nil || sink == nil {
		return nil, errors.New("clock, alarm scheduler and notification sink are required")
	}
	s := &timerService{
		clock:   c,
		feed:    newEventFeed(opts.FeedSize),
		ringing: make(map[int]ringingTimer),
		live:    make(map[int]bool),
		cmdCh:   make(chan commandRequest, 16),
		done:    make(chan struct{}),
	}
	s.foreground.Store(opts.Foreground)
	s.fg = NewForegroundScheduler(c, domain.TickUnit, s.publish, s.ring)
	s.bg = NewBackgroundAlarmBridge(c, alarms, sink,
		WithForeground(s.foreground.Load),
		WithEventHook(s.publish),
		WithRingHook(s.ring),
	)
	return s, nil
}

// Start runs the command loop until ctx is cancelled.
func (s *timerService) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *timerService) loop(ctx context.Context) {
	defer s.once.Do(func() { close(s.done) })
	defer s.fg.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.cmdCh:
			id, err := s.handle(req.cmd)
			if err != nil {
				logging.Warnf("%s: %v", req.cmd.Type, err)
			}
			if req.resultCh != nil {
				req.resultCh <- commandResult{id: id, err: err}
			}
		}
	}
}

// Send queues cmd without waiting for it to be applied.
func (s *timerService) Send(cmd Command) {
	req := commandRequest{cmd: cmd}
	select {
	case s.cmdCh <- req:
	default:
		go func() {
			select {
			case s.cmdCh <- req:
			case <-s.done:
			}
		}()
	}
}

// Execute queues cmd and waits until the loop has applied it.
func (s *timerService) Execute(ctx context.Context, cmd Command) error {
	_, err := s.execute(ctx, cmd)
	return err
}

// Create starts a timer and returns its id. With autoID the loop picks the
// next free id, so concurrent callers never collide.
func (s *timerService) Create(ctx context.Context, spec domain.Spec, autoID bool) (int, error) {
	return s.execute(ctx, Command{Type: CommandCreateTimer, Data: CreateTimerData{Spec: spec, AutoID: autoID}})
}

func (s *timerService) execute(ctx context.Context, cmd Command) (int, error) {
	ch := make(chan commandResult, 1)
	select {
	case s.cmdCh <- commandRequest{cmd: cmd, resultCh: ch}:
	case <-s.done:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case res := <-ch:
		return res.id, res.err
	case <-s.done:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// HandleWake forwards a delivered wake to the background bridge.
func (s *timerService) HandleWake(id int, payload []byte) {
	s.bg.HandleWake(id, payload)
}

// Restore takes over wakes persisted by a previous process. Call it before
// Start. A foregrounded host moves the restored timers onto the ticker.
func (s *timerService) Restore(wakes []domain.ScheduledWake) int {
	// Overdue wakes ring during adoption, so their ids must be live first.
	s.mu.Lock()
	for _, w := range wakes {
		s.live[w.ID] = true
	}
	s.mu.Unlock()
	ids := s.bg.Adopt(wakes)
	s.mu.Lock()
	for _, w := range wakes {
		if !slices.Contains(ids, w.ID) {
			delete(s.live, w.ID)
		}
	}
	s.mu.Unlock()
	if len(ids) > 0 {
		logging.Infof("restored %d pending wakes", len(ids))
	}
	if s.foreground.Load() {
		for _, id := range ids {
			if t, ok := s.bg.Release(id); ok {
				if err := s.place(t); err != nil {
					logging.Errorf("timer %d: %v", id, err)
				}
			}
		}
	}
	return len(ids)
}

// Foreground reports the last known host visibility.
func (s *timerService) Foreground() bool {
	return s.foreground.Load()
}

// Events returns retained events newer than after.
func (s *timerService) Events(after uint64) []FeedEntry {
	return s.feed.since(after)
}

// Subscribe registers fn for every future event.
func (s *timerService) Subscribe(fn func(FeedEntry)) func() {
	return s.feed.subscribe(fn)
}

// Timers lists every timer the service holds, ordered by id.
func (s *timerService) Timers() []TimerView {
	var views []TimerView
	for _, t := range s.fg.Timers() {
		views = append(views, TimerView{Timer: t, Owner: OwnerForeground})
	}
	pending := s.bg.Pending()
	for _, t := range s.bg.Timers() {
		views = append(views, TimerView{Timer: t, Owner: OwnerBackground, WakeAt: pending[t.ID]})
	}
	s.mu.Lock()
	for _, r := range s.ringing {
		views = append(views, TimerView{Timer: r.timer, Owner: OwnerRinging, RangAt: r.at})
	}
	s.mu.Unlock()
	sort.SliceStable(views, func(i, j int) bool { return views[i].Timer.ID < views[j].Timer.ID })
	return views
}

func (s *timerService) handle(cmd Command) (int, error) {
	switch cmd.Type {
	case CommandCreateTimer:
		d, ok := cmd.Data.(CreateTimerData)
		if !ok {
			return 0, badData(cmd)
		}
		if d.AutoID {
			d.Spec.ID = s.nextID()
		}
		t, err := domain.New(d.Spec)
		if err != nil {
			return 0, err
		}
		if s.discard(t.ID) {
			logging.Infof("timer %d replaced", t.ID)
		}
		s.markLive(t.ID)
		return t.ID, s.place(t)

	case CommandStopTimer, CommandDeleteTimer:
		d, ok := cmd.Data.(TimerIDData)
		if !ok {
			return 0, badData(cmd)
		}
		if !s.discard(d.ID) {
			logging.Infof("%s: no timer %d", cmd.Type, d.ID)
		}
		return d.ID, nil

	case CommandPauseTimer:
		d, ok := cmd.Data.(TimerIDData)
		if !ok {
			return 0, badData(cmd)
		}
		if !s.fg.Update(d.ID, (*domain.Timer).Pause) && !s.bg.Pause(d.ID) {
			logging.Infof("pause: timer %d not running", d.ID)
		}
		return d.ID, nil

	case CommandResumeTimer:
		d, ok := cmd.Data.(TimerIDData)
		if !ok {
			return 0, badData(cmd)
		}
		if !s.fg.Update(d.ID, (*domain.Timer).Resume) && !s.bg.Resume(d.ID) {
			logging.Infof("resume: timer %d not paused", d.ID)
		}
		return d.ID, nil

	case CommandAcknowledge:
		d, ok := cmd.Data.(TimerIDData)
		if !ok {
			return 0, badData(cmd)
		}
		s.mu.Lock()
		_, found := s.ringing[d.ID]
		if found {
			delete(s.ringing, d.ID)
			delete(s.live, d.ID)
		}
		s.mu.Unlock()
		if !found {
			logging.Infof("acknowledge: timer %d is not ringing", d.ID)
		}
		return d.ID, nil

	case CommandScheduleWake:
		d, ok := cmd.Data.(ScheduleWakeData)
		if !ok {
			return 0, badData(cmd)
		}
		if err := d.Timer.Validate(); err != nil {
			return 0, err
		}
		s.discard(d.Timer.ID)
		s.markLive(d.Timer.ID)
		if d.Timer.Done() {
			s.ring(d.Timer)
			return d.Timer.ID, nil
		}
		return d.Timer.ID, s.bg.Schedule(d.Timer)

	case CommandAppState:
		d, ok := cmd.Data.(AppStateData)
		if !ok {
			return 0, badData(cmd)
		}
		s.setForeground(d.Foreground)
		return 0, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Type)
}

// place hands a fresh timer to whichever driver matches the host state.
func (s *timerService) place(t domain.Timer) error {
	if t.Done() {
		s.ring(t)
		return nil
	}
	if s.foreground.Load() {
		s.fg.Add(t)
		return nil
	}
	return s.bg.Schedule(t)
}

// discard removes id from every collection and cancels its wake.
func (s *timerService) discard(id int) bool {
	found := s.fg.Remove(id)
	if s.bg.Cancel(id) {
		found = true
	}
	s.mu.Lock()
	if _, ok := s.ringing[id]; ok {
		delete(s.ringing, id)
		found = true
	}
	delete(s.live, id)
	s.mu.Unlock()
	return found
}

func (s *timerService) markLive(id int) {
	s.mu.Lock()
	s.live[id] = true
	s.mu.Unlock()
}

// nextID returns one past the highest id in use. Only the loop calls it.
func (s *timerService) nextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 1
	for id := range s.live {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// setForeground transfers every live timer wholesale to the driver that
// matches the new host state.
func (s *timerService) setForeground(fg bool) {
	if s.foreground.Swap(fg) == fg {
		return
	}
	if fg {
		for _, t := range s.bg.ReleaseAll() {
			if t.Done() {
				s.ring(t)
				continue
			}
			s.fg.Add(t)
		}
		logging.Infof("host foregrounded")
		return
	}
	for _, t := range s.fg.TakeAll() {
		if err := s.bg.Schedule(t); err != nil {
			logging.Errorf("timer %d: %v", t.ID, err)
		}
	}
	logging.Infof("host backgrounded")
}

func (s *timerService) publish(ev domain.Event) {
	s.feed.publish(s.clock.Now(), ev)
}

// ring parks a finished timer until it is acknowledged. Drivers call it
// outside the loop, so a ring that lost a race with a delete or a
// replacement of the same id is dropped.
func (s *timerService) ring(t domain.Timer) {
	if s.fg.Has(t.ID) || s.bg.Has(t.ID) {
		logging.Debugf("timer %d rang after being replaced; dropped", t.ID)
		return
	}
	s.mu.Lock()
	if !s.live[t.ID] {
		s.mu.Unlock()
		logging.Debugf("timer %d rang after being discarded; dropped", t.ID)
		return
	}
	s.ringing[t.ID] = ringingTimer{timer: t, at: s.clock.Now()}
	s.mu.Unlock()
	logging.Infof("timer %d (%s) is ringing", t.ID, t.Label)
}

func badData(cmd Command) error {
	return fmt.Errorf("%s: unexpected data %T", cmd.Type, cmd.Data)
}
