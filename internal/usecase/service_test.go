package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"multitimer/internal/domain"
)

type serviceFixture struct {
	clk    *clockwork.FakeClock
	alarms *recordingAlarms
	sink   *recordingSink
	uc     TimerUseCase
	svc    *timerService
}

func newServiceFixture(t *testing.T, foreground bool) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		clk:    clockwork.NewFakeClockAt(t0),
		alarms: newRecordingAlarms(),
		sink:   &recordingSink{},
	}
	uc, err := NewTimerService(f.clk, f.alarms, f.sink, ServiceOptions{Foreground: foreground})
	require.NoError(t, err)
	f.uc = uc
	f.svc = uc.(*timerService)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	uc.Start(ctx)
	return f
}

func (f *serviceFixture) exec(t *testing.T, cmd Command) {
	t.Helper()
	require.NoError(t, f.uc.Execute(context.Background(), cmd))
}

func spec(id int, main, rest time.Duration, reps int) domain.Spec {
	return domain.Spec{ID: id, Label: "set", Main: main, Rest: rest, Repetitions: reps, ToneID: "bell"}
}

func TestNewTimerServiceRequiresPorts(t *testing.T) {
	_, err := NewTimerService(clockwork.NewRealClock(), nil, &recordingSink{}, ServiceOptions{})
	assert.Error(t, err)
}

func TestCreateInForegroundUsesTicker(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))

	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerForeground, views[0].Owner)
	assert.True(t, f.svc.fg.Running())
	assert.Zero(t, f.alarms.scheduled, "no wake while foregrounded")
}

func TestCreateInBackgroundSchedulesWake(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))

	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerBackground, views[0].Owner)
	assert.Equal(t, t0.Add(5*time.Second), views[0].WakeAt)
	assert.False(t, f.svc.fg.Running())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture(t, true)

	err := f.uc.Execute(context.Background(), CreateTimer(spec(1, 0, 0, 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	err = f.uc.Execute(context.Background(), CreateTimer(spec(1, time.Second, 0, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidRepetitions)
	err = f.uc.Execute(context.Background(), Command{Type: CommandCreateTimer, Data: "nope"})
	assert.Error(t, err)
	err = f.uc.Execute(context.Background(), Command{Type: "Explode"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	assert.Empty(t, f.uc.Timers())
}

func TestDuplicateCreateReplaces(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))
	f.svc.fg.Tick()
	f.exec(t, CreateTimer(spec(1, 9*time.Second, 0, 2)))

	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, 9*time.Second, views[0].Timer.RemainingMain)
	assert.Equal(t, 2, views[0].Timer.TotalRepetitions)
}

func TestUnknownIDCommandsAreNoOps(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))

	for _, typ := range []CommandType{CommandDeleteTimer, CommandStopTimer, CommandPauseTimer, CommandResumeTimer, CommandAcknowledge} {
		f.exec(t, ForTimer(typ, 99))
	}
	assert.Len(t, f.uc.Timers(), 1)
}

func TestDeleteCancelsPendingWake(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))
	w, ok := f.alarms.get(1)
	require.True(t, ok)

	f.exec(t, ForTimer(CommandDeleteTimer, 1))
	_, ok = f.alarms.get(1)
	assert.False(t, ok)

	f.clk.Advance(5 * time.Second)
	f.uc.HandleWake(1, w.payload)
	assert.Empty(t, f.sink.kinds(), "wake after delete is discarded")
	assert.Empty(t, f.uc.Timers())
}

func TestBackgroundTransitionPreservesElapsedTime(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 2*time.Second, 2)))
	f.svc.fg.Tick()
	f.svc.fg.Tick()

	f.exec(t, AppStateChanged(false))
	assert.False(t, f.uc.Foreground())
	assert.False(t, f.svc.fg.Running())
	w, ok := f.alarms.get(1)
	require.True(t, ok)
	assert.Equal(t, t0.Add(3*time.Second), w.at)

	f.clk.Advance(3 * time.Second)
	f.uc.HandleWake(1, f.alarms.take(t, 1).payload)
	assert.Equal(t, []domain.EventKind{domain.EventRestBegan}, f.sink.kinds())

	f.clk.Advance(time.Second)
	f.exec(t, AppStateChanged(true))
	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerForeground, views[0].Owner)
	assert.Equal(t, domain.StateRestCounting, views[0].Timer.State)
	assert.Equal(t, time.Second, views[0].Timer.RemainingRest)
	_, ok = f.alarms.get(1)
	assert.False(t, ok)

	for i := 0; i < 6; i++ {
		f.svc.fg.Tick()
	}
	assert.Equal(t, []domain.EventKind{domain.EventRestBegan}, f.sink.kinds(), "foreground events are not notified")

	views = f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerRinging, views[0].Owner)
	assert.Equal(t, f.clk.Now(), views[0].RangAt)

	events := f.uc.Events(0)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventRang, events[2].Event.Kind)
	assert.Len(t, f.uc.Events(events[1].Seq), 1)

	f.exec(t, ForTimer(CommandAcknowledge, 1))
	assert.Empty(t, f.uc.Timers())
}

func TestForegroundingRingsOverdueTimer(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))

	f.clk.Advance(time.Minute)
	f.exec(t, AppStateChanged(true))

	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerRinging, views[0].Owner)
	assert.Empty(t, f.sink.kinds(), "the host is visible again")
}

func TestPauseResumeAcrossDrivers(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 10*time.Second, 0, 1)))
	f.clk.Advance(4 * time.Second)

	f.exec(t, ForTimer(CommandPauseTimer, 1))
	assert.Empty(t, f.alarms.pending)
	f.exec(t, AppStateChanged(true))
	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, domain.StatePaused, views[0].Timer.State)
	assert.Equal(t, 6*time.Second, views[0].Timer.RemainingMain)

	f.exec(t, ForTimer(CommandResumeTimer, 1))
	f.svc.fg.Tick()
	views = f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, domain.StateCounting, views[0].Timer.State)
	assert.Equal(t, 5*time.Second, views[0].Timer.RemainingMain)
}

func TestScheduleWakeCommand(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(2, 30*time.Second, 0, 1)))

	snap := f.uc.Timers()[0].Timer
	snap.RemainingMain = 12 * time.Second
	f.exec(t, ScheduleWake(snap))

	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerBackground, views[0].Owner)
	assert.Equal(t, t0.Add(12*time.Second), views[0].WakeAt)

	snap.State = domain.StateRinging
	f.exec(t, ScheduleWake(snap))
	assert.Equal(t, OwnerRinging, f.uc.Timers()[0].Owner)

	snap.CurrentRepetition = 0
	err := f.uc.Execute(context.Background(), ScheduleWake(snap))
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestSendIsFireAndForget(t *testing.T) {
	f := newServiceFixture(t, true)
	for i := 1; i <= 40; i++ {
		f.uc.Send(CreateTimer(spec(i, time.Minute, 0, 1)))
	}
	require.Eventually(t, func() bool { return len(f.uc.Timers()) == 40 }, time.Second, time.Millisecond)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	f := newServiceFixture(t, true)
	got := make(chan FeedEntry, 4)
	cancel := f.uc.Subscribe(func(e FeedEntry) { got <- e })

	f.exec(t, CreateTimer(spec(1, time.Second, 0, 1)))
	f.svc.fg.Tick()

	select {
	case e := <-got:
		assert.Equal(t, domain.EventRang, e.Event.Kind)
		assert.Equal(t, "bell", e.Event.ToneID)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	cancel()
}

func TestExecuteAfterStop(t *testing.T) {
	uc, err := NewTimerService(clockwork.NewFakeClockAt(t0), newRecordingAlarms(), &recordingSink{}, ServiceOptions{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	uc.Start(ctx)
	cancel()

	require.Eventually(t, func() bool {
		return uc.Execute(context.Background(), AppStateChanged(true)) == ErrStopped
	}, time.Second, time.Millisecond)
}

func TestRestoreAdoptsStoredWakes(t *testing.T) {
	prev := newServiceFixture(t, false)
	prev.exec(t, CreateTimer(spec(1, 10*time.Second, 0, 1)))
	prev.exec(t, CreateTimer(spec(2, 3*time.Second, 0, 1)))
	var stored []domain.ScheduledWake
	for _, id := range []int{1, 2} {
		w, ok := prev.alarms.get(id)
		require.True(t, ok)
		stored = append(stored, domain.ScheduledWake{ID: id, At: w.at, Payload: w.payload})
	}

	f := newServiceFixture(t, true)
	f.clk.Advance(4 * time.Second)
	assert.Equal(t, 2, f.uc.Restore(stored))

	views := f.uc.Timers()
	require.Len(t, views, 2)
	assert.Equal(t, OwnerForeground, views[0].Owner)
	assert.Equal(t, 6*time.Second, views[0].Timer.RemainingMain)
	assert.Equal(t, OwnerRinging, views[1].Owner, "overdue while nobody listened")
	_, ok := f.alarms.get(1)
	assert.False(t, ok)
}

func TestForegroundingMidShortRest(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 2*time.Second, time.Second, 2)))

	f.clk.Advance(2 * time.Second)
	f.uc.HandleWake(1, f.alarms.take(t, 1).payload)
	w, ok := f.alarms.get(1)
	require.True(t, ok)
	assert.Equal(t, t0.Add(3*time.Second), w.at)

	f.clk.Advance(500 * time.Millisecond)
	f.exec(t, AppStateChanged(true))
	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerForeground, views[0].Owner)
	assert.Equal(t, domain.StateRestCounting, views[0].Timer.State)
	assert.Equal(t, time.Second, views[0].Timer.RemainingRest, "half a unit left shows as a whole one")

	f.svc.fg.Tick()
	views = f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, domain.StateCounting, views[0].Timer.State)
	assert.Equal(t, 2, views[0].Timer.CurrentRepetition)

	f.svc.fg.Tick()
	f.svc.fg.Tick()
	views = f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerRinging, views[0].Owner)

	var got []domain.EventKind
	for _, e := range f.uc.Events(0) {
		got = append(got, e.Event.Kind)
	}
	assert.Equal(t, []domain.EventKind{domain.EventRestBegan, domain.EventRestEnded, domain.EventRang}, got)
}

func TestCreateAssignsFreeIDs(t *testing.T) {
	f := newServiceFixture(t, true)
	ctx := context.Background()

	id, err := f.uc.Create(ctx, spec(5, time.Minute, 0, 1), false)
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	id, err = f.uc.Create(ctx, spec(0, time.Minute, 0, 1), true)
	require.NoError(t, err)
	assert.Equal(t, 6, id)

	const n = 30
	ids := make(chan int, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			id, err := f.uc.Create(ctx, spec(1, time.Minute, 0, 1), true)
			ids <- id
			return err
		})
	}
	require.NoError(t, g.Wait())
	close(ids)
	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, f.uc.Timers(), n+2)

	_, err = f.uc.Create(ctx, spec(0, 0, 0, 1), true)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestLateRingAfterDeleteIsDropped(t *testing.T) {
	f := newServiceFixture(t, true)
	f.exec(t, CreateTimer(spec(1, time.Second, 0, 1)))
	done := f.uc.Timers()[0].Timer
	done.Tick(time.Second)
	require.True(t, done.Done())

	// The ticker removed the timer and is about to report it when the
	// delete lands first.
	f.exec(t, ForTimer(CommandDeleteTimer, 1))
	f.svc.ring(done)
	assert.Empty(t, f.uc.Timers())

	// A replacement under the same id is not shadowed by the old ring.
	f.exec(t, CreateTimer(spec(1, time.Minute, 0, 1)))
	f.svc.ring(done)
	views := f.uc.Timers()
	require.Len(t, views, 1)
	assert.Equal(t, OwnerForeground, views[0].Owner)
	assert.Equal(t, time.Minute, views[0].Timer.RemainingMain)
}

func TestAcknowledgedIDStaysDead(t *testing.T) {
	f := newServiceFixture(t, false)
	f.exec(t, CreateTimer(spec(1, 5*time.Second, 0, 1)))
	f.clk.Advance(5 * time.Second)
	f.uc.HandleWake(1, f.alarms.take(t, 1).payload)
	views := f.uc.Timers()
	require.Len(t, views, 1)
	require.Equal(t, OwnerRinging, views[0].Owner)

	f.exec(t, ForTimer(CommandAcknowledge, 1))
	f.svc.ring(views[0].Timer)
	assert.Empty(t, f.uc.Timers())
}
