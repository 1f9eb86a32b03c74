package domain

import "time"

// NotificationSink is a secondary port that surfaces phase-boundary events to
// the user while the owning application is not in the foreground.
type NotificationSink interface {
	Notify(event Event) error
}

// AlarmScheduler is a secondary port for the platform's precise one-shot wake
// facility. Scheduling an id that already has a pending wake supersedes it.
type AlarmScheduler interface {
	Schedule(id int, at time.Time, payload []byte) error
	Cancel(id int)
}

// ScheduledWake is one pending wake as held by the wake facility.
type ScheduledWake struct {
	ID      int
	At      time.Time
	Payload []byte
}

// WakeRepository persists the pending wakes of the alarm facility so they
// survive a restart of the hosting process.
type WakeRepository interface {
	Load() ([]ScheduledWake, error)
	Save(wakes []ScheduledWake) error
}
