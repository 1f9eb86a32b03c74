package usecase

import (
	"time"

	"multitimer/internal/domain"
)

// CommandType names a message accepted by the timer service.
type CommandType string

const (
	CommandCreateTimer  CommandType = "CreateTimer"
	CommandStopTimer    CommandType = "StopTimer"
	CommandDeleteTimer  CommandType = "DeleteTimer"
	CommandPauseTimer   CommandType = "PauseTimer"
	CommandResumeTimer  CommandType = "ResumeTimer"
	CommandAcknowledge  CommandType = "Acknowledge"
	CommandScheduleWake CommandType = "ScheduleBackgroundWake"
	CommandAppState     CommandType = "AppStateChanged"
)

// Command is one message for the service loop. Data carries the payload type
// matching Type.
type Command struct {
	Type CommandType
	Data interface{}
}

// CreateTimerData starts a new timer; an existing timer with the same id is
// replaced. AutoID ignores Spec.ID and takes the next free id.
type CreateTimerData struct {
	Spec   domain.Spec
	AutoID bool
}

// TimerIDData addresses an existing timer.
type TimerIDData struct {
	ID int
}

// ScheduleWakeData hands a snapshot to the background bridge.
type ScheduleWakeData struct {
	Timer domain.Timer
}

// AppStateData reports a host visibility change.
type AppStateData struct {
	Foreground bool
}

// CreateTimer builds a CreateTimer command.
func CreateTimer(spec domain.Spec) Command {
	return Command{Type: CommandCreateTimer, Data: CreateTimerData{Spec: spec}}
}

// ForTimer builds an id-addressed command (stop, delete, pause, resume,
// acknowledge).
func ForTimer(typ CommandType, id int) Command {
	return Command{Type: typ, Data: TimerIDData{ID: id}}
}

// ScheduleWake builds a ScheduleBackgroundWake command.
func ScheduleWake(t domain.Timer) Command {
	return Command{Type: CommandScheduleWake, Data: ScheduleWakeData{Timer: t}}
}

// AppStateChanged builds an AppStateChanged command.
func AppStateChanged(foreground bool) Command {
	return Command{Type: CommandAppState, Data: AppStateData{Foreground: foreground}}
}

// Owner says which driver currently holds a timer.
type Owner string

const (
	OwnerForeground Owner = "foreground"
	OwnerBackground Owner = "background"
	OwnerRinging    Owner = "ringing"
)

// TimerView is one timer as listed by the service.
type TimerView struct {
	Timer  domain.Timer
	Owner  Owner
	WakeAt time.Time
	// RangAt is set for ringing timers awaiting acknowledgement.
	RangAt time.Time
}
