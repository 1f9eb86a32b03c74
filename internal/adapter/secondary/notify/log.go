package notify

import (
	"multitimer/internal/domain"
	"multitimer/internal/logging"
)

// LogSink writes notifications to the structured log. Useful on hosts without
// a notification center.
type LogSink struct{}

// NewLogSink creates a new log notification sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Notify logs ev at warn level so it shows without -v.
func (LogSink) Notify(ev domain.Event) error {
	m := Format(ev)
	logging.Logger().Warn("notification",
		"id", ev.TimerID,
		"kind", string(ev.Kind),
		"title", m.Title,
		"body", m.Body,
		"sound", m.Sound,
		"vibrate", m.Vibrate,
	)
	return nil
}
