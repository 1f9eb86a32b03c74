// Package notify holds the notification sinks a host can surface timer events
// through.
package notify

import (
	"fmt"

	"multitimer/internal/domain"
)

// Sink names accepted by New.
const (
	SinkOSAScript = "osascript"
	SinkLog       = "log"
	SinkNoop      = "noop"
)

// New returns the sink registered under name.
func New(name string) (domain.NotificationSink, error) {
	switch name {
	case SinkOSAScript:
		return NewAppleScriptSink(), nil
	case SinkLog, "":
		return NewLogSink(), nil
	case SinkNoop, "none":
		return NewNoopSink(), nil
	}
	return nil, fmt.Errorf("unknown notifier %q", name)
}
