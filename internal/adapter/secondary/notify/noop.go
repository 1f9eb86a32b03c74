package notify

import "multitimer/internal/domain"

// NoopSink implements domain.NotificationSink with no-op behavior.
// Useful for testing or headless environments.
type NoopSink struct{}

// NewNoopSink creates a new no-op notification sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

// Notify does nothing and always succeeds.
func (NoopSink) Notify(domain.Event) error {
	return nil
}
