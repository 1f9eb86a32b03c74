package config

import (
	"fmt"
	"net"

	"multitimer/internal/logging"
)

var notifiers = map[string]bool{"log": true, "osascript": true, "noop": true, "none": true}

// Normalize fills empty values with defaults and rejects invalid ones.
func Normalize(cfg Config) (Config, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return cfg, fmt.Errorf("addr must be host:port: %w", err)
	}
	if cfg.WakeStore == "" {
		cfg.WakeStore = DefaultWakeStorePath()
	}
	if cfg.Notifier == "" {
		cfg.Notifier = DefaultNotifier
	}
	if !notifiers[cfg.Notifier] {
		return cfg, fmt.Errorf("notifier must be one of log, osascript, noop; got %q", cfg.Notifier)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if _, _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}
