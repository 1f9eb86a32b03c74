package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the persisted settings shared by the CLI and the server.
type Config struct {
	// Addr is the HTTP listen address of `serve` and the target of client
	// commands.
	Addr string `yaml:"addr"`
	// WakeStore is the file holding pending wakes across restarts.
	WakeStore string `yaml:"wakeStore"`
	// Notifier selects the notification sink: log, osascript or noop.
	Notifier string `yaml:"notifier"`
	// StartForeground is the host visibility assumed at startup.
	StartForeground bool   `yaml:"startForeground"`
	LogLevel        string `yaml:"logLevel"`
}

var (
	// DefaultAddr is the loopback address the server binds to.
	DefaultAddr = "127.0.0.1:8787"
	// DefaultNotifier is used when none is configured.
	DefaultNotifier = "log"
)

// DefaultConfig returns the initial configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddr,
		WakeStore:       DefaultWakeStorePath(),
		Notifier:        DefaultNotifier,
		StartForeground: true,
		LogLevel:        "warn",
	}
}

// Store persists configuration to disk so the CLI and the server share it.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// FileStore implements Store using a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store under the supplied path. Parent directories are created automatically.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the configuration file or returns defaults if it does not exist.
// Fields missing from the file keep their defaults.
func (s *FileStore) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := DefaultConfig()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to disk atomically.
func (s *FileStore) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// Keys lists the settings addressable by Get and Set.
var Keys = []string{"addr", "wakeStore", "notifier", "startForeground", "logLevel"}

// Get returns one setting as text.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "addr":
		return c.Addr, nil
	case "wakeStore":
		return c.WakeStore, nil
	case "notifier":
		return c.Notifier, nil
	case "startForeground":
		return strconv.FormatBool(c.StartForeground), nil
	case "logLevel":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown key %q", key)
}

// Set parses value into one setting. The result is not normalized.
func (c *Config) Set(key, value string) error {
	switch key {
	case "addr":
		c.Addr = value
	case "wakeStore":
		c.WakeStore = value
	case "notifier":
		c.Notifier = value
	case "startForeground":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("startForeground: %w", err)
		}
		c.StartForeground = b
	case "logLevel":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
