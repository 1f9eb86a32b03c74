package config

import (
	"os"
	"path/filepath"
)

// DefaultPath returns ~/.config/multitimer/config.yaml (or a cwd fallback).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "multitimer", "config.yaml")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "multitimer-config.yaml")
}

// DefaultWakeStorePath returns ~/.local/state/multitimer/wakes.json (or a cwd
// fallback).
func DefaultWakeStorePath() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "multitimer", "wakes.json")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "multitimer-wakes.json")
}
