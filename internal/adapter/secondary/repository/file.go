package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"multitimer/internal/domain"
)

// FileRepository implements domain.WakeRepository using a JSON file.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a new file-based wake repository.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create wake dir: %w", err)
	}

	return &FileRepository{path: path}, nil
}

// persistedWake represents one entry of the JSON document on disk.
type persistedWake struct {
	ID      int    `json:"id"`
	At      string `json:"at"`
	Payload string `json:"payload"`
}

type persistedData struct {
	Wakes []persistedWake `json:"wakes"`
}

// Load reads pending wakes from disk. A missing file means none.
func (f *FileRepository) Load() ([]domain.ScheduledWake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read wakes: %w", err)
	}

	var persisted persistedData
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("unmarshal wakes: %w", err)
	}

	wakes := make([]domain.ScheduledWake, 0, len(persisted.Wakes))
	for _, p := range persisted.Wakes {
		at, err := time.Parse(time.RFC3339Nano, p.At)
		if err != nil {
			return nil, fmt.Errorf("wake %d: %w", p.ID, err)
		}
		payload, err := base64.StdEncoding.DecodeString(p.Payload)
		if err != nil {
			return nil, fmt.Errorf("wake %d: %w", p.ID, err)
		}
		wakes = append(wakes, domain.ScheduledWake{ID: p.ID, At: at, Payload: payload})
	}
	return wakes, nil
}

// Save replaces the stored wakes.
func (f *FileRepository) Save(wakes []domain.ScheduledWake) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	persisted := persistedData{Wakes: make([]persistedWake, 0, len(wakes))}
	for _, w := range wakes {
		persisted.Wakes = append(persisted.Wakes, persistedWake{
			ID:      w.ID,
			At:      w.At.Format(time.RFC3339Nano),
			Payload: base64.StdEncoding.EncodeToString(w.Payload),
		})
	}
	sort.Slice(persisted.Wakes, func(i, j int) bool { return persisted.Wakes[i].ID < persisted.Wakes[j].ID })

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wakes: %w", err)
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}

	return nil
}

