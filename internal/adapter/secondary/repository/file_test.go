package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multitimer/internal/domain"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "nested", "wakes.json"))
	require.NoError(t, err)

	wakes, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, wakes)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wakes.json")
	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	in := []domain.ScheduledWake{
		{ID: 9, At: at.Add(time.Minute), Payload: []byte{0xa4, 0x01}},
		{ID: 2, At: at, Payload: []byte("payload")},
	}
	require.NoError(t, repo.Save(in))

	out, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].ID, "stored ordered by id")
	assert.True(t, at.Equal(out[0].At))
	assert.Equal(t, []byte("payload"), out[0].Payload)
	assert.Equal(t, []byte{0xa4, 0x01}, out[1].Payload)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wakes.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	repo, err := NewFileRepository(path)
	require.NoError(t, err)

	_, err = repo.Load()
	assert.Error(t, err)
}

func TestNewFileRepositoryRequiresPath(t *testing.T) {
	_, err := NewFileRepository("")
	assert.Error(t, err)
}
