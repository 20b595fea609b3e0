package tailer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherFiltersByPattern(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewFileWatcher(dir, "output_log_*.txt")
	require.NoError(t, err)
	defer watcher.Close()

	appendText(t, filepath.Join(dir, "other.log"), "x\n")
	appendText(t, filepath.Join(dir, "output_log_1.txt"), "y\n")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-watcher.Events():
			assert.Equal(t, "output_log_1.txt", filepath.Base(ev.Path))
			assert.NotEmpty(t, ev.Operation)
			return
		case <-deadline:
			t.Fatal("no event for matching file")
		}
	}
}

func TestFileWatcherMissingDir(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing"), "*.txt")
	assert.Error(t, err)
}
