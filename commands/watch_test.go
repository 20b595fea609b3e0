package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/testing/fixtures"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchConfigValidate(t *testing.T) {
	logDir := t.TempDir()
	config := &WatchConfig{LogDir: logDir, ArchiveDir: filepath.Join(t.TempDir(), "out")}
	require.NoError(t, config.Validate())

	assert.Equal(t, model.DefaultLogPattern, config.Pattern)
	assert.Equal(t, time.Second, config.LineWait)
	assert.Equal(t, 3*time.Second, config.RescanWait)
	assert.Equal(t, 3*time.Second, config.RetryWait)

	same := &WatchConfig{LogDir: logDir, ArchiveDir: logDir}
	assert.Error(t, same.Validate())

	bad := &WatchConfig{LogDir: logDir, Pattern: "output_[", ArchiveDir: t.TempDir()}
	assert.Error(t, bad.Validate())
}

func TestWatchArchivesNewBackups(t *testing.T) {
	logDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "SaveCode")

	config := &WatchConfig{
		LogDir:     logDir,
		ArchiveDir: archiveDir,
		LineWait:   10 * time.Millisecond,
		RescanWait: 10 * time.Millisecond,
		RetryWait:  10 * time.Millisecond,
		Notify:     true,
	}
	require.NoError(t, config.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, config, out) }()

	ts := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	_, err := fixtures.NewLogGenerator(logDir).WriteLog(fixtures.FileName(ts),
		fixtures.BackupLine(ts, "ABC123"),
		fixtures.BackupLine(ts.Add(time.Minute), "ABC123"),
	)
	require.NoError(t, err)

	archived := filepath.Join(archiveDir, "2026-02-03.txt")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "New backup 2026-02-03 12:00:00")
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "[2026-02-03 12:00:00]\nABC123\n"+strings.Repeat("-", 40)+"\n", string(data))
	assert.Equal(t, 1, strings.Count(out.String(), "New backup"))
	assert.Contains(t, out.String(), "1 new backups archived")
}
