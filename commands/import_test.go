package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-mela-save-monitor/internal/application/backup"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/data/archive"
	"github.com/penwyp/go-mela-save-monitor/internal/testing/fixtures"
)

func newImportStore(t *testing.T) *archive.Store {
	t.Helper()
	store := archive.NewStore(filepath.Join(t.TempDir(), "SaveCode"))
	require.NoError(t, store.LoadAll())
	return store
}

func TestImportFiles(t *testing.T) {
	gen := fixtures.NewLogGenerator(t.TempDir())
	day1 := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)

	first, err := gen.WriteLog(fixtures.FileName(day1),
		fixtures.BackupLine(day1, "AAA"),
		fixtures.LogLine(day1.Add(time.Minute), "Log", model.BackupStartMarker+"multi"),
		"line"+model.BackupEndMarker,
	)
	require.NoError(t, err)
	second, err := gen.GenerateSession(day2, "AAA", "BBB")
	require.NoError(t, err)

	store := newImportStore(t)
	pipeline := backup.NewPipeline(store)

	added, err := importFiles(context.Background(), pipeline, []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, int64(3), added)
	assert.Equal(t, 3, store.Len())
	assert.True(t, store.Exists("multi\nline"))
	assert.Len(t, store.RecordsForDate("2026-02-04"), 1)

	added, err = importFiles(context.Background(), pipeline, []string{first, second})
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestImportFilesReportsMissing(t *testing.T) {
	dir := t.TempDir()
	good, err := fixtures.NewLogGenerator(dir).GenerateSession(time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC), "AAA")
	require.NoError(t, err)

	added, err := importFiles(context.Background(), backup.NewPipeline(newImportStore(t)),
		[]string{filepath.Join(dir, "missing.txt"), good})
	assert.Error(t, err)
	assert.Equal(t, int64(1), added)
}

func TestImportFilesLineEndings(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

	// CRLF endings and a final line with no newline at all.
	crlf := filepath.Join(dir, fixtures.FileName(day))
	require.NoError(t, os.WriteFile(crlf, []byte(
		fixtures.BackupLine(day, "CRLF")+"\r\n"+
			fixtures.BackupLine(day.Add(time.Second), "LAST")), 0644))

	// A backup left open in one file is not finished by the next file.
	open := filepath.Join(dir, "open.txt")
	require.NoError(t, os.WriteFile(open, []byte(
		fixtures.LogLine(day.Add(time.Minute), "Log", model.BackupStartMarker+"dangling")+"\n"), 0644))
	closing := filepath.Join(dir, "closing.txt")
	require.NoError(t, os.WriteFile(closing, []byte("tail"+model.BackupEndMarker+"\n"), 0644))

	store := newImportStore(t)
	added, err := importFiles(context.Background(), backup.NewPipeline(store), []string{crlf, open, closing})
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)
	assert.True(t, store.Exists("CRLF"))
	assert.True(t, store.Exists("LAST"))
	assert.False(t, store.Exists("dangling\ntail"))
}
