package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logPattern = "output_log_*.txt"

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestNewFileScanner(t *testing.T) {
	s := NewFileScanner("/tmp/test", logPattern)

	assert.Equal(t, "/tmp/test", s.Dir())
	assert.NoError(t, s.Validate())
	assert.Error(t, NewFileScanner("/tmp", "output_log_[.txt").Validate())
}

func TestFileScannerScanEmptyDirectory(t *testing.T) {
	files, err := NewFileScanner(t.TempDir(), logPattern).Scan()

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileScannerScanNonExistentDirectory(t *testing.T) {
	files, err := NewFileScanner(filepath.Join(t.TempDir(), "missing"), logPattern).Scan()

	require.NoError(t, err, "Scanner should handle non-existent directory gracefully")
	assert.Empty(t, files)
}

func TestFileScannerScanMatchesPatternOnly(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	testFiles := []struct {
		name  string
		match bool
	}{
		{"output_log_2026-02-03_12-00-00.txt", true},
		{"output_log_2026-02-04_09-30-00.txt", true},
		{"output_log_.txt", true},
		{"output_log_2026.log", false},
		{"player_log.txt", false},
		{"sub/output_log_nested.txt", false},
	}

	var want []string
	for _, f := range testFiles {
		path := filepath.Join(dir, filepath.FromSlash(f.name))
		writeFile(t, path, now)
		if f.match {
			want = append(want, path)
		}
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "output_log_dir.txt"), 0755))

	files, err := NewFileScanner(dir, logPattern).Scan()

	require.NoError(t, err)
	assert.ElementsMatch(t, want, files)
}

func TestFileScannerNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeFile(t, filepath.Join(dir, "output_log_a.txt"), base)
	writeFile(t, filepath.Join(dir, "output_log_c.txt"), base.Add(time.Minute))
	writeFile(t, filepath.Join(dir, "output_log_b.txt"), base.Add(2*time.Minute))

	newest, err := NewFileScanner(dir, logPattern).Newest()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output_log_b.txt"), newest.Path)
}

func TestFileScannerNewestTieBreaksOnName(t *testing.T) {
	dir := t.TempDir()
	same := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeFile(t, filepath.Join(dir, "output_log_1.txt"), same)
	writeFile(t, filepath.Join(dir, "output_log_3.txt"), same)
	writeFile(t, filepath.Join(dir, "output_log_2.txt"), same)

	newest, err := NewFileScanner(dir, logPattern).Newest()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output_log_3.txt"), newest.Path)
}

func TestFileScannerNewestNoFiles(t *testing.T) {
	_, err := NewFileScanner(t.TempDir(), logPattern).Newest()

	assert.True(t, errors.Is(err, ErrNoLogFile))
}
