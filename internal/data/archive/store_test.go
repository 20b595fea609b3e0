package archive

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
)

func rec(ts, payload string) model.Record {
	return model.Record{Timestamp: ts, Payload: payload}
}

func TestStoreAppendWritesBlock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SaveCode")
	s := NewStore(dir)

	require.NoError(t, s.Append(rec("2026-02-03 12:00:00", "ABC123")))

	data, err := os.ReadFile(filepath.Join(dir, "2026-02-03.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[2026-02-03 12:00:00]\nABC123\n"+strings.Repeat("-", 40)+"\n", string(data))

	assert.True(t, s.Exists("ABC123"))
	assert.Equal(t, []string{"2026-02-03"}, s.Dates())
	assert.Equal(t, []model.Record{rec("2026-02-03 12:00:00", "ABC123")}, s.RecordsForDate("2026-02-03"))
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	written := []model.Record{
		rec("2026-02-03 12:00:00", "ABC123"),
		rec("2026-02-03 18:30:00", "multi\nline\npayload"),
		rec("2026-02-04 07:15:42", "DEF456"),
	}

	s := NewStore(dir)
	for _, r := range written {
		require.NoError(t, s.Append(r))
	}

	reloaded := NewStore(dir)
	require.NoError(t, reloaded.LoadAll())

	assert.Equal(t, 3, reloaded.Len())
	assert.Equal(t, []model.Record{written[2], written[1], written[0]}, reloaded.Records())
	for _, r := range written {
		assert.True(t, reloaded.Exists(r.Payload))
	}
}

func TestStoreLoadAllSkipsMalformedBlocks(t *testing.T) {
	dir := t.TempDir()
	content := "[2026-02-03 12:00:00]\nGOOD\n" + model.BlockDelimiter + "\n" +
		"[2026-02-03 13:00:00] no line break here\n" + model.BlockDelimiter + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2026-02-03.txt"), []byte(content), 0644))

	s := NewStore(dir)
	require.NoError(t, s.LoadAll())

	require.Equal(t, 1, s.Len())
	assert.Equal(t, rec("2026-02-03 12:00:00", "GOOD"), s.Records()[0])
}

func TestStoreLoadAllOrderingAndDates(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]model.Record{
		"2026-02-03.txt": {rec("2026-02-03 09:00:00", "A"), rec("2026-02-03 21:00:00", "B")},
		"2026-02-05.txt": {rec("2026-02-05 10:00:00", "C")},
		"2026-02-04.txt": {rec("2026-02-04 23:59:59", "D")},
	}
	for name, records := range files {
		var b strings.Builder
		for _, r := range records {
			b.WriteString(r.Block())
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0644))

	s := NewStore(dir)
	require.NoError(t, s.LoadAll())

	assert.Equal(t, []string{"2026-02-05", "2026-02-04", "2026-02-03"}, s.Dates())
	assert.Equal(t,
		[]model.Record{rec("2026-02-03 21:00:00", "B"), rec("2026-02-03 09:00:00", "A")},
		s.RecordsForDate("2026-02-03"))
	assert.Empty(t, s.RecordsForDate("2030-01-01"))

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "C", latest.Payload)
}

func TestStoreLoadAllDeduplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	block := rec("2026-02-03 12:00:00", "SAME").Block()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2026-02-03.txt"), []byte(block+block), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "copy.txt"), []byte(block), 0644))

	s := NewStore(dir)
	require.NoError(t, s.LoadAll())

	assert.Equal(t, 1, s.Len())
}

func TestStoreLoadAllCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "SaveCode")
	s := NewStore(dir)

	require.NoError(t, s.LoadAll())
	assert.DirExists(t, dir)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Dates())
}

func TestStoreAppendPrependsNewest(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Append(rec("2026-02-03 12:00:00", "first")))
	require.NoError(t, s.Append(rec("2026-02-03 12:05:00", "second")))

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Payload)
	assert.Equal(t, "first", records[1].Payload)

	found, ok := s.Find("2026-02-03", "12:00:00")
	require.True(t, ok)
	assert.Equal(t, "first", found.Payload)
	_, ok = s.Find("2026-02-03", "00:00:00")
	assert.False(t, ok)
}

func TestStoreAppendUnknownDate(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.Append(rec("bad", "P")))

	assert.FileExists(t, filepath.Join(dir, "Unknown.txt"))
	assert.Equal(t, []string{model.UnknownDate}, s.Dates())
}

func TestStoreExistsComparesTrimmedPayload(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Append(rec("2026-02-03 12:00:00", "  padded  ")))

	assert.True(t, s.Exists("padded"))
	assert.True(t, s.Exists("  padded  "))
	assert.False(t, s.Exists("other"))
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(t.TempDir())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = s.Append(rec("2026-02-03 12:00:00", strings.Repeat("x", i+1)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = s.Dates()
			_ = s.RecordsForDate("2026-02-03")
			_ = s.Exists("x")
		}
	}()
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}

func TestParseBlocks(t *testing.T) {
	text := "\n\n[2026-02-03 12:00:00]\r\nA\r\n" + model.BlockDelimiter + "\r\n" +
		"   \n" + model.BlockDelimiter + "\n" +
		"orphan" + model.BlockDelimiter

	records := ParseBlocks(text)

	require.Len(t, records, 1)
	assert.Equal(t, rec("2026-02-03 12:00:00", "A"), records[0])
}
