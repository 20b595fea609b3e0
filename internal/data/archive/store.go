package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/data/scanner"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// Store is the append-only, per-day archive of backup records. All records
// are mirrored in memory, most recent first.
type Store struct {
	baseDir string
	scanner *scanner.FileScanner

	mu       sync.RWMutex
	records  []model.Record
	payloads map[string]struct{}
}

// NewStore creates a new Store rooted at baseDir. Nothing is read until LoadAll.
func NewStore(baseDir string) *Store {
	return &Store{
		baseDir:  baseDir,
		scanner:  scanner.NewFileScanner(baseDir, model.ArchivePattern),
		payloads: make(map[string]struct{}),
	}
}

// Dir returns the archive base directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// LoadAll reads every archive file into memory, replacing what was loaded
// before. Unreadable files and malformed blocks are skipped.
func (s *Store) LoadAll() error {
	if err := util.EnsureDir(s.baseDir); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	files, err := s.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan archive dir: %w", err)
	}

	var loaded []model.Record
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			util.LogWarn("Skip unreadable archive file", util.F("file", file), util.F("error", err))
			continue
		}
		records := ParseBlocks(string(data))
		util.LogDebug(fmt.Sprintf("Loaded %d records from %s", len(records), filepath.Base(file)))
		loaded = append(loaded, records...)
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].Timestamp > loaded[j].Timestamp
	})

	payloads := make(map[string]struct{}, len(loaded))
	records := make([]model.Record, 0, len(loaded))
	for _, rec := range loaded {
		key := payloadKey(rec.Payload)
		if _, dup := payloads[key]; dup {
			continue
		}
		payloads[key] = struct{}{}
		records = append(records, rec)
	}

	s.mu.Lock()
	s.records = records
	s.payloads = payloads
	s.mu.Unlock()

	util.LogInfo("Archive loaded", util.F("dir", s.baseDir),
		util.F("files", len(files)), util.F("records", len(records)))
	return nil
}

// ParseBlocks splits archive text into records. Blocks without a line break
// after the timestamp line are skipped.
func ParseBlocks(text string) []model.Record {
	var records []model.Record
	for _, block := range strings.Split(text, model.BlockDelimiter) {
		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		firstLineEnd := strings.IndexByte(trimmed, '\n')
		if firstLineEnd <= 0 {
			util.LogDebug("Skip malformed archive block", util.F("block", util.Truncate(trimmed, 40)))
			continue
		}
		ts := strings.TrimSpace(trimmed[:firstLineEnd])
		ts = strings.NewReplacer("[", "", "]", "").Replace(ts)
		payload := strings.TrimSpace(trimmed[firstLineEnd:])
		records = append(records, model.Record{Timestamp: ts, Payload: payload})
	}
	return records
}

// Exists reports whether a record with this exact payload is archived.
func (s *Store) Exists(payload string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.payloads[payloadKey(payload)]
	return ok
}

// payloadKey is the dedup key. ParseBlocks trims payloads, so keys are trimmed too.
func payloadKey(payload string) string {
	return strings.TrimSpace(payload)
}

// Append writes rec to its day file and puts it at the front of the
// in-memory sequence. The write is synced before Append returns; on error
// memory is left untouched.
func (s *Store) Append(rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.EnsureDir(s.baseDir); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	path := s.FilePath(rec)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}
	if _, err := f.WriteString(rec.Block()); err != nil {
		f.Close()
		return fmt.Errorf("write archive file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync archive file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive file: %w", err)
	}

	s.records = append([]model.Record{rec}, s.records...)
	s.payloads[payloadKey(rec.Payload)] = struct{}{}
	return nil
}

// FilePath returns the day file rec belongs to.
func (s *Store) FilePath(rec model.Record) string {
	return filepath.Join(s.baseDir, rec.FileDate()+model.ArchiveExt)
}

// Dates returns the distinct date parts in sequence order, most recent first.
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var dates []string
	for _, rec := range s.records {
		d := rec.DatePart()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	return dates
}

// RecordsForDate returns the records whose date part equals date, in sequence order.
func (s *Store) RecordsForDate(date string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Record
	for _, rec := range s.records {
		if rec.DatePart() == date {
			out = append(out, rec)
		}
	}
	return out
}

// Find returns the first record on date whose time part equals timePart.
func (s *Store) Find(date, timePart string) (model.Record, bool) {
	for _, rec := range s.RecordsForDate(date) {
		if rec.TimePart() == timePart {
			return rec, true
		}
	}
	return model.Record{}, false
}

// Records returns a copy of the full sequence.
func (s *Store) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Latest returns the front of the sequence.
func (s *Store) Latest() (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return model.Record{}, false
	}
	return s.records[0], true
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
