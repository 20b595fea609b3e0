package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// ErrNoLogFile is returned by Newest when no file matches the pattern.
var ErrNoLogFile = errors.New("no matching log file")

// FileScanner scans files matching a glob pattern in a single directory
type FileScanner struct {
	baseDir string
	pattern string
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir, pattern string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		pattern: pattern,
	}
}

// Dir returns the scanned directory.
func (s *FileScanner) Dir() string {
	return s.baseDir
}

// Validate checks the glob pattern syntax.
func (s *FileScanner) Validate() error {
	if !doublestar.ValidatePattern(s.pattern) {
		return fmt.Errorf("invalid file pattern %q", s.pattern)
	}
	return nil
}

// Scan returns the absolute paths of all regular files matching the pattern,
// sorted by name. A missing directory yields no files and no error.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()

	if _, err := os.Stat(s.baseDir); err != nil {
		if os.IsNotExist(err) {
			util.LogDebug(fmt.Sprintf("Scan directory does not exist: %s", s.baseDir))
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", s.baseDir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(s.baseDir), s.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", s.pattern, s.baseDir, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(s.baseDir, filepath.FromSlash(m)))
	}
	sort.Strings(files)

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, pattern %s, found %d files",
		time.Since(start), s.pattern, len(files)))

	return files, nil
}

// Newest returns the most recently modified matching file. Equal
// modification times are broken by the lexicographically greatest name.
func (s *FileScanner) Newest() (*util.FileInfo, error) {
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}

	var newest *util.FileInfo
	for _, file := range files {
		info, err := util.GetFileInfo(file)
		if err != nil {
			// Vanished between glob and stat.
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", file, err))
			continue
		}
		if newest == nil || newer(info, newest) {
			newest = info
		}
	}

	if newest == nil {
		return nil, ErrNoLogFile
	}
	return newest, nil
}

func newer(a, b *util.FileInfo) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return filepath.Base(a.Path) > filepath.Base(b.Path)
}
