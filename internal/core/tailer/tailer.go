package tailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-mela-save-monitor/internal/core/constants"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/data/scanner"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// errTargetGone ends a follow when the followed file no longer shows up in
// the directory.
var errTargetGone = errors.New("followed log file disappeared")

// Config controls which files are followed and how long the tailer waits.
type Config struct {
	Dir     string
	Pattern string

	// LineWait is the pause after reaching end of file before reading again.
	LineWait time.Duration
	// RescanWait is the pause between directory scans while no file matches.
	RescanWait time.Duration
	// RetryWait is the pause after an open or read failure.
	RetryWait time.Duration
}

// Validate fills defaults and checks the pattern.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("log directory is required")
	}
	if c.Pattern == "" {
		c.Pattern = model.DefaultLogPattern
	}
	if c.LineWait <= 0 {
		c.LineWait = constants.LineWaitInterval
	}
	if c.RescanWait <= 0 {
		c.RescanWait = constants.RescanWaitInterval
	}
	if c.RetryWait <= 0 {
		c.RetryWait = constants.RetryWaitInterval
	}
	return scanner.NewFileScanner(c.Dir, c.Pattern).Validate()
}

// Source identifies a followed file. A file replaced at the same path is a
// different Source.
type Source struct {
	Path  string
	Inode uint64
	Dev   uint64
}

// SourceOf returns the Source described by info.
func SourceOf(info *util.FileInfo) Source {
	return Source{Path: info.Path, Inode: info.Inode, Dev: info.Dev}
}

// Line is one complete line read from a followed file.
type Line struct {
	Path   string
	Text   string
	Source Source
}

// FileMonitor delivers file change hints that cut tailer waits short.
type FileMonitor interface {
	Events() <-chan model.FileEvent
	Close() error
}

// Tailer follows the newest file matching Config.Pattern and switches to a
// newer one when it appears.
type Tailer struct {
	cfg     Config
	scanner *scanner.FileScanner
	monitor FileMonitor

	// offsets remembers how far each file was delivered, so a file that is
	// followed again resumes instead of starting over. Owned by Run.
	offsets map[Source]int64
}

// Option configures a Tailer
type Option func(*Tailer)

// WithMonitor wakes the tailer early on file events. Polling stays in charge;
// the monitor only shortens waits.
func WithMonitor(m FileMonitor) Option {
	return func(t *Tailer) {
		t.monitor = m
	}
}

// New creates a Tailer. cfg should have been validated.
func New(cfg Config, opts ...Option) *Tailer {
	t := &Tailer{
		cfg:     cfg,
		scanner: scanner.NewFileScanner(cfg.Dir, cfg.Pattern),
		offsets: make(map[Source]int64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lines starts the tailer in a goroutine and returns its line stream. The
// channel is closed once ctx is cancelled.
func (t *Tailer) Lines(ctx context.Context) <-chan Line {
	out := make(chan Line)
	go func() {
		defer close(out)
		_ = t.Run(ctx, out)
	}()
	return out
}

// Run follows log files and sends their lines to out until ctx is cancelled.
// Failures are retried; Run never gives up on its own and returns nil once
// ctx is done.
func (t *Tailer) Run(ctx context.Context, out chan<- Line) error {
	util.LogInfo("Tailer started", util.F("dir", t.cfg.Dir), util.F("pattern", t.cfg.Pattern))
	defer util.LogInfo("Tailer stopped")

	waiting := false
	for ctx.Err() == nil {
		target, err := t.scanner.Newest()
		if err != nil {
			wait := t.cfg.RetryWait
			if errors.Is(err, scanner.ErrNoLogFile) {
				wait = t.cfg.RescanWait
				if !waiting {
					util.LogInfo("Waiting for a log file", util.F("dir", t.cfg.Dir))
				}
				waiting = true
			} else {
				util.LogInfo("Log discovery failed", util.F("error", err))
			}
			t.wait(ctx, wait)
			continue
		}
		waiting = false

		if err := t.follow(ctx, target.Path, out); err != nil && ctx.Err() == nil {
			util.LogInfo("Stopped following log file", util.F("path", target.Path), util.F("error", err))
			t.wait(ctx, t.cfg.RetryWait)
		}
	}
	return nil
}

// follow reads path until a different file becomes the newest, the file
// disappears, an I/O error occurs or ctx is done. A nil return means the
// caller should re-target immediately.
func (t *Tailer) follow(ctx context.Context, path string, out chan<- Line) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	current, err := util.GetOpenFileInfo(f)
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	src := SourceOf(current)

	start := t.offsets[src]
	if start > current.Size {
		util.LogInfo("Log file shrank, reading from start", util.F("path", path), util.F("offset", start), util.F("size", current.Size))
		start = 0
	}
	if start > 0 {
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return fmt.Errorf("seek log: %w", err)
		}
	}
	util.LogInfo("Following log file", util.F("path", path), util.F("size", current.Size), util.F("offset", start))

	reader := NewLineReader(f, start)
	defer func() {
		t.offsets[src] = reader.Offset()
	}()

	for {
		text, err := reader.Next()
		if err == nil {
			if !t.send(ctx, out, Line{Path: path, Text: text, Source: src}) {
				return ctx.Err()
			}
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read log: %w", err)
		}

		// End of file: give the writer time, then look for a newer file.
		if !t.wait(ctx, t.cfg.LineWait) {
			return ctx.Err()
		}

		newest, err := t.scanner.Newest()
		switch {
		case errors.Is(err, scanner.ErrNoLogFile):
			t.flush(ctx, out, reader, src)
			return errTargetGone
		case err != nil:
			util.LogDebug("Rotation check failed", util.F("error", err))
			continue
		case !newest.SameFile(current):
			util.LogInfo("Log rotation detected", util.F("from", path), util.F("to", newest.Path))
			t.flush(ctx, out, reader, src)
			return nil
		}
	}
}

// flush delivers an unterminated last line of a file that will not grow anymore.
func (t *Tailer) flush(ctx context.Context, out chan<- Line, reader *LineReader, src Source) {
	if text, ok := reader.Flush(); ok {
		t.send(ctx, out, Line{Path: src.Path, Text: text, Source: src})
	}
}

func (t *Tailer) send(ctx context.Context, out chan<- Line, line Line) bool {
	select {
	case out <- line:
		return true
	case <-ctx.Done():
		return false
	}
}

// wait sleeps for d, returning early on a monitor event. It reports false
// when ctx is done.
func (t *Tailer) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	var events <-chan model.FileEvent
	if t.monitor != nil {
		events = t.monitor.Events()
	}

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case ev, ok := <-events:
		if ok {
			util.LogDebug("File event", util.F("path", ev.Path), util.F("op", ev.Operation))
		}
		return ctx.Err() == nil
	}
}
