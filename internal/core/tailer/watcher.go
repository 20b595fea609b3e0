package tailer

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// FileWatcher turns fsnotify events on the log directory into FileEvents for
// files matching the log pattern.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	pattern string
	events  chan model.FileEvent
	done    chan struct{}
}

func NewFileWatcher(dir, pattern string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		dir:     dir,
		pattern: pattern,
		events:  make(chan model.FileEvent, 16),
		done:    make(chan struct{}),
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if ok, _ := doublestar.Match(fw.pattern, filepath.Base(event.Name)); !ok {
				continue
			}
			// Events are hints; drop them when nobody is waiting.
			select {
			case fw.events <- model.FileEvent{Path: event.Name, Operation: event.Op.String()}:
			default:
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarn("File monitoring error", util.F("dir", fw.dir), util.F("error", err))
		}
	}
}

func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

// Close stops the watcher. Events is never closed so waiters fall back to
// their timers.
func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	return err
}
