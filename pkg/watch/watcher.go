// Package watch commits a song each time the music application saves its
// archive.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/rnsgit/logging"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the archive must stay quiet before a save
// is considered finished.
const DefaultDebounce = 2 * time.Second

// SaveFunc handles one finished save.
type SaveFunc func(ctx context.Context) error

// ArchiveWatcher watches one archive file inside its directory.
type ArchiveWatcher struct {
	watcher  *fsnotify.Watcher
	archive  string
	debounce time.Duration
	onSave   SaveFunc
	logger   *logrus.Entry
}

// NewArchiveWatcher watches dir for writes to archive. fsnotify does not
// see a file replaced by rename, so the directory is watched instead of
// the file.
func NewArchiveWatcher(dir, archive string, debounce time.Duration, onSave SaveFunc) (*ArchiveWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ArchiveWatcher{
		watcher:  watcher,
		archive:  archive,
		debounce: debounce,
		onSave:   onSave,
		logger:   logging.NewLogger("rnsgit-watch"),
	}, nil
}

// Start blocks until ctx is cancelled, calling onSave once per burst of
// writes. Saves are handled one at a time on the calling goroutine.
func (w *ArchiveWatcher) Start(ctx context.Context) {
	defer w.watcher.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.handleSave(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *ArchiveWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.archive {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *ArchiveWatcher) handleSave(ctx context.Context) {
	w.logger.WithField("archive", w.archive).Info("Archive saved")
	if w.onSave == nil {
		return
	}
	if err := w.onSave(ctx); err != nil {
		w.logger.WithError(err).Error("Save handler failed")
	}
}

// Close stops the watcher and releases resources.
func (w *ArchiveWatcher) Close() error {
	return w.watcher.Close()
}
