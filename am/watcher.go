package am

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/fbstubs/errors"
	"github.com/teranos/fbstubs/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces
const DefaultDebounce = 500 * time.Millisecond

var backupRe = regexp.MustCompile(`\.back\d+$`)

// Watcher reports changes to a set of input files: the config, the module
// snapshot and the additions file. Parent directories are watched so that
// files replaced by rename are still seen.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger
}

// NewWatcher watches paths. Empty paths are ignored.
func NewWatcher(paths []string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:    make(map[string]bool),
		watcher:  fw,
		debounce: debounce,
		logger:   logger.OrNop(log),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	return w, nil
}

// Run calls onChange once per burst of changes until ctx is cancelled.
// onChange runs on the caller's goroutine, so runs never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("Input changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String(),
			)
			fire = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("File watcher error", logger.FieldError, err.Error())

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if backupRe.MatchString(event.Name) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
