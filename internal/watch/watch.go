// Package watch turns filesystem activity in a mods directory into
// debounced change notifications.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/modwarden/modwarden/internal/modfile"
)

// DefaultDebounce is how long the directory must stay quiet before a burst
// of events produces one notification. Installers tend to touch a file
// several times in quick succession.
const DefaultDebounce = 500 * time.Millisecond

// Config holds watcher construction options.
type Config struct {
	// Dir is the mods directory to watch.
	Dir string
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher reports mod archive changes in one directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *zap.Logger
	fs       *fsnotify.Watcher
}

// New opens a watcher on cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fs.Add(cfg.Dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		dir:      cfg.Dir,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		fs:       fs,
	}, nil
}

// Run delivers debounced change notifications to onChange until ctx is
// cancelled or the underlying watcher closes. onChange runs on Run's
// goroutine; events arriving while it executes queue up and start a new
// debounce window afterwards.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fs.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("mod directory changed",
				zap.String("file", filepath.Base(ev.Name)),
				zap.String("op", ev.Op.String()))
			stopTimer()
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			onChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// relevant filters to mod archive create/write/remove/rename, in either the
// enabled or disabled form. Staging files, the manifest, and editor
// droppings never trigger a refresh.
func relevant(ev fsnotify.Event) bool {
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write),
		ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
	default:
		return false
	}
	return modfile.IsModArchive(filepath.Base(ev.Name))
}
