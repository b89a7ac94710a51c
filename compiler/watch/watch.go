// Package watch triggers regeneration passes when inputs change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/syssam/autogen/compiler/load"
	"github.com/syssam/autogen/internal/logging/logfields"
)

// DefaultDebounce is the quiet period after the last event before a pass.
const DefaultDebounce = 200 * time.Millisecond

// genSuffix marks generated Go files, which never trigger a pass.
const genSuffix = ".gen.go"

// Options configures a Watcher.
type Options struct {
	// Root is the project directory watched recursively.
	Root string
	// Extension selects definition files, e.g. ".xml".
	Extension string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Skip lists directories that are not watched, such as the output
	// directories of the error pipeline.
	Skip []string
}

// Watcher runs a pass every time a Go source or definition file below Root
// changes. Passes never overlap.
type Watcher struct {
	opts Options
	skip map[string]bool
	fsw  *fsnotify.Watcher
	log  logrus.FieldLogger
}

// New creates a watcher over every directory below opts.Root.
func New(opts Options, log logrus.FieldLogger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	opts.Root = filepath.Clean(opts.Root)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		opts: opts,
		skip: make(map[string]bool, len(opts.Skip)),
		fsw:  fsw,
		log:  log,
	}
	for _, s := range opts.Skip {
		w.skip[filepath.Clean(s)] = true
	}
	if err := w.addTree(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipped(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) skipped(dir string) bool {
	return load.SkipDir(filepath.Base(dir)) || w.skip[filepath.Clean(dir)]
}

// Relevant reports whether a change to path calls for a pass.
func (w *Watcher) Relevant(path string) bool {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if w.skip[dir] {
			return false
		}
		if dir == w.opts.Root || dir == filepath.Dir(dir) {
			break
		}
	}
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "."):
		return false
	case strings.HasSuffix(name, genSuffix):
		return false
	case strings.HasSuffix(name, ".go"):
		return true
	default:
		return strings.HasSuffix(name, w.opts.Extension)
	}
}

// Run calls pass after each burst of relevant changes until ctx is done.
// Passes run on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, pass func(context.Context)) error {
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.log.WithFields(logrus.Fields{
				logfields.File:  event.Name,
				logfields.Event: event.Op.String(),
			}).Debug("Received fsnotify event")
			if event.Has(fsnotify.Create) {
				if w.isNewDir(event.Name) {
					if err := w.addTree(event.Name); err != nil {
						w.log.WithError(err).Warn("Unable to watch new directory")
					}
					timer.Reset(w.opts.Debounce)
					continue
				}
			}
			if w.Relevant(event.Name) {
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher received an error")
		case <-timer.C:
			pass(ctx)
		}
	}
}

func (w *Watcher) isNewDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir() && !w.skipped(path)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
