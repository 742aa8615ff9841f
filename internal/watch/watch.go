// Package watch triggers rebuilds when files under the source tree change.
// Events are debounced and coalesced into batches; the change callback runs
// on a single goroutine so a long build is never invoked concurrently with
// itself.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/zizai/go-texshelf/internal/log"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires. Editors often write a file several times in a burst.
const DefaultDebounce = 500 * time.Millisecond

// ignoredDirs never get watched; their churn is not source changes.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".tox":         {},
	".venv":        {},
	"__pycache__":  {},
	"node_modules": {},
}

// ignoredSuffixes drop editor droppings and scratch files.
var ignoredSuffixes = []string{"~", ".swp", ".swx", ".tmp"}

// Options configures a Watcher.
type Options struct {
	Roots    []string      // directories watched recursively
	Exclude  []string      // absolute directory prefixes to skip (build dir, shelf)
	Debounce time.Duration // default DefaultDebounce
}

// Watcher owns the fsnotify loop and the rebuild trigger.
type Watcher struct {
	fsw      *fsnotify.Watcher
	opts     Options
	onChange func(context.Context, []string)
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[string]struct{}

	trigger  chan struct{}
	loopDone chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a Watcher; Start must be called to begin delivering changes.
func New(opts Options, onChange func(context.Context, []string)) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("watch: no roots given")
	}
	if onChange == nil {
		return nil, errors.New("watch: nil change callback")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		fsw:      fsw,
		opts:     opts,
		onChange: onChange,
		logger:   log.WithComponent("watch"),
		pending:  make(map[string]struct{}),
		trigger:  make(chan struct{}, 1),
		loopDone: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the watch roots and spawns the event and run loops.
// The watcher stops when ctx is cancelled; Done is closed once both loops
// have exited.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.opts.Roots {
		if err := w.addRecursive(root); err != nil {
			_ = w.fsw.Close()
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	w.logger.Info().
		Str("event", "watch.started").
		Strs("roots", w.opts.Roots).
		Msg("watching for source changes")

	w.wg.Add(2)
	go w.eventLoop(ctx)
	go w.runLoop(ctx)
	go func() {
		w.wg.Wait()
		close(w.done)
	}()
	return nil
}

// Done is closed after both loops have exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Stop closes the underlying watcher. Cancelling the Start context is the
// usual shutdown path; Stop covers callers without one.
func (w *Watcher) Stop() {
	_ = w.fsw.Close()
}

// eventLoop turns raw fsnotify events into debounced triggers.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.loopDone)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = w.fsw.Close()
			w.logger.Info().Str("event", "watch.stopped").Msg("watcher stopped")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			// Debounce: reset the timer on each relevant event.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case w.trigger <- struct{}{}:
				default:
					// A run is already queued; it will pick up the
					// pending paths.
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Str("event", "watch.error").Msg("watcher error")
		}
	}
}

// runLoop serializes callback invocations.
func (w *Watcher) runLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.loopDone:
			return
		case <-w.trigger:
			paths := w.takePending()
			if len(paths) == 0 {
				continue
			}
			w.logger.Info().
				Str("event", "watch.trigger").
				Int("changed", len(paths)).
				Str("first", paths[0]).
				Msg("source changed")
			w.onChange(ctx, paths)
		}
	}
}

// handleEvent records a relevant change and reports whether it should reset
// the debounce timer. New directories are added to the watch set.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	relevant := event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !relevant {
		return false
	}

	path := filepath.Clean(event.Name)
	if w.ignored(path) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.logger.Warn().Err(err).Str("path", path).Msg("cannot watch new directory")
			}
		}
	}

	w.mu.Lock()
	w.pending[path] = struct{}{}
	w.mu.Unlock()
	return true
}

// takePending drains the pending set into a sorted slice.
func (w *Watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

// addRecursive walks root and watches every directory not ignored.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, skip := ignoredDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if w.excluded(path) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("add %s: %w", path, err)
		}
		return nil
	})
}

// ignored reports whether a changed path should not trigger a rebuild.
func (w *Watcher) ignored(path string) bool {
	if w.excluded(path) {
		return true
	}
	name := filepath.Base(path)
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, elem := range strings.Split(path, string(filepath.Separator)) {
		if _, skip := ignoredDirs[elem]; skip {
			return true
		}
	}
	return false
}

// excluded reports whether path sits under one of the excluded prefixes.
func (w *Watcher) excluded(path string) bool {
	for _, prefix := range w.opts.Exclude {
		if prefix == "" {
			continue
		}
		prefix = filepath.Clean(prefix)
		if path == prefix || strings.HasPrefix(path, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
