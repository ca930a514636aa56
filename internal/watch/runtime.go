// Package watch turns filesystem activity under one or more workspace roots
// into debounced refresh callbacks.
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/log"
	"github.com/mpjhorner/specdash/internal/model"
)

// Options configures a Runtime
type Options struct {
	Roots     []string
	Flow      model.Flow
	Delay     time.Duration
	OnRefresh func()
	OnError   func(*model.Error)
	Logger    *log.Logger
}

// Runtime watches the targets of every root and calls OnRefresh once per burst
// of events. Watcher errors go to OnError and never stop the runtime.
type Runtime struct {
	opts     Options
	roots    []string
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *log.Logger

	mu      sync.Mutex
	flow    model.Flow
	targets []Target
	watched map[string]bool

	done      chan struct{}
	closeOnce sync.Once
}

// DedupeRoots cleans roots into absolute paths and drops duplicates, keeping
// the first occurrence. An empty list means the current directory.
func DedupeRoots(roots []string) []string {
	abs := lo.FilterMap(roots, func(root string, _ int) (string, bool) {
		if strings.TrimSpace(root) == "" {
			return "", false
		}
		p, err := filepath.Abs(root)
		if err != nil {
			return filepath.Clean(root), true
		}
		return p, true
	})
	if len(abs) == 0 {
		cwd, err := filepath.Abs(".")
		if err != nil {
			cwd = "."
		}
		abs = []string{cwd}
	}
	return lo.Uniq(abs)
}

// Start creates the watcher, registers every existing target and begins
// delivering events
func Start(opts Options) (*Runtime, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, model.NewError(model.CodeWatchError, "Failed to start file watcher").
			WithDetails(err.Error())
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	onRefresh := opts.OnRefresh
	if onRefresh == nil {
		onRefresh = func() {}
	}

	r := &Runtime{
		opts:     opts,
		roots:    DedupeRoots(opts.Roots),
		watcher:  w,
		debounce: NewDebouncer(opts.Delay, onRefresh),
		logger:   logger.WithPrefix("watch"),
		flow:     opts.Flow,
		watched:  map[string]bool{},
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	r.registerLocked()
	r.mu.Unlock()

	go r.loop()
	r.logger.Debug("watching", "roots", len(r.roots), "dirs", len(r.Watched()))
	return r, nil
}

// Roots returns the deduplicated absolute roots
func (r *Runtime) Roots() []string {
	return append([]string{}, r.roots...)
}

// Watched returns the watched directories, sorted
func (r *Runtime) Watched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dirs := lo.Keys(r.watched)
	sort.Strings(dirs)
	return dirs
}

// Retarget switches the watched layout to another flow. Directories already
// watched stay registered.
func (r *Runtime) Retarget(f model.Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flow = f
	r.registerLocked()
}

// Close stops the debouncer and the watcher. A pending refresh is dropped.
func (r *Runtime) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.debounce.Stop()
		err = r.watcher.Close()
	})
	return err
}

func (r *Runtime) registerLocked() {
	r.targets = nil
	for _, root := range r.roots {
		r.targets = append(r.targets, Targets(root, r.flow)...)
	}
	for _, t := range r.targets {
		if !fsutil.IsDir(t.Path) {
			continue
		}
		if !t.Recursive {
			r.addLocked(t.Path)
			continue
		}
		for _, dir := range fsutil.WalkDirs(t.Path) {
			r.addLocked(dir)
		}
	}
}

func (r *Runtime) addLocked(dir string) {
	if r.watched[dir] {
		return
	}
	if err := r.watcher.Add(dir); err != nil {
		r.report(fmt.Errorf("watch %s: %w", dir, err))
		return
	}
	r.watched[dir] = true
}

func (r *Runtime) loop() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handle(event)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.report(err)
		}
	}
}

func (r *Runtime) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	r.mu.Lock()
	target, ok := r.match(event.Name)
	if !ok {
		r.mu.Unlock()
		return
	}
	switch {
	case event.Has(fsnotify.Create) && fsutil.IsDir(event.Name):
		if target.Recursive {
			for _, dir := range fsutil.WalkDirs(event.Name) {
				r.addLocked(dir)
			}
		} else {
			// a marker or entity directory may have appeared
			r.registerLocked()
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		delete(r.watched, event.Name)
	}
	r.mu.Unlock()

	r.logger.Debug("event", "path", event.Name, "op", event.Op.String())
	r.debounce.Trigger()
}

// match returns the first target that covers path
func (r *Runtime) match(path string) (Target, bool) {
	for _, t := range r.targets {
		if t.Recursive {
			if path == t.Path || within(t.Path, path) {
				return t, true
			}
			continue
		}
		if path != t.Path && filepath.Dir(path) != t.Path {
			continue
		}
		if len(t.Names) > 0 && !lo.Contains(t.Names, filepath.Base(path)) {
			continue
		}
		return t, true
	}
	return Target{}, false
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (r *Runtime) report(err error) {
	r.logger.Warn("watcher error", "err", err)
	if r.opts.OnError != nil {
		r.opts.OnError(model.NewError(model.CodeWatchError, "File watcher error").WithDetails(err.Error()))
	}
}
