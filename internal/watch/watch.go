// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package watch reloads shader programs when their source files change.
//
// The watcher observes the directories holding the watched files, so
// editors that save by writing a temporary file and renaming it over the
// original are seen as well. Bursts of events are batched: the change
// callback fires once the files have been quiet for the configured delay.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period before a batch of changes is reported.
const DefaultDelay = 100 * time.Millisecond

// Watcher reports changes to a set of files.
//
// The change callback runs on the goroutine calling Run. Callers that must
// apply changes on another thread hand them over from the callback, e.g.
// through Editor.Enqueue.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(paths []string)
	delay    time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period before changes are reported.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher calling onChange with the changed files, sorted.
func New(onChange func(paths []string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		delay:    DefaultDelay,
		logger:   slog.New(slog.DiscardHandler),
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func clean(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("watch: %w", err)
	}
	return filepath.Clean(abs), nil
}

// Add starts watching a file. Adding a file twice is a no-op.
func (w *Watcher) Add(path string) error {
	file, err := clean(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[file]; ok {
		return nil
	}
	dir := filepath.Dir(file)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[file] = struct{}{}
	return nil
}

// Remove stops watching a file. Unknown files are ignored.
func (w *Watcher) Remove(path string) {
	file, err := clean(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[file]; !ok {
		return
	}
	delete(w.files, file)
	dir := filepath.Dir(file)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func (w *Watcher) watched(name string) (string, bool) {
	file, err := clean(name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[file]
	return file, ok
}

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	flushTimer := time.NewTimer(w.delay)
	flushTimer.Stop()
	defer flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		slices.Sort(paths)
		clear(pending)
		w.logger.Debug("watch: files changed", "paths", paths)
		w.onChange(paths)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			file, ok := w.watched(event.Name)
			if !ok {
				continue
			}
			pending[file] = struct{}{}
			flushTimer.Reset(w.delay)

		case <-flushTimer.C:
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch: watcher error", "error", err)
		}
	}
}

// Close stops the watcher. A running Run returns.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
