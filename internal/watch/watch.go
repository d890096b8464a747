// Copyright 2026 The Continuum Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch feeds the source files under a directory into a
// workspace as they change on disk.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// A Sink receives the files seen by a Watcher. It is implemented by
// *workspace.Workspace.
type Sink interface {
	// Edit is called with the contents of a new or changed file.
	Edit(path, text string) int64

	// Remove is called for a file that was removed or renamed.
	Remove(path string)
}

// Glob returns the files under root matching any of patterns, which use
// the doublestar syntax and slash separated paths relative to root. The
// result holds paths joined to root, sorted and without duplicates.
func Glob(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	var paths []string
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		for _, m := range matches {
			paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// A Watcher reports changes to the files matching a set of patterns
// under a root directory.
type Watcher struct {
	root     string
	patterns []string
	sink     Sink
	logger   *slog.Logger

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// New returns a Watcher for the files under root matching patterns. A
// nil logger discards log output.
func New(root string, patterns []string, sink Sink, logger *slog.Logger) (*Watcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		patterns: patterns,
		sink:     sink,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Start feeds the matching files that already exist to the sink and
// starts watching for changes. It returns the number of files fed.
func (w *Watcher) Start() (int, error) {
	if err := w.addDirs(w.root); err != nil {
		return 0, err
	}
	paths, err := Glob(w.root, w.patterns)
	if err != nil {
		return 0, err
	}
	for _, path := range paths {
		w.load(path)
	}
	w.wg.Add(1)
	go w.run()
	return len(paths), nil
}

// Stop stops watching and waits for pending events to be handled.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// addDirs watches dir and the directories below it.
func (w *Watcher) addDirs(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", "dir", path, "err", err)
		}
		return nil
	})
}

// addNewDir watches a directory created after Start and loads the
// matching files already in it.
func (w *Watcher) addNewDir(dir string) {
	if err := w.addDirs(dir); err != nil {
		w.logger.Warn("cannot watch directory", "dir", dir, "err", err)
		return
	}
	// Files created before the watch was added.
	paths, err := Glob(w.root, w.patterns)
	if err != nil {
		w.logger.Warn("cannot list files", "dir", dir, "err", err)
		return
	}
	for _, path := range paths {
		if rel, err := filepath.Rel(dir, path); err == nil && filepath.IsLocal(rel) {
			w.load(path)
		}
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) {
				w.addNewDir(ev.Name)
			}
			return
		}
		if w.matches(ev.Name) {
			w.load(ev.Name)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		if w.matches(ev.Name) {
			w.logger.Debug("file gone", "path", ev.Name)
			w.sink.Remove(ev.Name)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) load(path string) {
	body, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		w.logger.Warn("cannot read file", "path", path, "err", err)
		return
	}
	v := w.sink.Edit(path, string(body))
	w.logger.Debug("file changed", "path", path, "version", v)
}
