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

// Package workspace keeps the declaration trees of a set of files up to
// date as they are edited, and answers completion requests against them.
//
// Edits are queued per path and parsed by a single background worker. A
// newer edit of a path replaces one that has not been parsed yet. Parsed
// trees are published into a store owned by its own goroutine, which
// never replaces a tree by one of an older edit.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/parser"
	"github.com/jesse99/Continuum-sub001/internal/complete"
)

var (
	// ErrStale is returned by queries whose file was republished while
	// they ran. Their answer is discarded.
	ErrStale = errors.New("file changed during query")

	ErrUnknownFile = errors.New("no text for file")
	ErrShutdown    = errors.New("workspace has shut down")
)

// Options configure a Workspace.
type Options struct {
	// Engine answers completion requests.
	Engine *complete.Engine

	// Notify, if set, is called on the worker goroutine each time it
	// publishes a snapshot.
	Notify func(*Snapshot)

	// Parser holds the options for every parse.
	Parser []parser.Option

	Logger *slog.Logger
}

type edit struct {
	version int64
	text    string
}

// A Workspace tracks a set of files. Its methods may be called
// concurrently.
type Workspace struct {
	opts Options

	counter atomic.Int64 // edit counter

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []string        // paths with a pending edit, oldest first
	pending map[string]edit // by path
	latest  map[string]edit // most recent edit of each path
	closing bool

	store   *mailbox[storeFunc]
	parses  singleflight.Group
	workers sync.WaitGroup
}

// New returns a Workspace and starts its worker. Call Shutdown to stop
// it.
func New(opts Options) *Workspace {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	w := &Workspace{
		opts:    opts,
		pending: map[string]edit{},
		latest:  map[string]edit{},
		store:   newMailbox[storeFunc](),
	}
	w.cond = sync.NewCond(&w.mu)

	s := newStore()
	w.workers.Add(2)
	go func() {
		defer w.workers.Done()
		w.store.serve(func(f storeFunc) { f(s) })
	}()
	go func() {
		defer w.workers.Done()
		w.work()
	}()
	return w
}

// Edit records new text for path and queues it for parsing. It returns
// the edit's version, which is 0 once the workspace has shut down.
func (w *Workspace) Edit(path, text string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closing {
		return 0
	}
	e := edit{version: w.counter.Add(1), text: text}
	w.latest[path] = e
	if _, ok := w.pending[path]; !ok {
		w.queue = append(w.queue, path)
	}
	w.pending[path] = e
	w.cond.Signal()
	return e.version
}

// next blocks until an edit is pending and removes it from the queue. It
// returns false when the workspace shuts down.
func (w *Workspace) next() (string, edit, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queue) == 0 && !w.closing {
		w.cond.Wait()
	}
	if w.closing {
		return "", edit{}, false
	}
	path := w.queue[0]
	w.queue = w.queue[1:]
	e := w.pending[path]
	delete(w.pending, path)
	return path, e, true
}

func (w *Workspace) work() {
	for {
		path, e, ok := w.next()
		if !ok {
			return
		}
		snap := w.parse(path, e)
		published, ok := w.publish(snap)
		if !ok {
			return
		}
		if !published {
			w.opts.Logger.Debug("discarded stale parse", "path", path, "version", e.version)
			continue
		}
		w.opts.Logger.Debug("published", "path", path, "version", e.version)
		if w.opts.Notify != nil {
			w.opts.Notify(snap)
		}
	}
}

func (w *Workspace) parse(path string, e edit) *Snapshot {
	f, diag := parser.TryParse(path, e.text, w.opts.Parser...)
	return &Snapshot{Path: path, Version: e.version, Text: e.text, File: f, Diag: diag}
}

// publish offers snap to the store. The second result is false if the
// store has stopped.
func (w *Workspace) publish(snap *Snapshot) (published, ok bool) {
	ok = w.store.send(func(s *store) {
		published = s.publish(snap)
	}, true)
	return published, ok
}

// ParseNow parses the latest text of path on the calling goroutine,
// publishes the result and returns the newest published snapshot.
// Concurrent calls for the same version share one parse.
func (w *Workspace) ParseNow(path string) (*Snapshot, error) {
	w.mu.Lock()
	e, ok := w.latest[path]
	if p, queued := w.pending[path]; queued && p.version == e.version {
		// The queued edit would only be discarded.
		delete(w.pending, path)
		w.queue = removePath(w.queue, path)
	}
	w.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFile)
	}

	key := path + "@" + strconv.FormatInt(e.version, 10)
	v, err, _ := w.parses.Do(key, func() (any, error) {
		snap := w.parse(path, e)
		if _, ok := w.publish(snap); !ok {
			return nil, ErrShutdown
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if snap, ok := w.Snapshot(path); ok {
		return snap, nil
	}
	return v.(*Snapshot), nil
}

func removePath(paths []string, path string) []string {
	for i, p := range paths {
		if p == path {
			return append(paths[:i:i], paths[i+1:]...)
		}
	}
	return paths
}

// Snapshot returns the latest published snapshot of path.
func (w *Workspace) Snapshot(path string) (*Snapshot, bool) {
	var snap *Snapshot
	w.store.send(func(s *store) {
		snap = s.snaps[path]
	}, true)
	return snap, snap != nil
}

// Open marks path as open in an editor. The trees of open files are
// kept by Rebuilt.
func (w *Workspace) Open(path string) {
	w.store.send(func(s *store) { s.open[path] = true }, true)
}

// Close marks path as no longer open. Its tree is kept until the next
// call to Rebuilt.
func (w *Workspace) Close(path string) {
	w.store.send(func(s *store) { delete(s.open, path) }, true)
}

// Remove forgets path, which no longer exists. Edits of path made
// before the call are never published.
func (w *Workspace) Remove(path string) {
	w.mu.Lock()
	floor := w.counter.Load()
	delete(w.latest, path)
	if _, queued := w.pending[path]; queued {
		delete(w.pending, path)
		w.queue = removePath(w.queue, path)
	}
	w.mu.Unlock()
	w.store.send(func(s *store) { s.remove(path, floor) }, true)
}

// Rebuilt tells w that the persisted index was rebuilt, and so covers
// the files that are not open. Their trees are dropped; the paths are
// returned.
func (w *Workspace) Rebuilt() []string {
	var gone []string
	w.store.send(func(s *store) { gone = s.evict() }, true)

	w.mu.Lock()
	for _, path := range gone {
		if _, queued := w.pending[path]; !queued {
			delete(w.latest, path)
		}
	}
	w.mu.Unlock()
	return gone
}

// view returns the snapshot of path and the trees of the other files.
func (w *Workspace) view(path string) (*Snapshot, []*ast.File, bool) {
	var snap *Snapshot
	var others []*ast.File
	w.store.send(func(s *store) {
		snap = s.snaps[path]
		if snap != nil {
			others = s.files(path)
		}
	}, true)
	return snap, others, snap != nil
}

// current returns a snapshot of the latest edit of path, parsing it on
// the calling goroutine if the worker has not published it yet.
func (w *Workspace) current(path string) (*Snapshot, []*ast.File, error) {
	w.mu.Lock()
	e, known := w.latest[path]
	closing := w.closing
	w.mu.Unlock()
	if closing {
		return nil, nil, ErrShutdown
	}
	snap, others, ok := w.view(path)
	if !ok || (known && snap.Version < e.version) {
		if _, err := w.ParseNow(path); err != nil {
			return nil, nil, err
		}
		snap, others, _ = w.view(path)
	}
	return snap, others, nil
}

// Complete returns the completion candidates at caret in the latest
// text of path. It returns ErrStale if a newer version of path was
// published while the candidates were computed.
func (w *Workspace) Complete(path string, caret int) ([]complete.Item, *Snapshot, error) {
	return w.query(path, func(snap *Snapshot, others []*ast.File) []complete.Item {
		return w.opts.Engine.Complete(snap.File, snap.Text, caret, others...)
	})
}

// Signatures returns the overloads of the method called at caret in the
// latest text of path, like Complete.
func (w *Workspace) Signatures(path string, caret int) ([]complete.Item, *Snapshot, error) {
	return w.query(path, func(snap *Snapshot, others []*ast.File) []complete.Item {
		return w.opts.Engine.Signatures(snap.File, snap.Text, caret, others...)
	})
}

func (w *Workspace) query(path string, run func(*Snapshot, []*ast.File) []complete.Item) ([]complete.Item, *Snapshot, error) {
	snap, others, err := w.current(path)
	if err != nil {
		return nil, nil, err
	}
	items := run(snap, others)
	if now, ok := w.Snapshot(path); ok && now.Version > snap.Version {
		w.opts.Logger.Debug("discarded stale answer", "path", path, "version", snap.Version, "published", now.Version)
		return nil, now, ErrStale
	}
	return items, snap, nil
}

// Shutdown stops the worker and the store. Pending edits are dropped.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	w.closing = true
	w.cond.Broadcast()
	w.mu.Unlock()

	w.store.stop()
	w.workers.Wait()
}
