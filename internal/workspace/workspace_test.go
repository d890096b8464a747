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

package workspace

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-quicktest/qt"
	"go.uber.org/goleak"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/internal/complete"
	"github.com/jesse99/Continuum-sub001/internal/resolve"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const widget = `namespace App
{
    class Widget
    {
        public int Width;
        public void Resize(int w) {}
    }
}
`

const user = `namespace App
{
    class User
    {
        void Run(Widget w)
        {
            w.
        }
    }
}
`

func newWorkspace(t *testing.T, notify func(*Snapshot)) *Workspace {
	w := New(Options{
		Engine: &complete.Engine{Resolver: resolve.New(nil, nil)},
		Notify: notify,
	})
	t.Cleanup(w.Shutdown)
	return w
}

func caretAfter(text, s string) int {
	return strings.Index(text, s) + len(s)
}

func texts(items []complete.Item) []string {
	var ss []string
	for _, it := range items {
		ss = append(ss, it.Text)
	}
	return ss
}

func TestNotify(t *testing.T) {
	got := make(chan *Snapshot, 1)
	w := newWorkspace(t, func(s *Snapshot) { got <- s })

	v := w.Edit("widget.cs", widget)
	snap := <-got
	qt.Assert(t, qt.Equals(snap.Path, "widget.cs"))
	qt.Assert(t, qt.Equals(snap.Version, v))
	qt.Assert(t, qt.IsNil(snap.Diag))
	qt.Assert(t, qt.HasLen(snap.File.Namespace.Namespaces, 1))

	stored, ok := w.Snapshot("widget.cs")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(stored, snap))
}

// Edits queued while the worker is busy are coalesced per path, and
// paths are parsed in the order they were first queued.
func TestCoalescing(t *testing.T) {
	got := make(chan *Snapshot)
	release := make(chan struct{})
	w := newWorkspace(t, func(s *Snapshot) {
		got <- s
		<-release
	})

	w.Edit("a.cs", "class A1 {}")
	first := <-got // the worker now waits for release

	w.Edit("b.cs", "class B1 {}")
	w.Edit("a.cs", "class A2 {}")
	vb := w.Edit("b.cs", "class B2 {}")
	va := w.Edit("a.cs", "class A3 {}")

	w.mu.Lock()
	qt.Assert(t, qt.DeepEquals(w.queue, []string{"b.cs", "a.cs"}))
	w.mu.Unlock()

	var order []string
	var versions []int64
	for _, s := range []*Snapshot{first, nextSnap(got, release), nextSnap(got, release)} {
		order = append(order, s.Path)
		versions = append(versions, s.Version)
	}
	close(release)
	qt.Assert(t, qt.DeepEquals(order, []string{"a.cs", "b.cs", "a.cs"}))
	qt.Assert(t, qt.DeepEquals(versions[1:], []int64{vb, va}))

	snap, _ := w.Snapshot("a.cs")
	qt.Assert(t, qt.Equals(snap.Text, "class A3 {}"))
}

func nextSnap(got chan *Snapshot, release chan struct{}) *Snapshot {
	release <- struct{}{}
	return <-got
}

func TestStorePublish(t *testing.T) {
	s := newStore()
	qt.Assert(t, qt.IsTrue(s.publish(&Snapshot{Path: "a.cs", Version: 2})))
	qt.Assert(t, qt.IsFalse(s.publish(&Snapshot{Path: "a.cs", Version: 1})))
	qt.Assert(t, qt.IsFalse(s.publish(&Snapshot{Path: "a.cs", Version: 2})))
	qt.Assert(t, qt.IsTrue(s.publish(&Snapshot{Path: "a.cs", Version: 3})))
	qt.Assert(t, qt.Equals(s.snaps["a.cs"].Version, int64(3)))

	qt.Assert(t, qt.DeepEquals(s.evict(), []string{"a.cs"}))
	qt.Assert(t, qt.IsFalse(s.publish(&Snapshot{Path: "a.cs", Version: 3})))
	qt.Assert(t, qt.IsTrue(s.publish(&Snapshot{Path: "a.cs", Version: 4})))
}

func TestParseNow(t *testing.T) {
	w := newWorkspace(t, nil)
	_, err := w.ParseNow("missing.cs")
	qt.Assert(t, qt.ErrorIs(err, ErrUnknownFile))

	v := w.Edit("widget.cs", widget)
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 4)
	for i := range snaps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := w.ParseNow("widget.cs")
			if err == nil {
				snaps[i] = snap
			}
		}()
	}
	wg.Wait()
	for _, snap := range snaps {
		qt.Assert(t, qt.IsNotNil(snap))
		qt.Assert(t, qt.Equals(snap.Version, v))
	}
}

func TestComplete(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Edit("widget.cs", widget)
	w.Edit("user.cs", user)

	// Both files must be published for the type of w to resolve.
	_, err := w.ParseNow("widget.cs")
	qt.Assert(t, qt.IsNil(err))

	items, snap, err := w.Complete("user.cs", caretAfter(user, "w."))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(snap.Text, user))
	qt.Assert(t, qt.DeepEquals(texts(items), []string{"Resize(int w)", "Width"}))

	_, _, err = w.Complete("nowhere.cs", 0)
	qt.Assert(t, qt.ErrorIs(err, ErrUnknownFile))
}

func TestStaleAnswer(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Edit("widget.cs", widget)

	_, _, err := w.query("widget.cs", func(*Snapshot, []*ast.File) []complete.Item {
		w.Edit("widget.cs", widget+"\n")
		_, err := w.ParseNow("widget.cs")
		qt.Check(t, qt.IsNil(err))
		return []complete.Item{{Text: "discarded"}}
	})
	qt.Assert(t, qt.ErrorIs(err, ErrStale))
}

func TestRebuiltEvictsClosedFiles(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Open("user.cs")
	w.Edit("user.cs", user)
	w.Edit("widget.cs", widget)
	for _, path := range []string{"user.cs", "widget.cs"} {
		_, err := w.ParseNow(path)
		qt.Assert(t, qt.IsNil(err))
	}

	qt.Assert(t, qt.DeepEquals(w.Rebuilt(), []string{"widget.cs"}))
	_, ok := w.Snapshot("widget.cs")
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = w.Snapshot("user.cs")
	qt.Assert(t, qt.IsTrue(ok))

	w.Close("user.cs")
	qt.Assert(t, qt.DeepEquals(w.Rebuilt(), []string{"user.cs"}))
}

func TestRemove(t *testing.T) {
	w := newWorkspace(t, nil)
	w.Edit("widget.cs", widget)
	_, err := w.ParseNow("widget.cs")
	qt.Assert(t, qt.IsNil(err))

	w.Remove("widget.cs")
	_, ok := w.Snapshot("widget.cs")
	qt.Assert(t, qt.IsFalse(ok))
	_, err = w.ParseNow("widget.cs")
	qt.Assert(t, qt.ErrorIs(err, ErrUnknownFile))

	// A later edit brings it back.
	v := w.Edit("widget.cs", widget)
	snap, err := w.ParseNow("widget.cs")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(snap.Version, v))
}

func TestShutdown(t *testing.T) {
	w := New(Options{Engine: &complete.Engine{Resolver: resolve.New(nil, nil)}})
	w.Edit("widget.cs", widget)
	w.Shutdown()
	w.Shutdown()

	qt.Assert(t, qt.Equals(w.Edit("widget.cs", widget), int64(0)))
	_, _, err := w.Complete("widget.cs", 0)
	qt.Assert(t, qt.IsTrue(errors.Is(err, ErrShutdown)))
}
