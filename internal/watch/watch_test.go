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

package watch

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type change struct {
	op   string
	path string
	text string
}

type sink chan change

func (s sink) Edit(path, text string) int64 {
	s <- change{"edit", path, text}
	return 1
}

func (s sink) Remove(path string) {
	s <- change{"remove", path, ""}
}

// await returns the next change to a path matching want.
func (s sink) await(t *testing.T, op, path string) change {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-s:
			if c.op == op && c.path == path {
				return c
			}
		case <-timeout:
			t.Fatalf("no %s of %s", op, path)
		}
	}
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	qt.Assert(t, qt.IsNil(os.MkdirAll(filepath.Dir(path), 0o777)))
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(text), 0o666)))
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.cs", "src/b.cs", "src/deep/c.cs", "src/notes.txt", "obj/d.cs"} {
		writeFile(t, filepath.Join(root, name), "")
	}
	got, err := Glob(root, []string{"*.cs", "src/**/*.cs", "src/b.cs"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(got, []string{
		filepath.Join(root, "a.cs"),
		filepath.Join(root, "src", "b.cs"),
		filepath.Join(root, "src", "deep", "c.cs"),
	}))
}

func TestNewBadPattern(t *testing.T) {
	_, err := New(t.TempDir(), []string{"[*.cs"}, make(sink), nil)
	qt.Assert(t, qt.ErrorMatches(err, `invalid pattern "\[\*\.cs"`))
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "src", "a.cs")
	writeFile(t, existing, "class A {}")

	s := make(sink, 100)
	w, err := New(root, []string{"src/**/*.cs"}, s, nil)
	qt.Assert(t, qt.IsNil(err))
	n, err := w.Start()
	qt.Assert(t, qt.IsNil(err))
	defer func() {
		qt.Check(t, qt.IsNil(w.Stop()))
	}()
	qt.Assert(t, qt.Equals(n, 1))
	qt.Assert(t, qt.Equals(s.await(t, "edit", existing).text, "class A {}"))

	writeFile(t, existing, "class A2 {}")
	for c := s.await(t, "edit", existing); c.text != "class A2 {}"; c = s.await(t, "edit", existing) {
	}

	// Files in new directories are seen too.
	added := filepath.Join(root, "src", "sub", "b.cs")
	writeFile(t, added, "class B {}")
	for c := s.await(t, "edit", added); c.text != "class B {}"; c = s.await(t, "edit", added) {
	}

	qt.Assert(t, qt.IsNil(os.Remove(existing)))
	s.await(t, "remove", existing)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	s := make(sink, 100)
	w, err := New(root, []string{"*.cs"}, s, nil)
	qt.Assert(t, qt.IsNil(err))
	_, err = w.Start()
	qt.Assert(t, qt.IsNil(err))

	writeFile(t, filepath.Join(root, "notes.txt"), "hello")
	marker := filepath.Join(root, "z.cs")
	writeFile(t, marker, "class Z {}")
	s.await(t, "edit", marker)
	qt.Assert(t, qt.IsNil(w.Stop()))

	close(s)
	for c := range s {
		qt.Check(t, qt.Equals(c.path, marker))
	}
}

func TestUnwatchableDirectoryIsLogged(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	w, err := New(root, []string{"**/*.cs"}, make(sink, 1), logger)
	qt.Assert(t, qt.IsNil(err))
	defer w.Stop()

	// The directory is gone by the time its creation is handled.
	w.addNewDir(filepath.Join(root, "vanished"))
	qt.Assert(t, qt.StringContains(buf.String(), `level=WARN msg="cannot watch directory"`))
	qt.Assert(t, qt.StringContains(buf.String(), "vanished"))
}
