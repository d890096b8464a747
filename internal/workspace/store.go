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
	"slices"
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/parser"
)

// A Snapshot is the declaration tree of one version of a file.
type Snapshot struct {
	Path    string
	Version int64
	Text    string
	File    *ast.File

	// Diag is the first syntax error of the parse, if any.
	Diag *parser.Diagnostic
}

// store maps paths to their latest published snapshots. It is owned by
// the goroutine serving its mailbox; all access goes through storeFunc
// messages.
type store struct {
	snaps map[string]*Snapshot
	open  map[string]bool

	// evicted holds the version of the last evicted snapshot of a path,
	// below which nothing is published again.
	evicted map[string]int64
}

func newStore() *store {
	return &store{
		snaps:   map[string]*Snapshot{},
		open:    map[string]bool{},
		evicted: map[string]int64{},
	}
}

type storeFunc = func(*store)

// publish stores snap unless a snapshot of the same or a later version
// of its file is already stored or was evicted.
func (s *store) publish(snap *Snapshot) bool {
	if old, ok := s.snaps[snap.Path]; ok && old.Version >= snap.Version {
		return false
	}
	if snap.Version <= s.evicted[snap.Path] {
		return false
	}
	s.snaps[snap.Path] = snap
	return true
}

// evict drops the snapshots of files that are not open.
func (s *store) evict() []string {
	var gone []string
	for path := range s.snaps {
		if !s.open[path] {
			s.evicted[path] = s.snaps[path].Version
			delete(s.snaps, path)
			gone = append(gone, path)
		}
	}
	slices.Sort(gone)
	return gone
}

// remove drops path and refuses snapshots of versions up to floor.
func (s *store) remove(path string, floor int64) {
	delete(s.snaps, path)
	delete(s.open, path)
	s.evicted[path] = max(s.evicted[path], floor)
}

// files returns the trees of all files but path, ordered by path.
func (s *store) files(except string) []*ast.File {
	var snaps []*Snapshot
	for path, snap := range s.snaps {
		if path != except {
			snaps = append(snaps, snap)
		}
	}
	slices.SortFunc(snaps, func(a, b *Snapshot) int {
		return strings.Compare(a.Path, b.Path)
	})
	fs := make([]*ast.File, len(snaps))
	for i, snap := range snaps {
		fs[i] = snap.File
	}
	return fs
}
