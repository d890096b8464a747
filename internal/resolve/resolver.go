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

// Package resolve determines the static types of names and dotted
// expressions at an offset of a source file, and the members of those
// types.
//
// Types are looked up in the declaration trees of the open files first
// and in the persisted index second. All state is per query: a Resolver
// may serve concurrent queries as long as the trees and the index are
// not modified.
package resolve

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/internal/index"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

// maxDepth bounds base type walks and nested resolutions.
const maxDepth = 32

// A Resolver resolves names, expressions and types against the open
// files and a persisted index.
type Resolver struct {
	Index  index.Index
	Logger *slog.Logger

	// Usings holds namespaces imported implicitly by every file, such as
	// System.
	Usings []string
}

// New returns a Resolver using idx, which may be nil, and logger, which
// may be nil to discard log output.
func New(idx index.Index, logger *slog.Logger) *Resolver {
	return &Resolver{Index: idx, Logger: logger}
}

func (r *Resolver) index() index.Index {
	if r.Index == nil {
		return index.Empty
	}
	return r.Index
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// A Query holds the state of a single resolution request: the file the
// caret is in, its text and the offset of the caret.
type Query struct {
	File   *ast.File
	Text   string
	Offset int
	Scope  *scope.Context

	files []*ast.File

	types  map[string][]*ast.TypeDecl
	owners map[*ast.TypeDecl]*ast.File
	scopes map[*ast.TypeDecl]*scope.Context

	vars     []Variable
	varsDone bool
}

// NewQuery returns a query at offset in text, which was parsed into
// file. The trees of the other open files are passed as others; a tree
// for the same file name as file is ignored.
func NewQuery(file *ast.File, text string, offset int, others ...*ast.File) *Query {
	q := &Query{
		File:   file,
		Text:   text,
		Offset: offset,
		Scope:  scope.Locate(file, offset),
	}
	if file != nil {
		q.files = append(q.files, file)
	}
	for _, f := range others {
		if f == nil || f == file || (file != nil && f.Filename == file.Filename) {
			continue
		}
		q.files = append(q.files, f)
	}
	return q
}

func (q *Query) build() {
	if q.types != nil {
		return
	}
	q.types = make(map[string][]*ast.TypeDecl)
	q.owners = make(map[*ast.TypeDecl]*ast.File)
	q.scopes = make(map[*ast.TypeDecl]*scope.Context)
	for _, f := range q.files {
		ast.Types(f, func(t *ast.TypeDecl) bool {
			name := t.FullName()
			q.types[name] = append(q.types[name], t)
			q.owners[t] = f
			return true
		})
	}
}

// liveTypes returns the declarations of the type with the given full
// name in the open files. A partial type may have several.
func (q *Query) liveTypes(fullName string) []*ast.TypeDecl {
	q.build()
	return q.types[fullName]
}

// liveNames calls f for the full name of every type in the open files.
func (q *Query) liveNames(f func(name string, decls []*ast.TypeDecl)) {
	q.build()
	for name, decls := range q.types {
		f(name, decls)
	}
}

// scopeOf returns the context in which the declarations of t are
// resolved.
func (q *Query) scopeOf(t *ast.TypeDecl) *scope.Context {
	q.build()
	if c, ok := q.scopes[t]; ok {
		return c
	}
	offset := t.Pos.Offset
	if t.Body.Length > 0 {
		offset = t.Body.Offset + 1
	}
	c := scope.Locate(q.owners[t], offset)
	if c.Type != t {
		// The tree is not one of ours; fall back to the declared nesting.
		c = &scope.Context{Namespace: t.Namespace, Type: t}
	}
	q.scopes[t] = c
	return c
}

// indexScope returns a context for resolving type names recorded for the
// index type owner, which are qualified relative to its namespace.
func indexScope(owner string) *scope.Context {
	ns := ""
	if i := strings.LastIndexByte(owner, '.'); i >= 0 {
		ns = owner[:i]
	}
	return &scope.Context{Namespace: &ast.Namespace{Name: ns}}
}

// NamespaceTypes returns the top-level types of the open files declared
// in the namespace ns, sorted by full name. A partial type is listed
// once.
func (q *Query) NamespaceTypes(ns string) []*ast.TypeDecl {
	var ts []*ast.TypeDecl
	q.liveNames(func(name string, decls []*ast.TypeDecl) {
		d := decls[0]
		if d.Outer == nil && d.Namespace.FullName() == ns {
			ts = append(ts, d)
		}
	})
	slices.SortFunc(ts, func(a, b *ast.TypeDecl) int {
		return strings.Compare(a.FullName(), b.FullName())
	})
	return ts
}
