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

package resolve

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/cs/token"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

const (
	arrayType    = "System.Array"
	nullableType = "System.Nullable`1"
	objectType   = "System.Object"
)

// A typeName is the canonical form of a written type.
type typeName struct {
	name   string // dotted name with arity suffixes
	global bool   // fully qualified: written with global:: or a builtin
}

// Canonical returns the canonical form of the written type text: keyword
// aliases become library names, arrays become System.Array, nullable
// types System.Nullable`1 and generic argument lists an arity suffix, as
// in Dictionary`2. It reports false for pointer types and text that is
// not a type.
func Canonical(text string) (string, bool) {
	n, ok := parseTypeName(text)
	return n.name, ok
}

func parseTypeName(text string) (typeName, bool) {
	var n typeName
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if s == "" || strings.HasSuffix(s, "*") {
		return n, false
	}
	if strings.HasSuffix(s, "]") {
		i := strings.LastIndexByte(s, '[')
		if i <= 0 || strings.Trim(s[i+1:len(s)-1], ",") != "" {
			return n, false
		}
		n.name, n.global = arrayType, true
		return n, true
	}
	if strings.HasSuffix(s, "?") {
		n.name, n.global = nullableType, true
		return n, true
	}
	if s[0] == '(' {
		// Tuple types are instances of System.ValueTuple.
		args, ok := countArgs(s, 0)
		if !ok || args < 2 {
			return n, false
		}
		n.name, n.global = "System.ValueTuple`"+strconv.Itoa(args), true
		return n, true
	}
	if i := strings.Index(s, "::"); i >= 0 {
		n.global = true
		s = s[i+2:]
	}
	if full, ok := token.Builtin(s); ok {
		n.name, n.global = full, true
		return n, true
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '<':
			args, ok := countArgs(s, i)
			if !ok {
				return n, false
			}
			b.WriteByte('`')
			b.WriteString(strconv.Itoa(args))
			i = skipBalanced(s, i)
		case c == '.' || c == '`' || ('0' <= c && c <= '9'):
			b.WriteByte(c)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if !scanner.IsIdentChar(r) {
				return n, false
			}
			if r != '@' {
				b.WriteString(s[i : i+size])
			}
			i += size
		}
	}
	n.name = b.String()
	if n.name == "" || strings.HasPrefix(n.name, ".") || strings.HasSuffix(n.name, ".") || strings.Contains(n.name, "..") {
		return n, false
	}
	return n, true
}

// countArgs counts the top-level comma separated arguments of the
// bracketed list starting at s[i].
func countArgs(s string, i int) (int, bool) {
	end := skipBalanced(s, i)
	if end < 0 {
		return 0, false
	}
	args, depth := 1, 0
	for j := i + 1; j < end-1; j++ {
		switch s[j] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args++
			}
		}
	}
	return args, true
}

// skipBalanced returns the offset after the bracket that closes the one
// at s[i], or -1.
func skipBalanced(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return -1
}

// ResolveType resolves the written type name in the scope of q.
func (r *Resolver) ResolveType(q *Query, name string, access Access) (Target, bool) {
	return r.resolveType(q, q.Scope, name, access)
}

func (r *Resolver) resolveType(q *Query, c *scope.Context, text string, access Access) (Target, bool) {
	n, ok := parseTypeName(text)
	if !ok {
		return Target{}, false
	}
	if !n.global && isTypeParam(c, n.name) {
		return Target{}, false
	}
	for _, cand := range candidates(c, n, r.Usings) {
		if t, ok := r.lookup(q, cand, access); ok {
			return t, true
		}
	}
	return Target{}, false
}

// lookup finds the type with the given full name, preferring the open
// files to the index.
func (r *Resolver) lookup(q *Query, fullName string, access Access) (Target, bool) {
	if decls := q.liveTypes(fullName); len(decls) > 0 {
		return Target{Name: fullName, Source: Live{Decl: decls[0]}, Access: access}, true
	}
	if typ, ok := r.index().FindType(fullName); ok {
		return Target{Name: fullName, Source: Indexed{Type: typ}, Access: access}, true
	}
	return Target{}, false
}

// candidates lists the full names a type name may refer to in c, in
// lookup order. The implicit usings apply to every file after its own.
func candidates(c *scope.Context, n typeName, implicit []string) []string {
	if n.global {
		return []string{n.name}
	}
	var names []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}

	first, rest, dotted := strings.Cut(n.name, ".")
	if target, ok := c.Alias(stripArity(first)); ok {
		if a, ok := parseTypeName(target); ok {
			if dotted {
				add(a.name + "." + rest)
			} else {
				add(a.name)
			}
		}
	}
	for _, t := range c.Types() {
		add(t.FullName() + "." + n.name)
	}
	for _, ns := range c.Namespaces() {
		if ns == "" {
			add(n.name)
		} else {
			add(ns + "." + n.name)
		}
	}
	for _, u := range c.Usings() {
		add(u + "." + n.name)
	}
	for _, u := range implicit {
		add(u + "." + n.name)
	}
	return names
}

func stripArity(name string) string {
	if i := strings.IndexByte(name, '`'); i >= 0 {
		return name[:i]
	}
	return name
}

// isTypeParam reports whether name is a generic parameter of an enclosing
// type or method, which cannot be resolved without type arguments.
func isTypeParam(c *scope.Context, name string) bool {
	if strings.ContainsAny(name, ".`") {
		return false
	}
	if m, ok := c.Member.(*ast.Method); ok {
		for _, p := range m.TypeParams {
			if p == name {
				return true
			}
		}
	}
	for _, t := range c.Types() {
		for _, p := range t.TypeParams {
			if p == name {
				return true
			}
		}
	}
	return false
}
