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

// Package complete produces completion candidates for a caret position
// in a source file: the members of the expression before a dot, or the
// names in scope otherwise.
package complete

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/internal/resolve"
)

// An Item is a completion candidate.
type Item struct {
	// Text is the display text, such as Add(int key, string value) for
	// a method.
	Text string

	// Label describes the candidate: the type of a variable, field or
	// property, the return type of a method, or the kind of a type.
	Label string

	Kind string

	// Owner is the full name of the declaring type. It is empty for
	// locals, arguments and types.
	Owner string

	// Filter is matched against the text typed before the caret.
	Filter string

	// Args holds the parameters of a method or indexer.
	Args []Arg

	// Highlight locates the active argument in Text when the caret is
	// inside a call of the method. It is empty otherwise.
	Highlight Range
}

// An Arg is a parameter of a callable Item.
type Arg struct {
	Type string
	Name string
}

// A Range is a half-open byte range.
type Range struct {
	Start, End int
}

// Empty reports whether r covers no text.
func (r Range) Empty() bool { return r.End <= r.Start }

// An Engine answers completion requests. Its zero value is not usable;
// Resolver must be set.
type Engine struct {
	Resolver *resolve.Resolver

	// MaxCandidates limits the number of items returned. Zero means no
	// limit.
	MaxCandidates int

	// Threshold is the minimum Jaro-Winkler similarity of a candidate
	// that does not start with the typed text. Zero disables fuzzy
	// matching.
	Threshold float32

	Logger *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// Complete returns the candidates at caret in text, which was parsed into
// file. The trees of the other open files are passed as others.
//
// After a member access the candidates are the members of the type of
// the expression before the dot. Elsewhere they are the variables, the
// members of the enclosing types and the types of the open files visible
// from the caret. Candidates are filtered by, and ranked against, the
// partial name before the caret.
func (e *Engine) Complete(file *ast.File, text string, caret int, others ...*ast.File) []Item {
	caret = min(max(caret, 0), len(text))
	start := wordStart(text, caret)
	prefix := text[start:caret]
	q := resolve.NewQuery(file, text, caret, others...)

	var items []Item
	if dot, ok := memberDot(text, start); ok {
		t, ok := e.Resolver.ResolveExpr(q, text, dot)
		if !ok {
			e.logger().Debug("no completion target", "caret", caret)
			return nil
		}
		items = memberItems(e.Resolver.Members(q, t))
	} else {
		items = e.names(q)
	}
	return e.rank(items, prefix)
}

// Signatures returns the overloads of the method whose argument list
// encloses caret, with the argument the caret is in highlighted. It
// returns nil if the caret is not inside a call of a resolvable method.
func (e *Engine) Signatures(file *ast.File, text string, caret int, others ...*ast.File) []Item {
	f, ok := openFrame(text, caret)
	if !ok || f.open != "(" {
		return nil
	}
	start, end := calleeName(text, f.offset)
	if start == end {
		return nil
	}
	name := text[start:end]
	q := resolve.NewQuery(file, text, caret, others...)

	var targets []resolve.Target
	if dot, ok := memberDot(text, start); ok {
		t, ok := e.Resolver.ResolveExpr(q, text, dot)
		if !ok {
			return nil
		}
		targets = append(targets, t)
	} else {
		targets = e.Resolver.ImplicitTargets(q)
	}

	var items []Item
	seen := map[string]bool{}
	for _, t := range targets {
		for _, m := range e.Resolver.Members(q, t) {
			if m.Kind != resolve.Method || m.Name != name || seen[m.Signature()] {
				continue
			}
			seen[m.Signature()] = true
			it := memberItem(m)
			it.Highlight = argRange(it.Text, f.commas)
			items = append(items, it)
		}
	}
	return items
}

// wordStart returns the start of the identifier that ends at caret.
func wordStart(text string, caret int) int {
	i := caret
	for i > 0 {
		r, w := utf8.DecodeLastRuneInString(text[:i])
		if !scanner.IsIdentChar(r) {
			break
		}
		i -= w
	}
	return i
}

// memberDot reports whether the identifier at start follows a member
// access, and returns the offset just after the dot.
func memberDot(text string, start int) (int, bool) {
	i := start
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	if i == 0 || text[i-1] != '.' {
		return 0, false
	}
	ws := wordStart(text, i-1)
	if word := text[ws : i-1]; isDigits(word) && (ws == 0 || text[ws-1] != '.') {
		// A decimal point, as in 1.
		return 0, false
	}
	return i, true
}

// calleeName returns the span of the method name before the opening
// parenthesis at open, skipping a generic argument list.
func calleeName(text string, open int) (start, end int) {
	end = open
	for end > 0 && strings.ContainsRune(" \t\r\n", rune(text[end-1])) {
		end--
	}
	if end > 0 && text[end-1] == '>' {
		depth := 0
		for i := end - 1; i >= 0; i-- {
			switch text[i] {
			case '>':
				depth++
			case '<':
				depth--
			}
			if depth == 0 {
				end = i
				break
			}
		}
	}
	return wordStart(text, end), end
}

// argRange returns the range of the argument with the given index in
// the parameter list of a rendered signature.
func argRange(sig string, index int) Range {
	open := strings.IndexByte(sig, '(')
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return Range{}
	}
	if open+1 == len(sig)-1 {
		return Range{}
	}
	start, depth, n := open+1, 0, 0
	for i := open + 1; i <= len(sig)-1; i++ {
		c := sig[i]
		switch {
		case c == '<' || c == '[' || c == '(':
			depth++
		case (c == '>' || c == ']' || c == ')') && depth > 0:
			depth--
		case c == ',' && depth == 0, i == len(sig)-1:
			if n == index {
				return Range{Start: start, End: i}
			}
			n++
			start = i + len(", ")
		}
	}
	return Range{}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (e *Engine) names(q *resolve.Query) []Item {
	var items []Item
	for _, v := range q.Variables() {
		it := Item{Text: v.Name, Label: v.Type, Kind: v.Origin.String(), Filter: v.Name}
		if v.Owner != nil {
			it.Owner = v.Owner.FullName()
		}
		items = append(items, it)
	}
	for _, t := range e.Resolver.ImplicitTargets(q) {
		items = append(items, memberItems(e.Resolver.Members(q, t))...)
	}
	c := q.Scope
	nss := append(c.Namespaces(), c.Usings()...)
	for _, ns := range append(nss, e.Resolver.Usings...) {
		for _, t := range q.NamespaceTypes(ns) {
			name := t.Name
			if len(t.TypeParams) > 0 {
				name += "<" + strings.Join(t.TypeParams, ", ") + ">"
			}
			items = append(items, Item{Text: name, Label: t.FullName(), Kind: t.Kind.String(), Filter: t.Name})
		}
	}
	return dedupe(items)
}

// dedupe removes items with the same text as an earlier one. Variables
// come first, so a field listed as a variable hides its member item.
func dedupe(items []Item) []Item {
	seen := map[string]bool{}
	out := items[:0]
	for _, it := range items {
		if seen[it.Text] {
			continue
		}
		seen[it.Text] = true
		out = append(out, it)
	}
	return out
}

func memberItems(ms []resolve.Member) []Item {
	items := make([]Item, 0, len(ms))
	for _, m := range ms {
		if m.Kind == resolve.Indexer {
			continue
		}
		items = append(items, memberItem(m))
	}
	return items
}

func memberItem(m resolve.Member) Item {
	it := Item{
		Text:   m.Name,
		Label:  m.Type,
		Kind:   m.Kind.String(),
		Owner:  m.Owner,
		Filter: m.Name,
	}
	if m.Kind != resolve.Method {
		return it
	}
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, typ := range m.ArgTypes {
		name := ""
		if i < len(m.ArgNames) {
			name = m.ArgNames[i]
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typ)
		if name != "" {
			b.WriteByte(' ')
			b.WriteString(name)
		}
		it.Args = append(it.Args, Arg{Type: typ, Name: name})
	}
	b.WriteByte(')')
	it.Text = b.String()
	return it
}
