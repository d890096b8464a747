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

// Package locals finds the local variables declared in a member body.
//
// The parser is heuristic. It does not understand statements; it looks
// for things shaped like declarations at the places a statement may
// start and keeps block scoping by truncating its result whenever a
// block closes. It may report locals that are not declarations, but it
// must not miss a real one.
package locals

import (
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

// A Local is a local variable declaration.
type Local struct {
	Type  string     // declared type text, such as var or List<int>
	Name  string     // normalized name
	Value string     // raw initializer text; empty if absent
	Span  token.Span // span of the name
}

// Parse returns the locals visible at stop in the body of text starting
// at start, in declaration order. Later locals shadow earlier ones with
// the same name.
func Parse(text string, start, stop int) []Local {
	p := newParser(text, start, stop)
	p.run()
	return p.locals
}

// Statement-like words that are not keywords but never start a
// declaration.
var notTypes = map[string]bool{
	"await":  true,
	"yield":  true,
	"nameof": true,
	"when":   true,
}

// Keywords whose parenthesised header may declare locals scoped to the
// statement that follows.
var headers = map[string]bool{
	"for":     true,
	"foreach": true,
	"using":   true,
	"catch":   true,
	"fixed":   true,
}

type parser struct {
	toks   []token.Token
	locals []Local

	marks []int // locals count at each open block

	// A header such as for (...) scopes its locals to the statement that
	// follows the closing parenthesis.
	headerMark  int
	headerDepth int  // paren depth of the open header, or -1
	pending     bool // header closed, its statement has not started
	parens      int
}

func newParser(text string, start, stop int) *parser {
	p := &parser{headerDepth: -1}
	if start < 0 {
		start = 0
	}
	if stop > len(text) {
		stop = len(text)
	}
	var s scanner.Scanner
	s.Init(text, start)
	for {
		t := s.Current()
		if !t.IsValid() || t.Offset >= stop {
			break
		}
		p.toks = append(p.toks, t)
		s.Advance()
	}
	return p
}

func (p *parser) tok(i int) token.Token {
	if 0 <= i && i < len(p.toks) {
		return p.toks[i]
	}
	return token.Token{Offset: -1}
}

func (p *parser) run() {
	atStart := true
	for i := 0; i < len(p.toks); {
		t := p.toks[i]
		if atStart {
			if n, ok := p.declaration(i); ok {
				i = n
				atStart = false
				continue
			}
		}
		atStart = false
		switch {
		case t.Is("{"):
			if p.pending {
				p.marks = append(p.marks, p.headerMark)
				p.pending = false
			} else {
				p.marks = append(p.marks, len(p.locals))
			}
			atStart = true

		case t.Is("}"):
			if n := len(p.marks); n > 0 {
				p.locals = p.locals[:p.marks[n-1]]
				p.marks = p.marks[:n-1]
			}
			atStart = true

		case t.Is(";"):
			if p.headerDepth < 0 && p.pending {
				// The header governed a single statement.
				p.locals = p.locals[:p.headerMark]
				p.pending = false
			}
			atStart = true

		case t.Is(":"), t.Is("else"), t.Is("do"), t.Is("using"), t.Is("const"):
			atStart = true

		case t.Is("("):
			p.parens++
			if prev := p.tok(i - 1); i > 0 && prev.Kind == token.Identifier && headers[prev.Text] {
				p.headerMark = len(p.locals)
				p.headerDepth = p.parens
				atStart = true
			}

		case t.Is(")"):
			if p.parens == p.headerDepth {
				p.headerDepth = -1
				p.pending = true
			}
			if p.parens > 0 {
				p.parens--
			}

		case t.Is("out") || t.Is("is"):
			// out T x and is T x introduce a local in the enclosing
			// statement.
			if n, ok := p.single(i + 1); ok {
				i = n
				continue
			}
		}
		i++
	}
}

// declaration tries to parse a declaration at i. It returns the index
// after the declaration.
func (p *parser) declaration(i int) (int, bool) {
	t := p.tok(i)
	if !isTypeStart(t) {
		return i, false
	}
	typ, j, ok := p.parseType(i)
	if !ok {
		return i, false
	}
	var found []Local
	for {
		name := p.tok(j)
		if !name.IsName() {
			return i, false
		}
		l := Local{Type: typ, Name: name.Name(), Span: name.Span()}
		j++
		if p.tok(j).Is("=") {
			var value string
			value, j = p.initializer(j + 1)
			l.Value = value
		}
		found = append(found, l)
		if !p.tok(j).Is(",") {
			break
		}
		j++
	}
	switch end := p.tok(j); {
	case end.Offset < 0:
		// The caret is inside the declaration.
	case end.Is(";"), end.Is(")"), end.Is("in"):
	case end.Is("{") && p.lambdaBody(j):
		// The caret is inside a lambda in the initializer.
	default:
		return i, false
	}
	p.locals = append(p.locals, found...)
	return j, true
}

// single parses a type followed by one name, as in out int x.
func (p *parser) single(i int) (int, bool) {
	if !isTypeStart(p.tok(i)) {
		return i, false
	}
	typ, j, ok := p.parseType(i)
	if !ok {
		return i, false
	}
	name := p.tok(j)
	if !name.IsName() {
		return i, false
	}
	p.locals = append(p.locals, Local{Type: typ, Name: name.Name(), Span: name.Span()})
	return j + 1, true
}

func isTypeStart(t token.Token) bool {
	if t.Kind != token.Identifier {
		return false
	}
	if token.IsBuiltinType(t.Text) {
		return true
	}
	return t.IsName() && !notTypes[t.Text]
}

// parseType parses a type expression at i: a qualified name with
// optional generic arguments followed by array, nullable and pointer
// suffixes. It returns the type text and the index after it.
func (p *parser) parseType(i int) (string, int, bool) {
	j, ok := p.skipType(i)
	if !ok {
		return "", i, false
	}
	return token.Join(p.toks[i:j]), j, true
}

func (p *parser) skipType(i int) (int, bool) {
	for {
		t := p.tok(i)
		if !(t.IsName() || t.Kind == token.Identifier && token.IsBuiltinType(t.Text)) {
			return i, false
		}
		i++
		if p.tok(i).Is("<") {
			i++
			for {
				var ok bool
				if i, ok = p.skipType(i); !ok {
					return i, false
				}
				if p.tok(i).Is(",") {
					i++
					continue
				}
				if !p.tok(i).Is(">") {
					return i, false
				}
				i++
				break
			}
		}
		if (p.tok(i).Is(".") || p.tok(i).Is("::")) && p.tok(i+1).IsName() {
			i++
			continue
		}
		break
	}
	for {
		switch t := p.tok(i); {
		case t.Is("?"), t.Is("*"):
			i++
		case t.Is("["):
			j := i + 1
			for p.tok(j).Is(",") {
				j++
			}
			if !p.tok(j).Is("]") {
				return i, true
			}
			i = j + 1
		default:
			return i, true
		}
	}
}

// initializer collects the raw text of an initializer starting at i,
// stopping at a comma, semicolon or closing parenthesis outside of any
// brackets or generic argument lists.
//
// If the tokens run out inside the body of a lambda, the initializer
// ends at the brace opening the outermost such body, so that the
// statements of the body are scanned as a block.
func (p *parser) initializer(i int) (string, int) {
	start := i
	depth := 0
	var bodies []int // depth at which each open lambda body started
	var first int    // index of the brace of bodies[0]
	for ; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind != token.Punctuation {
			continue
		}
		switch t.Text {
		case "{":
			if p.lambdaBody(i) {
				if len(bodies) == 0 {
					first = i
				}
				bodies = append(bodies, depth)
			}
			depth++
		case "(", "[":
			depth++
		case ")", "]", "}":
			if depth == 0 {
				return token.Join(p.toks[start:i]), i
			}
			depth--
			if n := len(bodies); t.Text == "}" && n > 0 && bodies[n-1] == depth {
				bodies = bodies[:n-1]
			}
		case "<":
			// Skip generic arguments, as in new Dictionary<int, string>().
			if i > start && p.toks[i-1].Kind == token.Identifier {
				if j, ok := p.skipType(i - 1); ok && j > i {
					i = j - 1
				}
			}
		case ",", ";":
			if depth == 0 {
				return token.Join(p.toks[start:i]), i
			}
		}
	}
	if len(bodies) > 0 {
		return token.Join(p.toks[start:first]), first
	}
	return token.Join(p.toks[start:i]), i
}

// lambdaBody reports whether the brace at i opens the block body of a
// lambda or an anonymous method.
func (p *parser) lambdaBody(i int) bool {
	prev := p.tok(i - 1)
	switch {
	case prev.Is("=>"), prev.Is("delegate"):
		return true
	case !prev.Is(")"):
		return false
	}
	// delegate (int x) { ... }
	depth := 0
	for j := i - 1; j >= 0; j-- {
		switch {
		case p.toks[j].Is(")"):
			depth++
		case p.toks[j].Is("("):
			if depth--; depth == 0 {
				return p.tok(j - 1).Is("delegate")
			}
		}
	}
	return false
}
