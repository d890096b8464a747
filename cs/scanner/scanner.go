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

// Package scanner implements a scanner for C# source text. Tokens are
// produced lazily; any number of tokens may be inspected ahead of the
// current one without consuming them.
//
// Whitespace, comments and preprocessor lines are not returned as tokens
// but are recorded as trivia, so that the concatenation of all token and
// trivia texts in offset order reproduces the scanned text exactly.
package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jesse99/Continuum-sub001/cs/errors"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

// A Mode value is a set of flags (or 0).
// They control scanner behavior.
type Mode uint

const (
	// ScanComments returns comments as Comment tokens instead of
	// recording them as trivia.
	ScanComments Mode = 1 << iota
)

// TriviaKind classifies text that is skipped between tokens.
type TriviaKind int

const (
	Whitespace TriviaKind = iota
	LineComment
	BlockComment
	Directive // preprocessor line such as #region or #if DEBUG
)

// Trivia is skipped source text with its location.
type Trivia struct {
	Kind TriviaKind
	Span token.Span
	Text string
}

// A Scanner holds the scanner's internal state while processing a given
// text. It can be allocated as part of another data structure but must be
// initialized via Init before use. A Scanner must not be shared between
// goroutines.
type Scanner struct {
	// immutable state
	src  string
	mode Mode

	// scanning state
	offset    int  // reading offset
	line      int  // line at offset
	lineStart bool // only whitespace seen since the start of the line
	buf       []token.Token
	trivia    []Trivia
	err       *errors.ScanError
}

// New returns a scanner for text positioned at offset.
func New(text string, offset int, mode ...Mode) *Scanner {
	s := &Scanner{}
	s.Init(text, offset, mode...)
	return s
}

// Init prepares s to tokenize text starting at offset. Line numbers are
// relative to the start of text, not to offset.
func (s *Scanner) Init(text string, offset int, mode ...Mode) {
	offset = min(max(offset, 0), len(text))
	s.src = text
	s.mode = 0
	for _, m := range mode {
		s.mode |= m
	}
	s.offset = offset
	s.line = 1 + strings.Count(text[:offset], "\n")
	s.lineStart = offset == 0 || text[offset-1] == '\n'
	s.buf = s.buf[:0]
	s.trivia = nil
	s.err = nil
}

// Current returns the current token. At the end of input, or after a
// lexical error, it returns an Invalid token.
func (s *Scanner) Current() token.Token {
	return s.LookAhead(0)
}

// LookAhead returns the token n positions after the current one without
// consuming anything.
func (s *Scanner) LookAhead(n int) token.Token {
	for len(s.buf) <= n {
		t := s.scan()
		s.buf = append(s.buf, t)
		if t.Kind == token.Invalid {
			// Pad with copies of the end marker rather than scanning past
			// the end again.
			for len(s.buf) <= n {
				s.buf = append(s.buf, t)
			}
		}
	}
	return s.buf[n]
}

// Advance consumes the current token.
func (s *Scanner) Advance() {
	if len(s.buf) == 0 {
		s.LookAhead(0)
	}
	if s.buf[0].Kind == token.Invalid {
		return
	}
	s.buf = s.buf[1:]
}

// Err returns the lexical error that stopped the scanner, if any.
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Trivia returns the whitespace, comments and directives seen so far.
func (s *Scanner) Trivia() []Trivia {
	return s.trivia
}

func (s *Scanner) peek(i int) byte {
	if p := s.offset + i; p < len(s.src) {
		return s.src[p]
	}
	return 0
}

func (s *Scanner) runeAt(p int) (rune, int) {
	if p >= len(s.src) {
		return -1, 0
	}
	if c := s.src[p]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(s.src[p:])
}

func (s *Scanner) fail(start int, msg string) token.Token {
	s.err = &errors.ScanError{
		Pos:     token.Span{Offset: start, Length: s.offset - start, Line: s.lineOf(start)},
		Message: msg,
	}
	s.offset = len(s.src)
	return s.end()
}

func (s *Scanner) lineOf(offset int) int {
	return 1 + strings.Count(s.src[:offset], "\n")
}

func (s *Scanner) end() token.Token {
	return token.Token{Kind: token.Invalid, Offset: len(s.src), Line: s.line}
}

func (s *Scanner) emit(kind token.Kind, start int) token.Token {
	t := token.Token{
		Kind:   kind,
		Offset: start,
		Length: s.offset - start,
		Line:   s.line,
		Text:   s.src[start:s.offset],
	}
	s.line += strings.Count(t.Text, "\n")
	s.lineStart = false
	return t
}

func (s *Scanner) addTrivia(kind TriviaKind, start int) {
	text := s.src[start:s.offset]
	s.trivia = append(s.trivia, Trivia{
		Kind: kind,
		Span: token.Span{Offset: start, Length: len(text), Line: s.line},
		Text: text,
	})
	s.line += strings.Count(text, "\n")
}

func (s *Scanner) scan() token.Token {
	if s.err != nil {
		return s.end()
	}
	for {
		if s.offset >= len(s.src) {
			return s.end()
		}
		start := s.offset
		r, w := s.runeAt(start)
		switch {
		case isSpace(r):
			for s.offset < len(s.src) {
				r, w := s.runeAt(s.offset)
				if !isSpace(r) {
					break
				}
				if r == '\n' {
					s.lineStart = true
				}
				s.offset += w
			}
			s.addTrivia(Whitespace, start)
			continue

		case r == '#' && s.lineStart:
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
			s.addTrivia(Directive, start)
			continue

		case r == '/' && s.peek(1) == '/':
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
			if s.mode&ScanComments != 0 {
				return s.emit(token.Comment, start)
			}
			s.addTrivia(LineComment, start)
			continue

		case r == '/' && s.peek(1) == '*':
			i := strings.Index(s.src[start+2:], "*/")
			if i < 0 {
				s.offset = len(s.src)
				return s.fail(start, "comment not terminated")
			}
			s.offset = start + 2 + i + 2
			if s.mode&ScanComments != 0 {
				return s.emit(token.Comment, start)
			}
			s.addTrivia(BlockComment, start)
			continue
		}

		s.lineStart = false
		switch {
		case isLetter(r) || r == '_':
			s.offset += w
			s.scanIdentifierRest()
			return s.emit(token.Identifier, start)

		case r == '@':
			switch c := s.peek(1); {
			case c == '"':
				s.offset += 2
				return s.scanVerbatim(start)
			case c == '$' && s.peek(2) == '"':
				s.offset += 3
				return s.scanVerbatim(start)
			}
			if r2, w2 := s.runeAt(start + 1); isLetter(r2) || r2 == '_' {
				s.offset += 1 + w2
				s.scanIdentifierRest()
				return s.emit(token.Identifier, start)
			}

		case r == '$':
			switch {
			case s.peek(1) == '"':
				s.offset += 2
				return s.scanInterpolated(start)
			case s.peek(1) == '@' && s.peek(2) == '"':
				s.offset += 3
				return s.scanVerbatim(start)
			}

		case isDecimal(r) || r == '.' && isDecimal(rune(s.peek(1))):
			s.scanNumber()
			return s.emit(token.Number, start)

		case r == '"':
			s.offset++
			if !s.scanQuoted('"') {
				return s.fail(start, "string literal not terminated")
			}
			return s.emit(token.String, start)

		case r == '\'':
			s.offset++
			if !s.scanQuoted('\'') {
				return s.fail(start, "char literal not terminated")
			}
			return s.emit(token.Char, start)
		}

		if n := punctLen(s.src[start:]); n > 0 {
			s.offset += n
			return s.emit(token.Punctuation, start)
		}
		s.offset += w
		return s.emit(token.Other, start)
	}
}

func (s *Scanner) scanIdentifierRest() {
	for s.offset < len(s.src) {
		r, w := s.runeAt(s.offset)
		if !isIdentPart(r) {
			return
		}
		s.offset += w
	}
}

func (s *Scanner) scanNumber() {
	if s.peek(0) == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X') {
		s.offset += 2
		for isHex(s.peek(0)) || s.peek(0) == '_' {
			s.offset++
		}
		s.scanSuffix()
		return
	}
	if s.peek(0) == '0' && (s.peek(1) == 'b' || s.peek(1) == 'B') {
		s.offset += 2
		for c := s.peek(0); c == '0' || c == '1' || c == '_'; c = s.peek(0) {
			s.offset++
		}
		s.scanSuffix()
		return
	}
	s.scanDigits()
	if s.peek(0) == '.' && isDecimal(rune(s.peek(1))) {
		s.offset++
		s.scanDigits()
	}
	if c := s.peek(0); c == 'e' || c == 'E' {
		p := 1
		if c := s.peek(1); c == '+' || c == '-' {
			p++
		}
		if isDecimal(rune(s.peek(p))) {
			s.offset += p
			s.scanDigits()
		}
	}
	s.scanSuffix()
}

func (s *Scanner) scanDigits() {
	for c := s.peek(0); isDecimal(rune(c)) || c == '_'; c = s.peek(0) {
		s.offset++
	}
}

func (s *Scanner) scanSuffix() {
	for i := 0; i < 2; i++ {
		switch s.peek(0) {
		case 'u', 'U', 'l', 'L', 'f', 'F', 'd', 'D', 'm', 'M':
			s.offset++
		default:
			return
		}
	}
}

// scanQuoted scans the rest of a regular string or char literal whose
// opening quote has been consumed. It reports false if the literal is not
// terminated on the same line.
func (s *Scanner) scanQuoted(quote byte) bool {
	for s.offset < len(s.src) {
		switch c := s.src[s.offset]; c {
		case quote:
			s.offset++
			return true
		case '\n':
			return false
		case '\\':
			s.offset++
			if s.offset >= len(s.src) || s.src[s.offset] == '\n' {
				return false
			}
			_, w := s.runeAt(s.offset)
			s.offset += w
		default:
			s.offset++
		}
	}
	return false
}

// scanVerbatim scans the rest of a verbatim string. Quotes are escaped by
// doubling them and newlines are allowed.
func (s *Scanner) scanVerbatim(start int) token.Token {
	for s.offset < len(s.src) {
		if s.src[s.offset] == '"' {
			if s.peek(1) == '"' {
				s.offset += 2
				continue
			}
			s.offset++
			return s.emit(token.String, start)
		}
		s.offset++
	}
	return s.fail(start, "verbatim string literal not terminated")
}

// scanInterpolated scans the rest of an interpolated string. Quotes inside
// interpolation holes start nested literals.
func (s *Scanner) scanInterpolated(start int) token.Token {
	depth := 0
	for s.offset < len(s.src) {
		c := s.src[s.offset]
		switch {
		case c == '\n' && depth == 0:
			return s.fail(start, "string literal not terminated")
		case c == '\\' && depth == 0:
			s.offset += 2
			continue
		case c == '{' && depth == 0 && s.peek(1) == '{':
			s.offset += 2
			continue
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == '"' && depth == 0:
			s.offset++
			return s.emit(token.String, start)
		case c == '"' || c == '\'':
			s.offset++
			if !s.scanQuoted(c) {
				return s.fail(start, "string literal not terminated")
			}
			continue
		}
		s.offset++
	}
	return s.fail(start, "string literal not terminated")
}

// punctuators lists the multi-character operators, longest first. >> and
// >>= are deliberately absent: closing generic argument lists such as
// List<List<int>> must scan as separate > tokens.
var punctuators = []string{
	"<<=",
	"::", "??", "=>", "->", "++", "--", "&&", "||", "==", "!=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<",
}

func punctLen(s string) int {
	for _, p := range punctuators {
		if strings.HasPrefix(s, p) {
			return len(p)
		}
	}
	if strings.IndexByte("{}[]().,:;+-*/%&|^!~=<>?", s[0]) >= 0 {
		return 1
	}
	return 0
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return r >= utf8.RuneSelf && unicode.IsSpace(r)
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' ||
		r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.Is(unicode.Nl, r))
}

func isDecimal(r rune) bool { return '0' <= r && r <= '9' }

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// isIdentPart reports whether r may continue an identifier: letters,
// decimal digits, connectors, combining marks and formatting characters.
func isIdentPart(r rune) bool {
	if isLetter(r) || isDecimal(r) || r == '_' {
		return true
	}
	return r >= utf8.RuneSelf && unicode.In(r, unicode.Nd, unicode.Mn, unicode.Mc, unicode.Pc, unicode.Cf)
}

// IsIdentChar reports whether r may appear in an identifier. It is used by
// the text-level helpers that scan backwards from a caret.
func IsIdentChar(r rune) bool {
	return isIdentPart(r) || r == '@'
}
