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

// Package token defines constants representing the lexical tokens of C#
// source text and basic operations on tokens and source spans.
package token

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind is the lexical class of a token.
type Kind int

const (
	// Invalid marks the end of input or the position of a scanner error.
	Invalid Kind = iota
	Identifier
	Number
	String
	Char
	Punctuation
	Comment
	Other
)

var kindNames = [...]string{
	Invalid:     "invalid",
	Identifier:  "identifier",
	Number:      "number",
	String:      "string",
	Char:        "char",
	Punctuation: "punctuation",
	Comment:     "comment",
	Other:       "other",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Token is a single lexical element. Tokens are values and never change
// once produced by the scanner.
type Token struct {
	Kind   Kind
	Offset int    // byte offset of the first character
	Length int    // length in bytes
	Line   int    // line number, starting at 1
	Text   string // source text of the token
}

// Span returns the source span covered by t.
func (t Token) Span() Span {
	return Span{Offset: t.Offset, Length: t.Length, Line: t.Line}
}

// End returns the offset immediately after t.
func (t Token) End() int { return t.Offset + t.Length }

// IsValid reports whether t is a real token rather than the end marker.
func (t Token) IsValid() bool { return t.Kind != Invalid }

// Is reports whether t is a punctuation or identifier token with the given
// text. Escaped identifiers such as @class never match a keyword.
func (t Token) Is(text string) bool {
	return (t.Kind == Punctuation || t.Kind == Identifier) && t.Text == text
}

// IsKeyword reports whether t is an unescaped reserved keyword.
func (t Token) IsKeyword() bool {
	return t.Kind == Identifier && IsKeyword(t.Text)
}

// IsName reports whether t can be used as a name: an identifier that is
// not a reserved keyword. Contextual keywords such as var, get and value
// are names.
func (t Token) IsName() bool {
	return t.Kind == Identifier && !IsKeyword(t.Text)
}

// Name returns the identifier name of t with any leading @ removed,
// normalized to Unicode form C so that equivalent spellings compare
// equal.
func (t Token) Name() string {
	return NormalizeName(t.Text)
}

// NormalizeName strips a leading @ from name and normalizes it to
// Unicode form C.
func NormalizeName(name string) string {
	name = strings.TrimPrefix(name, "@")
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

func (t Token) String() string {
	if t.Kind == Invalid {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// A Span locates a syntactic construct in the source.
//
// The zero Span is empty and starts at offset 0; a Span is valid if its
// line is > 0.
type Span struct {
	Offset int // byte offset, starting at 0
	Length int // length in bytes
	Line   int // line of the first character, starting at 1
}

// IsValid reports whether s refers to a real source location.
func (s Span) IsValid() bool { return s.Line > 0 }

// End returns the offset immediately after s.
func (s Span) End() int { return s.Offset + s.Length }

// Contains reports whether offset lies in s. The end offset counts as
// inside so that a caret placed directly after a construct still belongs
// to it.
func (s Span) Contains(offset int) bool {
	return s.Offset <= offset && offset <= s.End()
}

// Encloses reports whether inner lies completely within s.
func (s Span) Encloses(inner Span) bool {
	return s.Offset <= inner.Offset && inner.End() <= s.End()
}

// Join returns the smallest span covering both s and t.
func (s Span) Join(t Span) Span {
	if !s.IsValid() {
		return t
	}
	if !t.IsValid() {
		return s
	}
	r := s
	if t.Offset < r.Offset {
		r.Offset, r.Line = t.Offset, t.Line
	}
	end := max(s.End(), t.End())
	r.Length = end - r.Offset
	return r
}

// SpanOf returns the span from the start of first to the end of last.
func SpanOf(first, last Token) Span {
	return Span{
		Offset: first.Offset,
		Length: last.End() - first.Offset,
		Line:   first.Line,
	}
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d+%d", s.Line, s.Offset, s.Length)
}
