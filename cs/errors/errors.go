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

// Package errors defines shared types for handling errors found while
// scanning and parsing C# source.
package errors

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/token"
)

// New is a convenience wrapper for errors.New in the core library.
func New(msg string) error {
	return errors.New(msg)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Error is the common interface of positioned errors.
type Error interface {
	error

	// Span reports the source location of the error.
	Span() token.Span

	// Msg reports the error message without position information.
	Msg() string
}

// A ScanError is a lexical error, such as an unterminated literal or
// comment. It is fatal to the tokenization pass that produced it.
type ScanError struct {
	Pos     token.Span
	Message string
}

func (e *ScanError) Span() token.Span { return e.Pos }
func (e *ScanError) Msg() string      { return e.Message }

func (e *ScanError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Pos.Line, e.Message)
}

// A SyntaxError reports an unexpected token found by the parser.
type SyntaxError struct {
	Pos     token.Span
	Token   string // text of the offending token; empty at end of input
	Message string
}

func (e *SyntaxError) Span() token.Span { return e.Pos }
func (e *SyntaxError) Msg() string      { return e.Message }

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: %s at end of input", e.Pos.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s at %q", e.Pos.Line, e.Message, e.Token)
}

// List is a list of positioned errors.
// The zero value for a List is an empty List ready to use.
type List []Error

// Add adds err to p. Errors that carry no position are recorded with a
// zero span.
func (p *List) Add(err error) {
	if err == nil {
		return
	}
	var e Error
	if !errors.As(err, &e) {
		e = &ScanError{Message: err.Error()}
	}
	*p = append(*p, e)
}

// Sort sorts p by source offset.
func (p List) Sort() {
	slices.SortStableFunc(p, func(a, b Error) int {
		return a.Span().Offset - b.Span().Offset
	})
}

// RemoveMultiples sorts p and removes all but the first error per line.
func (p *List) RemoveMultiples() {
	p.Sort()
	*p = slices.CompactFunc(*p, func(a, b Error) bool {
		return a.Span().Line == b.Span().Line
	})
}

func (p List) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", p[0], len(p)-1)
}

// Err returns an error equivalent to this error list.
// If the list is empty, Err returns nil.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Print writes err to w, one error per line when err is a List.
func Print(w io.Writer, err error) {
	var list List
	if errors.As(err, &list) {
		for _, e := range list {
			fmt.Fprintln(w, e)
		}
		return
	}
	if err != nil {
		fmt.Fprintln(w, err)
	}
}

// Details is a convenience wrapper for Print to return the error text as a
// string.
func Details(err error) string {
	var b strings.Builder
	Print(&b, err)
	return b.String()
}
