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

package complete

import (
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

// A frame is an open bracket seen before the caret.
type frame struct {
	open   string
	offset int
	commas int
}

// ArgIndex returns the 1-based index of the argument the caret is in
// when it is inside an open argument list, or 0 if it is not. Inside a
// generic argument list such as Get<int, | the index is negative.
//
// A < following a name is taken to open a generic argument list until a
// token that cannot appear in one is seen, such as a number, a literal or
// an operator. In that case it was a comparison and its commas count for
// the enclosing list. A list of names such as F(a < b, c > d) is therefore
// read as a single generic argument.
func ArgIndex(text string, caret int) int {
	f, ok := openFrame(text, caret)
	if !ok {
		return 0
	}
	switch f.open {
	case "(":
		return f.commas + 1
	case "<":
		return -(f.commas + 1)
	}
	return 0
}

// openFrame returns the innermost bracket open at caret.
func openFrame(text string, caret int) (frame, bool) {
	caret = min(max(caret, 0), len(text))
	var stack []frame
	var prev token.Token

	s := scanner.New(text[:caret], 0)
	for t := s.Current(); t.IsValid(); t = s.Current() {
		s.Advance()
		if n := len(stack); n > 0 && stack[n-1].open == "<" && !inTypeArgs(t) {
			stack = dropAngle(stack)
		}
		switch {
		case t.Is("(") || t.Is("[") || t.Is("{"):
			stack = append(stack, frame{open: t.Text, offset: t.Offset})
		case t.Is("<"):
			if prev.IsName() {
				stack = append(stack, frame{open: "<", offset: t.Offset})
			}
		case t.Is(">"):
			if n := len(stack); n > 0 && stack[n-1].open == "<" {
				stack = stack[:n-1]
			}
		case t.Is(")") || t.Is("]") || t.Is("}"):
			stack = closeFrame(stack, opener(t.Text))
		case t.Is(";"):
			// A statement ends everything but the enclosing block.
			for n := len(stack); n > 0 && stack[n-1].open != "{"; n-- {
				stack = stack[:n-1]
			}
		case t.Is(","):
			if n := len(stack); n > 0 {
				stack[n-1].commas++
			}
		}
		prev = t
	}

	if len(stack) == 0 {
		return frame{}, false
	}
	return stack[len(stack)-1], true
}

// inTypeArgs reports whether t may appear in a generic argument list.
func inTypeArgs(t token.Token) bool {
	switch t.Kind {
	case token.Identifier:
		return true
	case token.Punctuation:
		switch t.Text {
		case ".", ",", "?", "[", "]", "<", ">", "::", "*":
			return true
		}
	}
	return false
}

// dropAngle reinterprets the open generic argument list on top of stack
// as a comparison, folding its commas into the enclosing list.
func dropAngle(stack []frame) []frame {
	n := len(stack)
	commas := stack[n-1].commas
	stack = stack[:n-1]
	if n > 1 {
		stack[n-2].commas += commas
	}
	return stack
}

// closeFrame pops stack up to and including the innermost frame opened
// by open. Unclosed generic lists on the way are comparisons.
func closeFrame(stack []frame, open string) []frame {
	for n := len(stack); n > 0; n = len(stack) {
		switch stack[n-1].open {
		case open:
			return stack[:n-1]
		case "<":
			stack = dropAngle(stack)
		default:
			// Mismatched bracket; leave the stack alone.
			return stack
		}
	}
	return stack
}

func opener(close string) string {
	switch close {
	case ")":
		return "("
	case "]":
		return "["
	}
	return "{"
}
