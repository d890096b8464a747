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
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/literal"
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

const (
	enumerableType = "System.Collections.Generic.IEnumerable`1"
	typeType       = "System.Type"
)

// InferType returns the type text of the initializer of an implicitly
// typed local, such as the List<int> of new List<int>(). Only a fixed set
// of shapes is recognized:
//
//	new T(...)  new T{...}  new T[n]
//	x as T
//	(T)x
//	x.Get<T>(...)
//	from a in b ... select c
//	typeof(T)
//	literals
//
// It reports false if the initializer has none of these shapes.
func InferType(init string) (string, bool) {
	toks := tokens(init)
	if len(toks) == 0 {
		return "", false
	}
	if len(toks) == 1 {
		return literal.TypeOf(toks[0])
	}
	if i := lastTopLevel(toks, "as"); i > 0 && i+1 < len(toks) {
		if isTypeText(toks[i+1:]) {
			return token.Join(toks[i+1:]), true
		}
		return "", false
	}
	switch first := toks[0]; {
	case first.Is("new"):
		return inferNew(toks[1:])
	case first.Is("from") && toks[1].IsName():
		if lastTopLevel(toks, "select") > 0 || lastTopLevel(toks, "group") > 0 {
			return enumerableType, true
		}
		return "", false
	case first.Is("typeof"):
		if toks[1].Is("(") && closing(toks, 1) == len(toks)-1 {
			return typeType, true
		}
		return "", false
	case first.Is("("):
		return inferParen(toks)
	}
	return inferGet(toks)
}

func tokens(text string) []token.Token {
	var toks []token.Token
	s := scanner.New(text, 0)
	for t := s.Current(); t.IsValid(); t = s.Current() {
		toks = append(toks, t)
		s.Advance()
	}
	return toks
}

// inferNew handles the tokens after new.
func inferNew(toks []token.Token) (string, bool) {
	for i := 0; i < len(toks); i++ {
		switch t := toks[i]; {
		case t.Is("(") || t.Is("{"):
			if i == 0 || !isTypeText(toks[:i]) {
				return "", false
			}
			return token.Join(toks[:i]), true
		case t.Is("["):
			if i == 0 || !isTypeText(toks[:i]) {
				return "", false
			}
			end := closing(toks, i)
			if end < 0 {
				return "", false
			}
			rank := "[" + strings.Repeat(",", countTopLevel(toks[i+1:end], ",")) + "]"
			return token.Join(toks[:i]) + rank, true
		case t.Is("<"):
			end := closing(toks, i)
			if end < 0 {
				return "", false
			}
			for j := i + 1; j < end; j++ {
				if !isTypeToken(toks[j]) {
					return "", false
				}
			}
			i = end
		}
	}
	return "", false
}

// inferParen handles casts and parenthesized initializers.
func inferParen(toks []token.Token) (string, bool) {
	end := closing(toks, 0)
	switch {
	case end < 0:
		return "", false
	case end == len(toks)-1:
		return InferType(token.Join(toks[1:end]))
	case isTypeText(toks[1:end]) && startsOperand(toks[end+1]):
		return token.Join(toks[1:end]), true
	}
	return "", false
}

func startsOperand(t token.Token) bool {
	switch t.Kind {
	case token.Identifier, token.Number, token.String, token.Char:
		return true
	}
	return t.Is("(")
}

// inferGet handles x.Get<T>(...), where the call ends the initializer.
func inferGet(toks []token.Token) (string, bool) {
	for i := 1; i+2 < len(toks); i++ {
		if !toks[i].Is("Get") || !toks[i-1].Is(".") || !toks[i+1].Is("<") {
			continue
		}
		end := closing(toks, i+1)
		if end < 0 || end+1 >= len(toks) || !toks[end+1].Is("(") {
			return "", false
		}
		if closing(toks, end+1) != len(toks)-1 || !isTypeText(toks[i+2:end]) {
			return "", false
		}
		return token.Join(toks[i+2 : end]), true
	}
	return "", false
}

// closing returns the index of the token that closes the bracket at
// toks[i], or -1. Angle brackets are matched only against each other.
func closing(toks []token.Token, i int) int {
	open := toks[i].Text
	if open == "<" {
		depth := 0
		for j := i; j < len(toks); j++ {
			switch {
			case toks[j].Is("<"):
				depth++
			case toks[j].Is(">"):
				depth--
				if depth == 0 {
					return j
				}
			}
		}
		return -1
	}
	depth := 0
	for j := i; j < len(toks); j++ {
		t := toks[j]
		if t.Kind != token.Punctuation {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return j
			}
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}

// lastTopLevel returns the index of the last word outside any brackets,
// or -1.
func lastTopLevel(toks []token.Token, word string) int {
	depth, last := 0, -1
	for i := 0; i < len(toks); i++ {
		switch t := toks[i]; {
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
		case depth == 0 && t.Kind == token.Identifier && t.Text == word:
			last = i
		}
	}
	return last
}

func countTopLevel(toks []token.Token, punct string) int {
	n, depth := 0, 0
	for _, t := range toks {
		switch {
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
		case depth == 0 && t.Is(punct):
			n++
		}
	}
	return n
}

// isTypeText reports whether toks could spell a type.
func isTypeText(toks []token.Token) bool {
	if len(toks) == 0 || !(toks[0].IsName() || token.IsBuiltinType(toks[0].Text) || toks[0].Is("(")) {
		return false
	}
	for _, t := range toks {
		if !isTypeToken(t) {
			return false
		}
	}
	return true
}

func isTypeToken(t token.Token) bool {
	if t.Kind == token.Identifier {
		return t.IsName() || token.IsBuiltinType(t.Text)
	}
	if t.Kind != token.Punctuation {
		return false
	}
	switch t.Text {
	case ".", "<", ">", ",", "[", "]", "?", "::", "(", ")", "*":
		return true
	}
	return false
}
