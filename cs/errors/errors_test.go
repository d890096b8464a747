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

package errors

import (
	"fmt"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jesse99/Continuum-sub001/cs/token"
)

func syntax(off, line int, tok, msg string) *SyntaxError {
	return &SyntaxError{Pos: token.Span{Offset: off, Length: len(tok), Line: line}, Token: tok, Message: msg}
}

func TestErrorText(t *testing.T) {
	qt.Check(t, qt.Equals(syntax(4, 1, ")", "expected name").Error(), `line 1: expected name at ")"`))
	qt.Check(t, qt.Equals(syntax(9, 3, "", "expected }").Error(), "line 3: expected } at end of input"))

	e := &ScanError{Pos: token.Span{Offset: 2, Line: 5}, Message: "unterminated comment"}
	qt.Check(t, qt.Equals(e.Error(), "line 5: unterminated comment"))
	qt.Check(t, qt.Equals(e.Msg(), "unterminated comment"))
	qt.Check(t, qt.Equals(e.Span().Line, 5))
}

func TestList(t *testing.T) {
	var list List
	qt.Check(t, qt.IsNil(list.Err()))
	qt.Check(t, qt.Equals(list.Error(), "no errors"))

	list.Add(nil)
	list.Add(syntax(30, 3, "x", "unexpected"))
	list.Add(syntax(10, 2, "y", "unexpected"))
	list.Add(syntax(12, 2, "z", "unexpected"))
	list.Add(fmt.Errorf("wrapped: %w", syntax(1, 1, "w", "unexpected")))
	list.Add(New("plain"))
	qt.Assert(t, qt.HasLen(list, 5))
	qt.Check(t, qt.Equals(list[4].Msg(), "plain"))
	qt.Check(t, qt.Equals(list.Error(), `line 3: unexpected at "x" (and 4 more errors)`))

	list.RemoveMultiples()
	var got []string
	for _, e := range list {
		got = append(got, fmt.Sprintf("%d:%s", e.Span().Offset, e.Msg()))
	}
	// The error without a position sorts first.
	qt.Check(t, qt.DeepEquals(got, []string{"0:plain", "1:unexpected", "10:unexpected", "30:unexpected"}))

	var target *SyntaxError
	qt.Check(t, qt.IsTrue(As(fmt.Errorf("parse: %w", list[1]), &target)))
	qt.Check(t, qt.Equals(target.Token, "w"))
}

func TestPrint(t *testing.T) {
	list := List{syntax(1, 1, "a", "bad"), syntax(5, 2, "b", "worse")}
	qt.Check(t, qt.Equals(Details(list), "line 1: bad at \"a\"\nline 2: worse at \"b\"\n"))
	qt.Check(t, qt.Equals(Details(New("oops")), "oops\n"))
	qt.Check(t, qt.Equals(Details(nil), ""))
}
