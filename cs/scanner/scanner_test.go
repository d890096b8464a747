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

package scanner

import (
	"cmp"
	"slices"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jesse99/Continuum-sub001/cs/errors"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

type elt struct {
	kind token.Kind
	lit  string
}

var testTokens = [...]elt{
	// Identifiers
	{token.Identifier, "foobar"},
	{token.Identifier, "_x9"},
	{token.Identifier, "@class"},
	{token.Identifier, "ŝfoo"},
	{token.Identifier, "a۰۱۸"},
	{token.Identifier, "foo६४"},
	{token.Identifier, "var"},

	// Numbers
	{token.Number, "0"},
	{token.Number, "123456789012345678890"},
	{token.Number, "1_000_000"},
	{token.Number, "0xcafebabe"},
	{token.Number, "0XFFu"},
	{token.Number, "0b1010_1010"},
	{token.Number, "3.14159265"},
	{token.Number, ".5"},
	{token.Number, "1e10"},
	{token.Number, "1E+100"},
	{token.Number, "2.5e-3f"},
	{token.Number, "10UL"},
	{token.Number, "10lu"},
	{token.Number, "1.5m"},
	{token.Number, "2d"},

	// Chars and strings
	{token.Char, `'a'`},
	{token.Char, `'\''`},
	{token.Char, `'\u0041'`},
	{token.String, `"foo"`},
	{token.String, `"a\"b"`},
	{token.String, `""`},
	{token.String, `@"c:\dir\"`},
	{token.String, `@"say ""hi"""`},
	{token.String, "@\"two\nlines\""},
	{token.String, `$"x = {x}"`},
	{token.String, `$"{d["k"]} {{literal}}"`},
	{token.String, `$@"{a}\"`},

	// Punctuation
	{token.Punctuation, "{"},
	{token.Punctuation, "::"},
	{token.Punctuation, "??"},
	{token.Punctuation, "=>"},
	{token.Punctuation, "<<="},
	{token.Punctuation, "!="},
	{token.Punctuation, "?"},

	// Other
	{token.Other, "`"},
	{token.Other, "\\"},
}

func TestScan(t *testing.T) {
	for _, e := range testTokens {
		t.Run(e.lit, func(t *testing.T) {
			s := New(" "+e.lit+" ", 0)
			tok := s.Current()
			qt.Assert(t, qt.Equals(tok.Kind, e.kind))
			qt.Assert(t, qt.Equals(tok.Text, e.lit))
			qt.Assert(t, qt.Equals(tok.Offset, 1))
			s.Advance()
			qt.Assert(t, qt.Equals(s.Current().Kind, token.Invalid))
			qt.Assert(t, qt.IsNil(s.Err()))
		})
	}
}

func TestLookAheadIsPure(t *testing.T) {
	s := New("a b c", 0)
	qt.Assert(t, qt.Equals(s.LookAhead(2).Text, "c"))
	qt.Assert(t, qt.Equals(s.LookAhead(1).Text, "b"))
	qt.Assert(t, qt.Equals(s.Current().Text, "a"))
	qt.Assert(t, qt.Equals(s.LookAhead(10).Kind, token.Invalid))
	s.Advance()
	qt.Assert(t, qt.Equals(s.Current().Text, "b"))
	s.Advance()
	s.Advance()
	s.Advance()
	qt.Assert(t, qt.Equals(s.Current().Kind, token.Invalid))
}

func TestShiftIsSplit(t *testing.T) {
	got := texts(New("List<List<int>> x >>= 2", 0))
	qt.Assert(t, qt.DeepEquals(got, []string{
		"List", "<", "List", "<", "int", ">", ">", "x", ">", ">=", "2",
	}))
}

func TestLines(t *testing.T) {
	src := "a\n/* x\n y */ b\n@\"1\n2\" c\n#region r\nd"
	s := New(src, 0)
	var lines []int
	for tok := s.Current(); tok.IsValid(); tok = s.Current() {
		lines = append(lines, tok.Line)
		s.Advance()
	}
	qt.Assert(t, qt.DeepEquals(lines, []int{1, 3, 4, 5, 7}))
}

func TestInitOffset(t *testing.T) {
	src := "int a;\nint b;"
	s := New(src, 7)
	tok := s.Current()
	qt.Assert(t, qt.Equals(tok.Text, "int"))
	qt.Assert(t, qt.Equals(tok.Line, 2))
	qt.Assert(t, qt.Equals(tok.Offset, 7))
}

func TestDirectivesAndComments(t *testing.T) {
	src := "  #if DEBUG\nx // tail\n/* block */ y # z\n#endregion"
	s := New(src, 0)
	qt.Assert(t, qt.DeepEquals(texts(s), []string{"x", "y", "#", "z"}))

	var got []Trivia
	for _, tr := range s.Trivia() {
		if tr.Kind != Whitespace {
			got = append(got, tr)
		}
	}
	qt.Assert(t, qt.DeepEquals(got, []Trivia{
		{Kind: Directive, Span: token.Span{Offset: 2, Length: 9, Line: 1}, Text: "#if DEBUG"},
		{Kind: LineComment, Span: token.Span{Offset: 14, Length: 7, Line: 2}, Text: "// tail"},
		{Kind: BlockComment, Span: token.Span{Offset: 22, Length: 11, Line: 3}, Text: "/* block */"},
		{Kind: Directive, Span: token.Span{Offset: 40, Length: 10, Line: 4}, Text: "#endregion"},
	}))
}

func TestScanComments(t *testing.T) {
	s := New("a /* b */ c // d", 0, ScanComments)
	var kinds []token.Kind
	for tok := s.Current(); tok.IsValid(); tok = s.Current() {
		kinds = append(kinds, tok.Kind)
		s.Advance()
	}
	qt.Assert(t, qt.DeepEquals(kinds, []token.Kind{
		token.Identifier, token.Comment, token.Identifier, token.Comment,
	}))
}

var errorTests = []struct {
	src  string
	line int
	msg  string
}{
	{"a\n\"abc", 2, "string literal not terminated"},
	{"x = \"abc\ny\";", 1, "string literal not terminated"},
	{"\n\n'a", 3, "char literal not terminated"},
	{"/* never closed", 1, "comment not terminated"},
	{"a\n@\"open\n", 2, "verbatim string literal not terminated"},
	{"$\"{x\"", 1, "string literal not terminated"},
}

func TestErrors(t *testing.T) {
	for _, test := range errorTests {
		t.Run(test.msg, func(t *testing.T) {
			s := New(test.src, 0)
			for s.Current().IsValid() {
				s.Advance()
			}
			var serr *errors.ScanError
			qt.Assert(t, qt.ErrorAs(s.Err(), &serr))
			qt.Assert(t, qt.Equals(serr.Pos.Line, test.line))
			qt.Assert(t, qt.Equals(serr.Message, test.msg))
		})
	}
}

func TestNormalizedNames(t *testing.T) {
	// "é" spelled with a combining accent and precomposed.
	s := New("e\u0301 \u00e9 @int", 0)
	a := s.LookAhead(0)
	b := s.LookAhead(1)
	c := s.LookAhead(2)
	qt.Assert(t, qt.Not(qt.Equals(a.Text, b.Text)))
	qt.Assert(t, qt.Equals(a.Name(), b.Name()))
	qt.Assert(t, qt.Equals(c.Name(), "int"))
	qt.Assert(t, qt.IsFalse(c.IsKeyword()))
}

var roundTripSources = []string{
	"",
	"   ",
	"using System;\r\nnamespace N { class C { int x = 0x1F; } }\n",
	"#region Fields\n\tstring s = @\"a\"\"b\"; // trailing\n#endregion\n",
	"/* c1 */ /* c2 */ var x = $\"{a} {{b}}\";\n\n\n",
	"a.b?.c ?? d => e\n\tList<List<int>> f;",
	"char c = '\\n'; \u00a0 object o = null;",
}

func TestRoundTrip(t *testing.T) {
	for _, src := range roundTripSources {
		s := New(src, 0)
		type piece struct {
			offset int
			text   string
		}
		var pieces []piece
		for tok := s.Current(); tok.IsValid(); tok = s.Current() {
			pieces = append(pieces, piece{tok.Offset, tok.Text})
			s.Advance()
		}
		qt.Assert(t, qt.IsNil(s.Err()))
		for _, tr := range s.Trivia() {
			pieces = append(pieces, piece{tr.Span.Offset, tr.Text})
		}
		slices.SortFunc(pieces, func(a, b piece) int { return cmp.Compare(a.offset, b.offset) })
		var b strings.Builder
		for _, p := range pieces {
			qt.Assert(t, qt.Equals(p.offset, b.Len()), qt.Commentf("gap in %q", src))
			b.WriteString(p.text)
		}
		qt.Assert(t, qt.Equals(b.String(), src))
	}
}

func texts(s *Scanner) []string {
	var out []string
	for tok := s.Current(); tok.IsValid(); tok = s.Current() {
		out = append(out, tok.Text)
		s.Advance()
	}
	return out
}
