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

package parser

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/errors"
)

const sample = `using System;
using IO = System.IO;
namespace N.M {
	public class C<T> : Base, IFoo {
		private int a = 1, b;
		public const string S = "x";
		public C(int x) : base(x) { }
		public T Get<U>(U u, ref int n) { return default; }
		public int P { get; private set; } = 3;
		public int this[int i] => i;
		public event EventHandler E;
		~C() { }
		public static C<T> operator +(C<T> x, C<T> y) { return x; }
		enum E2 { A, B = 2 }
	}
}
`

const sampleOutline = `using System
using IO = System.IO
namespace N.M
	public class C` + "`" + `1 : Base, IFoo
		private int a = 1
		private int b
		public const string S = "x"
		public C(int x) @7
		public T Get<U>(U u, ref int n) @8
		public int P {get; private set}
		public int this[int i] @10
		public event EventHandler E
		~C() @12
		public static C<T> operator +(C<T> x, C<T> y) @13
		enum E2
			A
			B = 2
`

func TestParse(t *testing.T) {
	f, err := Parse("sample.cs", sample)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(ast.Sprint(f), sampleOutline))

	c := f.Namespace.Namespaces[0].Types[0]
	qt.Assert(t, qt.Equals(c.FullName(), "N.M.C`1"))
	qt.Assert(t, qt.DeepEquals(c.TypeParams, []string{"T"}))
	qt.Assert(t, qt.Equals(c.Body.Line, 4))
	qt.Assert(t, qt.Equals(sample[c.Body.Offset], byte('{')))
	qt.Assert(t, qt.Equals(sample[c.Body.End()-1], byte('}')))

	ctor := c.Members[3].(*ast.Constructor)
	qt.Assert(t, qt.Equals(ctor.Initializer, "base(x)"))

	e2 := c.Types()[0]
	qt.Assert(t, qt.Equals(e2.FullName(), "N.M.C`1.E2"))
	qt.Assert(t, qt.Equals(e2.Outer, c))
}

func TestTryParseMatchesParse(t *testing.T) {
	f1, err := Parse("sample.cs", sample)
	qt.Assert(t, qt.IsNil(err))
	f2, diag := TryParse("sample.cs", sample)
	qt.Assert(t, qt.IsNil(diag))

	// Parent pointers form cycles; the outline of each type covers them.
	opts := cmp.Options{
		cmpopts.IgnoreFields(ast.Namespace{}, "Parent"),
		cmpopts.IgnoreFields(ast.TypeDecl{}, "Namespace", "Outer"),
	}
	if diff := cmp.Diff(f1, f2, opts); diff != "" {
		t.Errorf("trees differ (-Parse +TryParse):\n%s", diff)
	}
}

func TestTryParseIsIdempotent(t *testing.T) {
	src := "class C {\n\tint a;\n\tvoid Broken((int x) { }\n\tint b;\n}\n"
	f1, d1 := TryParse("x.cs", src)
	f2, d2 := TryParse("x.cs", src)
	qt.Assert(t, qt.Equals(ast.Sprint(f1), ast.Sprint(f2)))
	qt.Assert(t, qt.DeepEquals(d1, d2))
}

func TestRecovery(t *testing.T) {
	src := `class C {
	int a;
	void Broken((int x) { }
	int b;
	void Fine() { }
}
class D { }
`
	f, diag := TryParse("x.cs", src)
	qt.Assert(t, qt.Not(qt.IsNil(diag)))
	qt.Assert(t, qt.Equals(diag.Span.Line, 3))
	qt.Assert(t, qt.Equals(ast.Sprint(f), `class C
	int a
	int b
	void Fine() @5
class D
`))

	_, err := Parse("x.cs", src)
	qt.Assert(t, qt.ErrorMatches(err, `line 3: .*`))
}

func TestUnterminatedBody(t *testing.T) {
	src := "namespace N {\n\tclass C {\n\t\tint a;\n\t\tvoid F() {\n\t\t\tint x = "
	f, diag := TryParse("x.cs", src)
	qt.Assert(t, qt.Not(qt.IsNil(diag)))
	qt.Assert(t, qt.Equals(diag.Message, "block not terminated"))

	c := f.Namespace.Namespaces[0].Types[0]
	qt.Assert(t, qt.Equals(c.Name, "C"))
	qt.Assert(t, qt.HasLen(c.Members, 2))
	m := c.Members[1].(*ast.Method)
	qt.Assert(t, qt.Equals(m.Name, "F"))
	qt.Assert(t, qt.Equals(m.Body.Pos.End(), len(src)))
	qt.Assert(t, qt.Equals(c.Span().End(), len(src)))

	// Any offset past the caret still falls inside the method.
	path := ast.Path(f, len(src))
	qt.Assert(t, qt.Equals(path[len(path)-1], ast.Node(m.Body)))

	_, err := Parse("x.cs", src)
	qt.Assert(t, qt.ErrorMatches(err, `line 4: block not terminated.*`))
}

func TestScanErrorWins(t *testing.T) {
	src := "class C {\n\tstring s = \"abc\n\tint b;\n}\n"
	_, err := Parse("x.cs", src)
	var serr *errors.ScanError
	qt.Assert(t, qt.ErrorAs(err, &serr))
	qt.Assert(t, qt.Equals(serr.Message, "string literal not terminated"))

	_, diag := TryParse("x.cs", src)
	qt.Assert(t, qt.Equals(diag.Message, "string literal not terminated"))
	qt.Assert(t, qt.Equals(diag.Span.Line, 2))
}

func TestStrictErrors(t *testing.T) {
	testCases := []struct {
		src string
		err string
	}{{
		src: "class C { int }",
		err: `line 1: expected identifier, found .* at "}"`,
	}, {
		src: "class { }",
		err: `line 1: expected type name, found .* at "{"`,
	}, {
		src: "int x;",
		err: `line 1: expected type declaration, found .* at "int"`,
	}, {
		src: "class C { }\n}",
		err: `line 2: unexpected } at "}"`,
	}, {
		src: "class C { void F(int a, ) { } }",
		err: `line 1: expected type, found .* at "\)"`,
	}, {
		src: "enum E { A = (1 }",
		err: `line 1: .*`,
	}}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := Parse("x.cs", tc.src)
			qt.Assert(t, qt.ErrorMatches(err, tc.err))
		})
	}
}

func TestVersion(t *testing.T) {
	src := "namespace N;\nclass C { int P => 1; }\n"
	f, err := Parse("x.cs", src)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(f.Namespace.Namespaces[0].Types[0].FullName(), "N.C"))

	_, err = Parse("x.cs", src, Version("v9.0"))
	qt.Assert(t, qt.ErrorMatches(err, `line 1: file-scoped namespace requires language version v10.0 at ";"`))

	_, err = Parse("x.cs", "class C { int P => 1; }", Version("v5.0"))
	qt.Assert(t, qt.ErrorMatches(err, `line 1: expression-bodied member requires language version v6.0 at "=>"`))

	_, err = Parse("x.cs", "record R(int X);", Version("v8.0"))
	qt.Assert(t, qt.ErrorMatches(err, `line 1: record requires language version v9.0 at "R"`))

	qt.Assert(t, qt.PanicMatches(func() { Version("7") }, `invalid language version "7"`))
}

func TestDeclarations(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{{
		name: "Interface",
		src:  "interface I<in T> where T : class { void F(); int P { get; } }",
		want: "interface I`1\n\tvoid F()\n\tint P {get}\n",
	}, {
		name: "Delegate",
		src:  "public delegate void Handler(object sender, EventArgs e);",
		want: "public delegate void Handler(object sender, EventArgs e)\n",
	}, {
		name: "Record",
		src:  "record Point(int X, int Y);",
		want: "class Point\n\tpublic int X {get; init}\n\tpublic int Y {get; init}\n",
	}, {
		name: "ExplicitInterface",
		src:  "class C : IList<int> { int IList<int>.this[int i] { get { return 0; } } void IDisposable.Dispose() { } }",
		want: "class C : IList<int>\n\tint IList<int>.this[int i] {get}\n\tvoid IDisposable.Dispose() @1\n",
	}, {
		name: "Conversion",
		src:  "struct S { public static implicit operator int(S s) => 0; public static S operator >>(S s, int n) { return s; } }",
		want: "struct S\n\tpublic static implicit int operator implicit(S s) @1\n\tpublic static S operator >>(S s, int n) @1\n",
	}, {
		name: "Partial",
		src:  "partial class P { partial void Hook(); int partial; }",
		want: "partial class P\n\tpartial void Hook()\n\tint partial\n",
	}, {
		name: "Attributes",
		src:  "[assembly: CLSCompliant(true)]\n[Serializable] class C { [Obsolete(\"x\")] int a; }",
		want: "[assembly: CLSCompliant(true)]\nclass C\n\tint a\n",
	}, {
		name: "Events",
		src:  "class C { event Action A, B; event Action C2 { add { } remove { } } }",
		want: "class C\n\tevent Action A\n\tevent Action B\n\tevent Action C2 {add; remove}\n",
	}, {
		name: "Arrays",
		src:  "unsafe struct S { int[,] grid; int? n; fixed byte buf[16]; }",
		want: "unsafe struct S\n\tint[,] grid\n\tint? n\n\tfixed byte[16] buf\n",
	}, {
		name: "ExternAlias",
		src:  "extern alias Lib;\nusing static System.Math;\nclass C { }",
		want: "extern alias Lib\nusing static System.Math\nclass C\n",
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse("x.cs", tc.src)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(ast.Sprint(f), tc.want))
		})
	}
}

func TestTrace(t *testing.T) {
	var b strings.Builder
	_, err := Parse("x.cs", "class C { int a; }", Trace(&b))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(b.String(), "TypeDecl ("))
	qt.Assert(t, qt.StringContains(b.String(), "Member ("))
}
