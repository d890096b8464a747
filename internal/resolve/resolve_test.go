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
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"golang.org/x/tools/txtar"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/parser"
	"github.com/jesse99/Continuum-sub001/internal/index"
)

// A fixture holds the files of a txtar archive: C# sources parsed into
// trees and an optional index.
type fixture struct {
	r     *Resolver
	text  map[string]string
	trees []*ast.File
}

func loadFixture(t *testing.T, name string) *fixture {
	t.Helper()
	a, err := txtar.ParseFile(filepath.Join("testdata", name))
	qt.Assert(t, qt.IsNil(err))
	fx := &fixture{r: New(nil, nil), text: map[string]string{}}
	for _, f := range a.Files {
		switch filepath.Ext(f.Name) {
		case ".yaml", ".toml":
			format, err := index.FormatOf(f.Name)
			qt.Assert(t, qt.IsNil(err))
			m, err := index.Decode(f.Data, format)
			qt.Assert(t, qt.IsNil(err))
			fx.r.Index = m
		case ".cs":
			text := string(f.Data)
			tree, diag := parser.TryParse(f.Name, text)
			qt.Assert(t, qt.IsNil(diag), qt.Commentf("%s", f.Name))
			fx.text[f.Name] = text
			fx.trees = append(fx.trees, tree)
		}
	}
	return fx
}

// query returns a query at the caret marked by /*marker*/.
func (fx *fixture) query(t *testing.T, marker string) (*Query, string, int) {
	t.Helper()
	for _, tree := range fx.trees {
		text := fx.text[tree.Filename]
		if i := strings.Index(text, "/*"+marker+"*/"); i >= 0 {
			return NewQuery(tree, text, i, fx.trees...), text, i
		}
	}
	t.Fatalf("marker %q not found", marker)
	return nil, "", 0
}

func TestResolveExpr(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	tests := []struct {
		marker string
		want   string // empty if resolution fails
		access Access
	}{
		{"this", "App.MyClass", Both},
		{"dict", "System.Collections.Generic.Dictionary`2", Instance},
		{"linq", "System.Collections.Generic.IEnumerable`1", Instance},
		{"arg", "System.String", Instance},
		{"field", "System.Int32", Instance},
		{"base", "App.Base", Instance},
		{"element", "App.Part", Instance},
		{"indexer", "System.String", Instance},
		{"chain", "System.Int32", Instance},
		{"static", "System.Math", Static},
		{"qualified", "System.Math", Static},
		{"alias", "System.Collections.Generic.Dictionary`2", Static},
		{"literal", "System.String", Instance},
		{"ambiguous", "", 0},
		{"new", "System.Int32", Instance},
		{"cast", "App.Part", Instance},
		{"nested", "App.Outer.Inner", Static},
		{"enum", "App.Color", Static},
		{"uninferred", "", 0},
		{"shadow", "System.String", Instance},
		{"value", "System.String", Instance},
		{"static-this", "", 0},
		{"static-field", "App.MyClass", Instance},
		{"partial", "App.Widget", Both},
	}
	for _, test := range tests {
		t.Run(test.marker, func(t *testing.T) {
			q, text, offset := fx.query(t, test.marker)
			got, ok := fx.r.ResolveExpr(q, text, offset)
			if test.want == "" {
				qt.Assert(t, qt.IsFalse(ok), qt.Commentf("got %v", got))
				return
			}
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(got.Name, test.want))
			qt.Assert(t, qt.Equals(got.Access, test.access))
		})
	}
}

func TestSources(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")

	q, text, offset := fx.query(t, "this")
	got, _ := fx.r.ResolveExpr(q, text, offset)
	decl, ok := got.Decl()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(decl.Name, "MyClass"))
	qt.Assert(t, qt.Equals(got.Kind(), "class"))

	q, text, offset = fx.query(t, "dict")
	got, _ = fx.r.ResolveExpr(q, text, offset)
	_, ok = got.Decl()
	qt.Assert(t, qt.IsFalse(ok))
	src, ok := got.Source.(Indexed)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(src.Type.Kind, "class"))

	q, text, offset = fx.query(t, "base")
	got, _ = fx.r.ResolveExpr(q, text, offset)
	qt.Assert(t, qt.IsTrue(got.ViaBase))
	qt.Assert(t, qt.Equals(got.String(), "App.Base (live, instance, base)"))
}

func TestMemberNames(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	tests := []struct {
		marker string
		want   []string
	}{{
		marker: "this",
		want: []string{
			"Get", "GetHashCode", "Helper", "Make", "Name", "Run", "ToString", "Work",
			"count", "instance", "name", "parts", "row", "shared",
		},
	}, {
		// Private members of a base are hidden, protected ones are not.
		marker: "base",
		want:   []string{"GetHashCode", "Run", "ToString", "shared"},
	}, {
		marker: "outside",
		want:   []string{"GetHashCode", "Run", "ToString"},
	}, {
		marker: "static",
		want:   []string{"Abs", "PI"},
	}, {
		marker: "dict",
		want:   []string{"Clear", "Count", "GetHashCode", "ToString"},
	}, {
		marker: "enum",
		want:   []string{"Green", "Red"},
	}, {
		marker: "nested",
		want:   []string{"Count"},
	}, {
		// Live parts of a partial type are merged with the index.
		marker: "partial",
		want:   []string{"Depth", "Draw", "GetHashCode", "Height", "Title", "ToString", "Width"},
	}}
	for _, test := range tests {
		t.Run(test.marker, func(t *testing.T) {
			q, text, offset := fx.query(t, test.marker)
			target, ok := fx.r.ResolveExpr(q, text, offset)
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.DeepEquals(fx.r.MemberNames(q, target), test.want))
		})
	}
}

func TestMemberNamesSortsDeclarationOrder(t *testing.T) {
	src := "class C { int Zeta; int Alpha; int Mid; void Work() { this.| } void Work(int n) { } }"
	offset := strings.Index(src, "|")
	text := strings.Replace(src, "|", "", 1)
	tree, diag := parser.TryParse("c.cs", text)
	qt.Assert(t, qt.IsNil(diag))

	r := New(nil, nil)
	q := NewQuery(tree, text, offset)
	target, ok := r.ResolveExpr(q, text, offset)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(r.MemberNames(q, target), []string{"Alpha", "Mid", "Work", "Zeta"}))
}

func TestMembersFromIndex(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, _, _ := fx.query(t, "dict")
	target, ok := fx.r.ResolveType(q, "Dictionary<int, string>", Instance)
	qt.Assert(t, qt.IsTrue(ok))

	var sigs []string
	for _, m := range fx.r.Members(q, target) {
		sigs = append(sigs, m.Kind.String()+" "+m.Signature()+" "+m.Type)
	}
	qt.Assert(t, qt.DeepEquals(sigs, []string{
		"property Count System.Int32",
		"indexer this[TKey] TValue",
		"method Clear() System.Void",
		"method ToString() System.String",
		"method GetHashCode() System.Int32",
	}))
}

func TestPartialMembersAreMerged(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, text, offset := fx.query(t, "partial")
	target, _ := fx.r.ResolveExpr(q, text, offset)

	ms := fx.r.Members(q, target)
	count := map[string]int{}
	for _, m := range ms {
		count[m.Name]++
	}
	qt.Assert(t, qt.Equals(count["Width"], 1))

	// The live declaration of Width wins over the index row.
	for _, m := range ms {
		if m.Name == "Width" {
			qt.Assert(t, qt.IsNotNil(m.Decl))
		}
		if m.Name == "Title" {
			qt.Assert(t, qt.IsNil(m.Decl))
			qt.Assert(t, qt.Equals(m.Kind, Property))
			qt.Assert(t, qt.IsFalse(m.Private))
		}
	}
}

func TestVariables(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, _, _ := fx.query(t, "shadow")
	var got []string
	for _, v := range q.Variables() {
		got = append(got, v.Origin.String()+" "+v.Name)
	}
	qt.Assert(t, qt.DeepEquals(got, []string{
		"this this",
		"local count",
		"local unknown",
		"local q",
		"local x",
		"argument n",
		"argument label",
		"member count",
		"member name",
		"member instance",
		"member parts",
		"member row",
		"member Name",
	}))
	last := q.Variables()[len(got)-1]
	qt.Assert(t, qt.Equals(last.Origin, MemberVar))
	qt.Assert(t, qt.Equals(last.Owner.Name, "MyClass"))

	q, _, _ = fx.query(t, "value")
	vs := q.Variables()
	qt.Assert(t, qt.Equals(vs[1].Name, "value"))
	qt.Assert(t, qt.Equals(vs[1].Origin, Value))
	qt.Assert(t, qt.Equals(vs[1].Type, "string"))
}

// The example from the package documentation of a caret after this.
func TestThisInWork(t *testing.T) {
	const src = "class MyClass { void Work(){ this. } }"
	f, diag := parser.TryParse("a.cs", src)
	qt.Assert(t, qt.IsNil(diag))
	offset := strings.Index(src, "this.") + len("this.")
	r := New(nil, nil)
	got, ok := r.ResolveExpr(NewQuery(f, src, offset), src, offset)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Name, "MyClass"))
}

func TestOverloadDisagreementIsLogged(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	var buf bytes.Buffer
	fx.r.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q, text, offset := fx.query(t, "ambiguous")
	_, ok := fx.r.ResolveExpr(q, text, offset)
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.StringContains(buf.String(), "overloads disagree"))
}

func TestResolveType(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, _, _ := fx.query(t, "this")
	tests := []struct {
		name string
		want string
	}{
		{"int", "System.Int32"},
		{"string", "System.String"},
		{"Part", "App.Part"},
		{"App.Part", "App.Part"},
		{"global::System.Math", "System.Math"},
		{"Math", "System.Math"},
		{"Col.Dictionary<int, int>", "System.Collections.Generic.Dictionary`2"},
		{"Dictionary<int, List<string>>", "System.Collections.Generic.Dictionary`2"},
		{"int[]", "System.Array"},
		{"Outer.Inner", "App.Outer.Inner"},
		{"Dictionary<int>", ""},
		{"int*", ""},
		{"Nowhere", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := fx.r.ResolveType(q, test.name, Instance)
			if test.want == "" {
				qt.Assert(t, qt.IsFalse(ok))
				return
			}
			qt.Assert(t, qt.IsTrue(ok))
			qt.Assert(t, qt.Equals(got.Name, test.want))
		})
	}
}

func TestResolveName(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, _, _ := fx.query(t, "this")

	got, ok := fx.r.ResolveName(q, "this", false)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Access, Instance))

	got, ok = fx.r.ResolveName(q, "this", true)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Access, Both))

	got, ok = fx.r.ResolveName(q, "'c'", false)
	qt.Assert(t, qt.IsFalse(ok)) // System.Char is not indexed

	got, ok = fx.r.ResolveName(q, "42", false)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Name, "System.Int32"))

	_, ok = fx.r.ResolveName(q, "", false)
	qt.Assert(t, qt.IsFalse(ok))
}

func TestImplicitUsings(t *testing.T) {
	fx := loadFixture(t, "resolve.txtar")
	q, _, _ := fx.query(t, "this")
	m := &index.Memory{}
	m.Add(index.Entry{Type: index.Type{Name: "System.Linq.Enumerable", Kind: "class"}})

	r := New(m, nil)
	_, ok := r.ResolveType(q, "Enumerable", Static)
	qt.Assert(t, qt.IsFalse(ok))

	r.Usings = []string{"System.Linq"}
	got, ok := r.ResolveType(q, "Enumerable", Static)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got.Name, "System.Linq.Enumerable"))
}
