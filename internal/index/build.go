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

package index

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/jesse99/Continuum-sub001/cs/ast"
)

// A Builder records the declarations of parsed files in the layout a
// compiled index uses. Base and member types are recorded as written;
// a real index stores resolved names.
type Builder struct {
	m *Memory
}

// NewBuilder returns a Builder that adds entries to m.
func NewBuilder(m *Memory) *Builder {
	return &Builder{m: m}
}

// Add records every type declared in f. The source text src is used to
// compute the staleness hash of each type.
func (b *Builder) Add(f *ast.File, src string) {
	ast.Types(f, func(t *ast.TypeDecl) bool {
		b.m.Add(entryOf(t, src))
		return true
	})
}

// Hash returns the staleness token of a declaration's text.
func Hash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

func entryOf(t *ast.TypeDecl, src string) Entry {
	e := Entry{Type: Type{Name: t.FullName(), Kind: t.Kind.String()}}
	if s := t.Span(); s.End() <= len(src) {
		e.Hash = Hash(src[s.Offset:s.End()])
	}
	e.Base = baseOf(t)

	for _, m := range t.Members {
		attrs := attrsOf(m.Mods())
		switch m := m.(type) {
		case *ast.Field:
			e.Fields = append(e.Fields, Field{Name: m.Name, Type: m.Type, Attributes: attrs})
		case *ast.EnumValue:
			e.Fields = append(e.Fields, Field{Name: m.Name, Type: e.Name, Attributes: Static})
		case *ast.Method:
			e.Methods = append(e.Methods, method(m.Name, m.ReturnType, m.Params, attrs))
		case *ast.Constructor:
			name := ".ctor"
			if m.Modifiers.IsStatic() {
				name = ".cctor"
			}
			e.Methods = append(e.Methods, method(name, "System.Void", m.Params, attrs))
		case *ast.Operator:
			e.Methods = append(e.Methods, method("op_"+m.Name, m.ReturnType, m.Params, attrs|Static))
		case *ast.Property:
			e.Methods = append(e.Methods, accessors(m.Name, m.Type, m.Accessors, m.Body != nil, "get", nil, attrs)...)
		case *ast.Indexer:
			e.Methods = append(e.Methods, accessors("Item", m.Type, m.Accessors, m.Body != nil, "get", m.Params, attrs)...)
		case *ast.Event:
			if len(m.Accessors) == 0 {
				e.Methods = append(e.Methods,
					method("add_"+m.Name, "System.Void", nil, attrs),
					method("remove_"+m.Name, "System.Void", nil, attrs))
				break
			}
			e.Methods = append(e.Methods, accessors(m.Name, "System.Void", m.Accessors, false, "", nil, attrs)...)
		}
	}
	return e
}

// baseOf guesses the base class of t from its base list. Names of the
// form IXxx are taken to be interfaces.
func baseOf(t *ast.TypeDecl) string {
	switch t.Kind {
	case ast.Struct:
		return "System.ValueType"
	case ast.Enum:
		return "System.Enum"
	case ast.Delegate:
		return "System.MulticastDelegate"
	case ast.Interface:
		return ""
	}
	if len(t.Bases) > 0 && !looksLikeInterface(t.Bases[0]) {
		return t.Bases[0]
	}
	return "System.Object"
}

func looksLikeInterface(name string) bool {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if len(name) < 2 || name[0] != 'I' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[1:])
	return unicode.IsUpper(r)
}

func attrsOf(m ast.Modifiers) Attr {
	var a Attr
	if m.IsPrivate() {
		a |= Private
	}
	if m.IsStatic() {
		a |= Static
	}
	return a
}

func method(name, ret string, params []*ast.Param, attrs Attr) Method {
	var types, names []string
	for _, p := range params {
		types = append(types, p.Type)
		names = append(names, p.Name)
	}
	return Method{
		Name:       name,
		ReturnType: ret,
		ArgTypes:   strings.Join(types, ":"),
		ArgNames:   strings.Join(names, ":"),
		Attributes: attrs,
	}
}

// accessors renders property, indexer and event accessors as methods. An
// expression body stands for a lone accessor named implicit.
func accessors(name, typ string, as []*ast.Accessor, exprBody bool, implicit string, params []*ast.Param, attrs Attr) []Method {
	var ms []Method
	if exprBody {
		return []Method{method(implicit+"_"+name, typ, params, attrs)}
	}
	for _, a := range as {
		aattrs := attrs
		if a.Modifiers&ast.AccessMask != 0 {
			aattrs = attrsOf(a.Modifiers) | attrs&Static
		}
		switch a.Name {
		case "get":
			ms = append(ms, method("get_"+name, typ, params, aattrs))
		case "set", "init":
			ps := append(params[:len(params):len(params)], &ast.Param{Type: typ, Name: "value"})
			ms = append(ms, method("set_"+name, "System.Void", ps, aattrs))
		case "add", "remove":
			ms = append(ms, method(a.Name+"_"+name, "System.Void", nil, aattrs))
		}
	}
	return ms
}
