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

// Package ast declares the types used to represent the declaration tree
// of a C# source file.
//
// The tree only covers declarations: namespaces, types and members.
// Executable code is represented by [Body] spans and type references are
// kept as their source text, so the tree stays cheap to rebuild on every
// edit. A tree is never modified after the parser returns it.
package ast

import (
	"strconv"
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/token"
)

// ----------------------------------------------------------------------------
// Interfaces
//
// All nodes carry the span of the source text they were parsed from. The
// span of a child always lies within the span of its parent.

// A Node represents any node in the declaration tree.
type Node interface {
	Span() token.Span
	Children() []Node
}

// A Decl is implemented by nodes that declare a named entity.
type Decl interface {
	Node
	DeclName() string
	Mods() Modifiers
	Attrs() []*Attribute
}

// A Member is implemented by the declarations that may appear in the body
// of a type.
type Member interface {
	Decl
	memberNode()
}

func (*Field) memberNode()       {}
func (*Method) memberNode()      {}
func (*Constructor) memberNode() {}
func (*Destructor) memberNode()  {}
func (*Operator) memberNode()    {}
func (*Property) memberNode()    {}
func (*Indexer) memberNode()     {}
func (*Event) memberNode()       {}
func (*EnumValue) memberNode()   {}
func (*TypeDecl) memberNode()    {}

// ----------------------------------------------------------------------------
// Common parts

// Info holds the parts common to all declarations.
type Info struct {
	Pos        token.Span
	Name       string
	Modifiers  Modifiers
	Attributes []*Attribute
}

func (d *Info) Span() token.Span    { return d.Pos }
func (d *Info) DeclName() string    { return d.Name }
func (d *Info) Mods() Modifiers     { return d.Modifiers }
func (d *Info) Attrs() []*Attribute { return d.Attributes }

func (d *Info) attrNodes(ns []Node) []Node {
	for _, a := range d.Attributes {
		ns = append(ns, a)
	}
	return ns
}

// An Attribute is a single attribute inside an attribute section, such as
// the Serializable in [Serializable, Obsolete("x")].
type Attribute struct {
	Pos    token.Span
	Target string // assembly, return, field, ...; empty if absent
	Name   string
	Args   string // raw argument text including parentheses; may be empty
}

func (a *Attribute) Span() token.Span { return a.Pos }
func (a *Attribute) Children() []Node { return nil }

// A Body is the executable region of a member: a block or the expression
// of an expression-bodied member.
type Body struct {
	Start int // offset of the first character of the owning declaration
	Brace int // offset of the opening brace, or of the => token
	Pos   token.Span
}

func (b *Body) Span() token.Span { return b.Pos }
func (b *Body) Children() []Node { return nil }

// A Param is a formal parameter of a method, constructor, indexer,
// operator or delegate.
type Param struct {
	Pos        token.Span
	Attributes []*Attribute
	Modifier   string // ref, out, in, params or this; empty if absent
	Type       string
	Name       string
	Default    string // raw default value text; empty if absent
}

func (p *Param) Span() token.Span { return p.Pos }
func (p *Param) Children() []Node {
	var ns []Node
	for _, a := range p.Attributes {
		ns = append(ns, a)
	}
	return ns
}

// ----------------------------------------------------------------------------
// Files and namespaces

// A File is the root of a declaration tree. Its namespace is the global
// namespace, with an empty name.
type File struct {
	Filename   string
	Pos        token.Span
	Attributes []*Attribute // global attributes such as [assembly: ...]
	Externs    []string     // extern alias names
	Namespace  *Namespace
}

func (f *File) Span() token.Span { return f.Pos }
func (f *File) Children() []Node {
	var ns []Node
	for _, a := range f.Attributes {
		ns = append(ns, a)
	}
	return append(ns, f.Namespace)
}

// A Using is a using directive.
type Using struct {
	Pos    token.Span
	Alias  string // alias name for using A = N.T; empty otherwise
	Name   string // namespace or type name
	Static bool   // using static N.T;
}

func (u *Using) Span() token.Span { return u.Pos }
func (u *Using) Children() []Node { return nil }

// A Namespace holds using directives, nested namespaces and types in
// source order.
type Namespace struct {
	Pos        token.Span
	Name       string // dotted name relative to the parent; empty for the global namespace
	Usings     []*Using
	Namespaces []*Namespace
	Types      []*TypeDecl
	Parent     *Namespace
}

func (n *Namespace) Span() token.Span { return n.Pos }
func (n *Namespace) Children() []Node {
	ns := make([]Node, 0, len(n.Usings)+len(n.Namespaces)+len(n.Types))
	for _, u := range n.Usings {
		ns = append(ns, u)
	}
	for _, x := range n.Namespaces {
		ns = append(ns, x)
	}
	for _, t := range n.Types {
		ns = append(ns, t)
	}
	sortNodes(ns)
	return ns
}

// FullName returns the fully qualified name of n.
func (n *Namespace) FullName() string {
	if n == nil || n.Name == "" {
		return ""
	}
	if p := n.Parent.FullName(); p != "" {
		return p + "." + n.Name
	}
	return n.Name
}

// ----------------------------------------------------------------------------
// Types

// TypeKind identifies the flavor of a type declaration.
type TypeKind int

const (
	Class TypeKind = iota
	Struct
	Interface
	Enum
	Delegate
)

var typeKindNames = [...]string{"class", "struct", "interface", "enum", "delegate"}

func (k TypeKind) String() string { return typeKindNames[k] }

// A TypeDecl declares a class, struct, interface, enum or delegate.
type TypeDecl struct {
	Info
	Kind        TypeKind
	TypeParams  []string // generic parameter names
	Bases       []string // base class and interfaces; the underlying type for enums
	Constraints string   // raw where clauses
	Members     []Member // fields, methods, nested types, ... in source order
	Body        token.Span

	// Delegates only.
	ReturnType string
	Params     []*Param

	Namespace *Namespace // enclosing namespace
	Outer     *TypeDecl  // enclosing type for nested types
}

func (t *TypeDecl) Children() []Node {
	ns := t.attrNodes(nil)
	for _, p := range t.Params {
		ns = append(ns, p)
	}
	for _, m := range t.Members {
		ns = append(ns, m)
	}
	return ns
}

// FullName returns the fully qualified name of t, with nested types
// joined by dots and generic types suffixed with their arity, as in
// N.Outer`1.Inner.
func (t *TypeDecl) FullName() string {
	var b strings.Builder
	if t.Outer != nil {
		b.WriteString(t.Outer.FullName())
		b.WriteByte('.')
	} else if ns := t.Namespace.FullName(); ns != "" {
		b.WriteString(ns)
		b.WriteByte('.')
	}
	b.WriteString(t.MetadataName())
	return b.String()
}

// MetadataName returns the simple name of t with its generic arity, such
// as List`1.
func (t *TypeDecl) MetadataName() string {
	if len(t.TypeParams) == 0 {
		return t.Name
	}
	return t.Name + "`" + strconv.Itoa(len(t.TypeParams))
}

// IsPartial reports whether t was declared with the partial modifier.
func (t *TypeDecl) IsPartial() bool { return t.Modifiers&Partial != 0 }

// Types returns the nested type declarations of t.
func (t *TypeDecl) Types() []*TypeDecl {
	var ts []*TypeDecl
	for _, m := range t.Members {
		if n, ok := m.(*TypeDecl); ok {
			ts = append(ts, n)
		}
	}
	return ts
}

// ----------------------------------------------------------------------------
// Members

// A Field declares a field or constant. A declaration with several
// declarators, such as int a, b;, yields one Field per name.
type Field struct {
	Info
	Type  string
	Value string // raw initializer text; empty if absent
	Const bool
}

func (f *Field) Children() []Node { return f.attrNodes(nil) }

// A Method declares a method.
type Method struct {
	Info
	ReturnType  string
	TypeParams  []string
	Params      []*Param
	Constraints string
	Body        *Body // nil for abstract, extern and interface methods
}

func (m *Method) Children() []Node { return withBody(paramNodes(m.attrNodes(nil), m.Params), m.Body) }

// A Constructor declares an instance or static constructor.
type Constructor struct {
	Info
	Params      []*Param
	Initializer string // raw ": base(...)" or ": this(...)" text
	Body        *Body
}

func (c *Constructor) Children() []Node {
	return withBody(paramNodes(c.attrNodes(nil), c.Params), c.Body)
}

// A Destructor declares a finalizer.
type Destructor struct {
	Info
	Body *Body
}

func (d *Destructor) Children() []Node { return withBody(d.attrNodes(nil), d.Body) }

// An Operator declares an overloaded operator or a conversion operator.
// Name holds the operator token, or implicit/explicit for conversions.
type Operator struct {
	Info
	ReturnType string
	Params     []*Param
	Body       *Body
}

func (o *Operator) Children() []Node {
	return withBody(paramNodes(o.attrNodes(nil), o.Params), o.Body)
}

// An Accessor is a get, set, init, add or remove accessor.
type Accessor struct {
	Info
	Body *Body // nil for auto-implemented and abstract accessors
}

func (a *Accessor) Children() []Node { return withBody(a.attrNodes(nil), a.Body) }

// A Property declares a property.
type Property struct {
	Info
	Type      string
	Accessors []*Accessor
	Body      *Body  // expression body of => properties
	Value     string // raw initializer text of auto-properties
}

func (p *Property) Children() []Node {
	ns := p.attrNodes(nil)
	for _, a := range p.Accessors {
		ns = append(ns, a)
	}
	return withBody(ns, p.Body)
}

// Accessor returns the accessor with the given keyword, or nil.
func (p *Property) Accessor(kind string) *Accessor { return findAccessor(p.Accessors, kind) }

// An Indexer declares an indexer, this[...].
type Indexer struct {
	Info
	Type      string
	Params    []*Param
	Accessors []*Accessor
	Body      *Body
}

func (x *Indexer) Children() []Node {
	ns := paramNodes(x.attrNodes(nil), x.Params)
	for _, a := range x.Accessors {
		ns = append(ns, a)
	}
	return withBody(ns, x.Body)
}

// Accessor returns the accessor with the given keyword, or nil.
func (x *Indexer) Accessor(kind string) *Accessor { return findAccessor(x.Accessors, kind) }

// An Event declares an event, either field-like or with add/remove
// accessors.
type Event struct {
	Info
	Type      string
	Accessors []*Accessor
}

func (e *Event) Children() []Node {
	ns := e.attrNodes(nil)
	for _, a := range e.Accessors {
		ns = append(ns, a)
	}
	return ns
}

// An EnumValue declares a named constant of an enum.
type EnumValue struct {
	Info
	Value string
}

func (e *EnumValue) Children() []Node { return e.attrNodes(nil) }

// ----------------------------------------------------------------------------
// Helpers

func findAccessor(as []*Accessor, kind string) *Accessor {
	for _, a := range as {
		if a.Name == kind {
			return a
		}
	}
	return nil
}

func paramNodes(ns []Node, ps []*Param) []Node {
	for _, p := range ps {
		ns = append(ns, p)
	}
	return ns
}

func withBody(ns []Node, b *Body) []Node {
	if b != nil {
		ns = append(ns, b)
	}
	return ns
}

func sortNodes(ns []Node) {
	// Insertion sort: the inputs are nearly sorted and short.
	for i := 1; i < len(ns); i++ {
		for j := i; j > 0 && ns[j].Span().Offset < ns[j-1].Span().Offset; j-- {
			ns[j], ns[j-1] = ns[j-1], ns[j]
		}
	}
}

// BodyOf returns the executable body of m, if it has one. For properties
// and indexers without an expression body it returns nil; use the
// accessors instead.
func BodyOf(m Node) *Body {
	switch m := m.(type) {
	case *Method:
		return m.Body
	case *Constructor:
		return m.Body
	case *Destructor:
		return m.Body
	case *Operator:
		return m.Body
	case *Accessor:
		return m.Body
	case *Property:
		return m.Body
	case *Indexer:
		return m.Body
	}
	return nil
}

// ParamsOf returns the formal parameters of m.
func ParamsOf(m Node) []*Param {
	switch m := m.(type) {
	case *Method:
		return m.Params
	case *Constructor:
		return m.Params
	case *Operator:
		return m.Params
	case *Indexer:
		return m.Params
	case *TypeDecl:
		return m.Params
	}
	return nil
}
