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
	"fmt"
	"strings"

	"github.com/mpvl/unique"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/token"
	"github.com/jesse99/Continuum-sub001/internal/index"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

// MemberKind classifies members.
type MemberKind int

const (
	Field MemberKind = iota
	Constant
	Property
	Indexer
	Method
	Event
	NestedType
)

var memberKindNames = [...]string{"field", "constant", "property", "indexer", "method", "event", "type"}

func (k MemberKind) String() string {
	if 0 <= k && int(k) < len(memberKindNames) {
		return memberKindNames[k]
	}
	return fmt.Sprintf("MemberKind(%d)", int(k))
}

// A Member is a member of a resolved type, from a live declaration or
// from the index.
type Member struct {
	Name string
	Kind MemberKind

	// Type is the declared type, or the return type of a method, as
	// written in the declaration.
	Type     string
	ArgTypes []string
	ArgNames []string

	Static    bool
	Private   bool
	Protected bool

	// Owner is the full name of the declaring type.
	Owner string

	// Decl is the live declaration, or nil for members only known to
	// the index.
	Decl ast.Member

	ownerDecl *ast.TypeDecl
}

// Signature renders m for display and for telling overloads apart.
func (m Member) Signature() string {
	switch m.Kind {
	case Method:
		return m.Name + "(" + strings.Join(m.ArgTypes, ", ") + ")"
	case Indexer:
		return "this[" + strings.Join(m.ArgTypes, ", ") + "]"
	}
	return m.Name
}

// memberScope returns the context in which the types of m are resolved.
func (q *Query) memberScope(m Member) *scope.Context {
	if m.ownerDecl != nil {
		return q.scopeOf(m.ownerDecl)
	}
	return indexScope(m.Owner)
}

// Members returns the members of t usable with its access: its own
// members, then those of its bases one level at a time. Members of a
// base with the signature of a member already listed are hidden.
//
// Private members are listed only for a type enclosing the offset of q,
// and protected ones also for targets reached through base.
//
// Live declarations are preferred to the index. The index is consulted
// for types that are partial or not declared in an open file, and is the
// only source for bases outside the open files.
func (r *Resolver) Members(q *Query, t Target) []Member {
	var ms []Member
	seen := map[string]bool{}
	within := encloses(q.Scope, t.Name)
	inside := t.ViaBase || within

	queue := []string{t.Name}
	visited := map[string]bool{}
	for level := 0; len(queue) > 0 && level < maxDepth; level++ {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		own, kind, bases := r.typeMembers(q, name)
		enumStatics := level == 0 && kind == "enum" && t.Access == Static
		for _, m := range own {
			switch {
			case enumStatics && m.Kind != Constant:
				continue
			case m.Static && t.Access&Static == 0:
				continue
			case !m.Static && t.Access&Instance == 0:
				continue
			case m.Private && (level > 0 || !within):
				continue
			case m.Protected && !inside:
				continue
			}
			sig := m.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			ms = append(ms, m)
		}
		if enumStatics {
			break
		}
		queue = append(queue, bases...)
	}
	return ms
}

// MemberNames returns the sorted, distinct names of the members of t,
// leaving out indexers.
func (r *Resolver) MemberNames(q *Query, t Target) []string {
	var names []string
	for _, m := range r.Members(q, t) {
		if m.Kind != Indexer {
			names = append(names, m.Name)
		}
	}
	unique.Sort(unique.StringSlice{P: &names})
	return names
}

// encloses reports whether the type named fullName encloses the offset
// of c.
func encloses(c *scope.Context, fullName string) bool {
	for _, t := range c.Types() {
		if t.FullName() == fullName {
			return true
		}
	}
	return false
}

// typeMembers returns the own members of the named type, its kind and
// the names of the types whose members it inherits.
func (r *Resolver) typeMembers(q *Query, fullName string) (ms []Member, kind string, bases []string) {
	decls := q.liveTypes(fullName)
	partial := false
	for _, d := range decls {
		ms = append(ms, liveMembers(d)...)
		kind = d.Kind.String()
		partial = partial || d.IsPartial()
	}
	typ, indexed := r.index().FindType(fullName)
	if indexed && (len(decls) == 0 || partial) {
		ms = append(ms, indexMembers(r.index(), fullName, typ.IsEnum())...)
		if kind == "" {
			kind = typ.Kind
		}
	}
	switch {
	case len(decls) > 0:
		bases = r.liveBases(q, decls)
	case indexed:
		if b, ok := r.index().FindBaseType(fullName); ok && b != "" {
			bases = []string{b}
		} else if fullName != objectType {
			bases = []string{objectType}
		}
	}
	return ms, kind, bases
}

// liveBases returns the full names of the types a live type inherits
// members from: its base class, or all base interfaces for an interface.
func (r *Resolver) liveBases(q *Query, decls []*ast.TypeDecl) []string {
	if decls[0].Kind != ast.Interface {
		if t, ok := r.baseClass(q, decls); ok {
			return []string{t.Name}
		}
		return nil
	}
	var names []string
	for _, d := range decls {
		for _, b := range d.Bases {
			if t, ok := r.resolveType(q, q.scopeOf(d), b, Instance); ok {
				names = append(names, t.Name)
			}
		}
	}
	return append(names, objectType)
}

func liveMembers(t *ast.TypeDecl) []Member {
	var ms []Member
	owner := t.FullName()
	iface := t.Kind == ast.Interface
	for _, d := range t.Members {
		mods := d.Mods()
		m := Member{
			Name:      token.NormalizeName(d.DeclName()),
			Static:    mods.IsStatic(),
			Private:   !iface && mods.IsPrivate(),
			Protected: mods.Has(ast.Protected),
			Owner:     owner,
			Decl:      d,
			ownerDecl: t,
		}
		switch d := d.(type) {
		case *ast.Field:
			m.Kind, m.Type = Field, d.Type
			if d.Const {
				m.Kind = Constant
			}
		case *ast.Method:
			m.Kind, m.Type = Method, d.ReturnType
			m.ArgTypes, m.ArgNames = params(d.Params)
		case *ast.Property:
			m.Kind, m.Type = Property, d.Type
		case *ast.Indexer:
			m.Kind, m.Name, m.Type = Indexer, "this", d.Type
			m.ArgTypes, m.ArgNames = params(d.Params)
		case *ast.Event:
			m.Kind, m.Type = Event, d.Type
		case *ast.EnumValue:
			m.Kind, m.Type, m.Static, m.Private = Constant, owner, true, false
		case *ast.TypeDecl:
			m.Kind, m.Type, m.Static = NestedType, d.FullName(), true
		default:
			// Constructors, destructors and operators are not members
			// that can be named.
			continue
		}
		ms = append(ms, m)
	}
	return ms
}

func params(ps []*ast.Param) (types, names []string) {
	for _, p := range ps {
		types = append(types, p.Type)
		names = append(names, p.Name)
	}
	return types, names
}

// indexMembers renders the index rows of a type as members. Accessor
// methods become properties, indexers and events; constructors and
// operators are left out.
func indexMembers(idx index.Index, fullName string, enum bool) []Member {
	var ms []Member
	for _, f := range idx.FindFields(fullName) {
		m := Member{
			Name:    f.Name,
			Kind:    Field,
			Type:    f.Type,
			Static:  f.Attributes.IsStatic(),
			Private: f.Attributes.IsPrivate(),
			Owner:   fullName,
		}
		if enum && m.Static {
			m.Kind = Constant
		}
		ms = append(ms, m)
	}

	accessors := map[string]int{} // signature to index in ms
	for _, row := range idx.FindMembers(fullName) {
		if row.Name == ".ctor" || row.Name == ".cctor" || strings.HasPrefix(row.Name, "op_") {
			continue
		}
		types, names := row.Args()
		m := Member{
			Name:     row.Name,
			Kind:     Method,
			Type:     row.ReturnType,
			ArgTypes: types,
			ArgNames: names,
			Static:   row.Attributes.IsStatic(),
			Private:  row.Attributes.IsPrivate(),
			Owner:    fullName,
		}
		if prefix, name, ok := accessorName(row.Name); ok {
			m.Name = name
			switch prefix {
			case "get":
				m.Kind = Property
			case "set":
				m.Kind = Property
				if n := len(types); n > 0 {
					m.Type = types[n-1]
					m.ArgTypes, m.ArgNames = types[:n-1], names[:min(n-1, len(names))]
				}
			default:
				m.Kind = Event
				m.Type = ""
				if len(types) > 0 {
					m.Type = types[0]
				}
				m.ArgTypes, m.ArgNames = nil, nil
			}
			if m.Kind == Property && len(m.ArgTypes) > 0 {
				m.Kind, m.Name = Indexer, "this"
			} else {
				m.ArgTypes, m.ArgNames = nil, nil
			}
			if i, ok := accessors[m.Signature()]; ok {
				// One entry per property, visible if any accessor is.
				prev := &ms[i]
				prev.Private = prev.Private && m.Private
				prev.Static = prev.Static || m.Static
				if prev.Type == "" {
					prev.Type = m.Type
				}
				continue
			}
			accessors[m.Signature()] = len(ms)
		}
		ms = append(ms, m)
	}
	return ms
}

func accessorName(name string) (prefix, rest string, ok bool) {
	for _, p := range []string{"get", "set", "add", "remove"} {
		if r, ok := strings.CutPrefix(name, p+"_"); ok && r != "" {
			return p, r, true
		}
	}
	return "", "", false
}
