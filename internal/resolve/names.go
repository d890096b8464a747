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
	"slices"
	"strings"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/literal"
	"github.com/jesse99/Continuum-sub001/cs/token"
	"github.com/jesse99/Continuum-sub001/internal/locals"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

// Origin tells where a Variable is declared.
type Origin int

const (
	This Origin = iota
	Value
	Local
	Argument
	MemberVar
)

var originNames = [...]string{"this", "value", "local", "argument", "member"}

func (o Origin) String() string {
	if 0 <= o && int(o) < len(originNames) {
		return originNames[o]
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// A Variable is a name with a declared type that is visible at the
// offset of a query.
type Variable struct {
	Type   string // declared type text; var for implicitly typed locals
	Name   string
	Value  string // initializer text, if any
	Origin Origin

	// Owner is the declaring type of a member variable. Its Type is
	// resolved in the scope of Owner.
	Owner *ast.TypeDecl
}

// Variables returns the variables visible at the offset of q, in lookup
// order: this, the value of a setter, locals with the most recent first,
// arguments and the members of the enclosing types.
func (q *Query) Variables() []Variable {
	if q.varsDone {
		return q.vars
	}
	q.varsDone = true
	c := q.Scope
	if c.Type == nil {
		return nil
	}
	var vs []Variable
	if !c.IsStatic() {
		vs = append(vs, Variable{Type: c.Type.FullName(), Name: "this", Origin: This})
	}
	if c.InSetter() {
		if typ := memberType(c.Member); typ != "" {
			vs = append(vs, Variable{Type: typ, Name: "value", Origin: Value})
		}
	}
	if c.InBody() {
		ls := locals.Parse(q.Text, c.Body.Brace, q.Offset)
		for _, l := range slices.Backward(ls) {
			vs = append(vs, Variable{Type: l.Type, Name: l.Name, Value: l.Value, Origin: Local})
		}
	}
	for _, p := range ast.ParamsOf(c.Member) {
		vs = append(vs, Variable{Type: p.Type, Name: token.NormalizeName(p.Name), Value: p.Default, Origin: Argument})
	}
	for i, t := range c.Types() {
		for _, part := range q.parts(t) {
			vs = appendMembers(vs, part, i > 0)
		}
	}
	q.vars = vs
	return vs
}

// parts returns the declarations of the partial type t in the open
// files, or t alone.
func (q *Query) parts(t *ast.TypeDecl) []*ast.TypeDecl {
	if !t.IsPartial() {
		return []*ast.TypeDecl{t}
	}
	if ds := q.liveTypes(t.FullName()); len(ds) > 0 {
		return ds
	}
	return []*ast.TypeDecl{t}
}

func appendMembers(vs []Variable, t *ast.TypeDecl, staticOnly bool) []Variable {
	for _, m := range t.Members {
		if staticOnly && !m.Mods().IsStatic() {
			continue
		}
		v := Variable{Name: token.NormalizeName(m.DeclName()), Origin: MemberVar, Owner: t}
		switch m := m.(type) {
		case *ast.Field:
			v.Type, v.Value = m.Type, m.Value
		case *ast.Property:
			v.Type, v.Value = m.Type, m.Value
		case *ast.Event:
			v.Type = m.Type
		case *ast.EnumValue:
			v.Type, v.Value = t.FullName(), m.Value
		default:
			continue
		}
		vs = append(vs, v)
	}
	return vs
}

func memberType(m ast.Member) string {
	switch m := m.(type) {
	case *ast.Property:
		return m.Type
	case *ast.Indexer:
		return m.Type
	case *ast.Event:
		return m.Type
	}
	return ""
}

// ResolveName resolves an identifier, this, base or a literal at the
// offset of q. Chained reports whether the name starts a member access,
// in which case this gives access to all members of the enclosing type.
func (r *Resolver) ResolveName(q *Query, name string, chained bool) (Target, bool) {
	name = strings.TrimSpace(name)
	c := q.Scope
	switch name {
	case "this":
		if c.Type == nil || c.IsStatic() {
			return Target{}, false
		}
		access := Instance
		if chained {
			access = Both
		}
		return Target{Name: c.Type.FullName(), Source: Live{Decl: c.Type}, Access: access}, true
	case "base":
		if c.Type == nil || c.IsStatic() {
			return Target{}, false
		}
		t, ok := r.baseClass(q, q.parts(c.Type))
		if !ok {
			return Target{}, false
		}
		t.Access = Instance
		t.ViaBase = true
		return t, true
	case "":
		return Target{}, false
	}

	for _, v := range q.Variables() {
		if v.Name == token.NormalizeName(name) {
			return r.variableTarget(q, v)
		}
	}
	if t, ok := r.resolveType(q, c, name, Static); ok {
		return t, true
	}
	if full, ok := literalType(name); ok {
		return r.lookup(q, full, Instance)
	}
	return Target{}, false
}

func (r *Resolver) variableTarget(q *Query, v Variable) (Target, bool) {
	typ, c, ok := q.variableType(v)
	if !ok {
		r.logger().Debug("cannot infer type", "name", v.Name, "init", v.Value)
		return Target{}, false
	}
	return r.resolveType(q, c, typ, Instance)
}

// variableType returns the type text of v and the scope to resolve it in.
func (q *Query) variableType(v Variable) (string, *scope.Context, bool) {
	c := q.Scope
	if v.Owner != nil {
		c = q.scopeOf(v.Owner)
	}
	if v.Type != "var" {
		return v.Type, c, true
	}
	typ, ok := InferType(v.Value)
	return typ, c, ok
}

// literalType returns the type of a literal written as text.
func literalType(text string) (string, bool) {
	switch {
	case strings.HasPrefix(text, `"`), strings.HasPrefix(text, `@"`),
		strings.HasPrefix(text, `$"`), strings.HasPrefix(text, `$@"`), strings.HasPrefix(text, `@$"`):
		return "System.String", true
	case strings.HasPrefix(text, "'"):
		return "System.Char", true
	}
	toks := tokens(text)
	if len(toks) != 1 {
		return "", false
	}
	return literal.TypeOf(toks[0])
}

// baseClass resolves the base class of a type given by its parts. It
// is the first base that is not an interface, or a default that
// depends on the kind of type.
func (r *Resolver) baseClass(q *Query, parts []*ast.TypeDecl) (Target, bool) {
	if len(parts) == 0 {
		return Target{}, false
	}
	if name := defaultBase(parts[0]); name != "" {
		return r.lookup(q, name, Instance)
	}
	for _, p := range parts {
		for _, b := range p.Bases {
			t, ok := r.resolveType(q, q.scopeOf(p), b, Instance)
			if ok && t.Kind() != "interface" {
				return t, true
			}
		}
	}
	if parts[0].FullName() == objectType {
		return Target{}, false
	}
	return r.lookup(q, objectType, Instance)
}

// defaultBase returns the implied base class of the value types, enums
// and delegates.
func defaultBase(t *ast.TypeDecl) string {
	switch t.Kind {
	case ast.Struct:
		return "System.ValueType"
	case ast.Enum:
		return "System.Enum"
	case ast.Delegate:
		return "System.MulticastDelegate"
	}
	return ""
}
