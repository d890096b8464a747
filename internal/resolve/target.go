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

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/internal/index"
)

// Access selects the members of a target that may be used: those of an
// instance, the static ones, or both.
type Access uint8

const (
	Instance Access = 1 << iota
	Static

	Both = Instance | Static
)

func (a Access) String() string {
	switch a {
	case Instance:
		return "instance"
	case Static:
		return "static"
	case Both:
		return "instance|static"
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

// A Source says where the declaration of a resolved type comes from. It
// is either Live or Indexed.
type Source interface {
	source()
}

// Live is the source of a type declared in an open file. Decl is one of
// its declarations; a partial type may have several.
type Live struct {
	Decl *ast.TypeDecl
}

// Indexed is the source of a type known only to the persisted index.
type Indexed struct {
	Type index.Type
}

func (Live) source()    {}
func (Indexed) source() {}

// A Target is the resolved static type of a name or expression.
type Target struct {
	// Name is the fully qualified name of the type, with generic arity
	// suffixes, such as System.Collections.Generic.List`1.
	Name   string
	Source Source
	Access Access

	// ViaBase is set for targets reached through base, whose protected
	// members are visible.
	ViaBase bool
}

// Decl returns the live declaration of t, if there is one.
func (t Target) Decl() (*ast.TypeDecl, bool) {
	if l, ok := t.Source.(Live); ok && l.Decl != nil {
		return l.Decl, true
	}
	return nil, false
}

// Kind returns the kind of the target type: class, struct, interface,
// enum or delegate. It is empty if unknown.
func (t Target) Kind() string {
	switch s := t.Source.(type) {
	case Live:
		return s.Decl.Kind.String()
	case Indexed:
		return s.Type.Kind
	}
	return ""
}

func (t Target) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	switch t.Source.(type) {
	case Live:
		b.WriteString(" (live, ")
	case Indexed:
		b.WriteString(" (indexed, ")
	default:
		b.WriteString(" (")
	}
	b.WriteString(t.Access.String())
	if t.ViaBase {
		b.WriteString(", base")
	}
	b.WriteByte(')')
	return b.String()
}
