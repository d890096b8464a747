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

// Package scope locates the declarations that enclose an offset of a
// parsed file.
package scope

import (
	"github.com/jesse99/Continuum-sub001/cs/ast"
)

// A Context describes the declarations enclosing an offset.
type Context struct {
	File   *ast.File
	Offset int

	// Path holds the nodes containing Offset, outermost first.
	Path []ast.Node

	// Namespace is the innermost enclosing namespace. It is the global
	// namespace when no other encloses the offset.
	Namespace *ast.Namespace

	// Type is the innermost enclosing type, or nil.
	Type *ast.TypeDecl

	// Member is the innermost enclosing member of Type other than a
	// nested type, or nil.
	Member ast.Member

	// Accessor is the enclosing property, indexer or event accessor, or
	// nil.
	Accessor *ast.Accessor

	// Body is the innermost enclosing executable body, or nil.
	Body *ast.Body
}

// Locate returns the context of offset in f. The file may be nil, in
// which case the context is empty.
func Locate(f *ast.File, offset int) *Context {
	c := &Context{File: f, Offset: offset}
	if f == nil {
		return c
	}
	c.Namespace = f.Namespace
	c.Path = ast.Path(f, offset)
	for _, n := range c.Path {
		switch n := n.(type) {
		case *ast.Namespace:
			c.Namespace = n
		case *ast.TypeDecl:
			c.Type = n
			c.Member = nil
			c.Accessor = nil
			c.Body = nil
		case *ast.Accessor:
			c.Accessor = n
		case *ast.Body:
			c.Body = n
		case ast.Member:
			c.Member = n
		}
	}
	return c
}

// InBody reports whether the offset lies inside an executable body,
// after its opening brace or arrow.
func (c *Context) InBody() bool {
	return c.Body != nil && c.Offset > c.Body.Brace
}

// IsStatic reports whether the enclosing member is static, in which case
// this is not available.
func (c *Context) IsStatic() bool {
	return c.Member != nil && c.Member.Mods().IsStatic()
}

// InSetter reports whether the offset is in a set or init accessor, or an
// event accessor, where the implicit value parameter is in scope.
func (c *Context) InSetter() bool {
	if c.Accessor == nil {
		return false
	}
	switch c.Accessor.Name {
	case "set", "init", "add", "remove":
		return true
	}
	return false
}

// Types returns the enclosing types, innermost first.
func (c *Context) Types() []*ast.TypeDecl {
	var ts []*ast.TypeDecl
	for t := c.Type; t != nil; t = t.Outer {
		ts = append(ts, t)
	}
	return ts
}

// Namespaces returns the full names of the enclosing namespaces,
// innermost first. The global namespace, with the empty name, comes last.
func (c *Context) Namespaces() []string {
	var names []string
	for ns := c.Namespace; ns != nil; ns = ns.Parent {
		// A dotted namespace declaration such as N.M also opens N.
		full := ns.FullName()
		for full != "" {
			names = append(names, full)
			full = parentName(full)
			if ns.Parent != nil && full == ns.Parent.FullName() {
				break
			}
		}
	}
	return append(names, "")
}

func parentName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}

// Usings returns the namespaces imported by using directives in scope,
// innermost first. Aliases and using static directives are not included.
func (c *Context) Usings() []string {
	var names []string
	for ns := c.Namespace; ns != nil; ns = ns.Parent {
		for _, u := range ns.Usings {
			if u.Alias == "" && !u.Static {
				names = append(names, u.Name)
			}
		}
	}
	return names
}

// StaticUsings returns the types named by using static directives in
// scope.
func (c *Context) StaticUsings() []string {
	var names []string
	for ns := c.Namespace; ns != nil; ns = ns.Parent {
		for _, u := range ns.Usings {
			if u.Static {
				names = append(names, u.Name)
			}
		}
	}
	return names
}

// Alias returns the target of the using alias name, if one is in scope.
// Inner aliases shadow outer ones.
func (c *Context) Alias(name string) (string, bool) {
	for ns := c.Namespace; ns != nil; ns = ns.Parent {
		for _, u := range ns.Usings {
			if u.Alias == name {
				return u.Name, true
			}
		}
	}
	return "", false
}
