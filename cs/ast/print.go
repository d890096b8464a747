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

package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the declarations under n to w, one
// line per declaration. The output is stable and meant for tests and
// debugging.
func Fprint(w io.Writer, n Node) error {
	pr := &printer{w: w}
	pr.node(n, 0)
	return pr.err
}

// Sprint returns the outline that Fprint would write.
func Sprint(n Node) string {
	var b strings.Builder
	Fprint(&b, n)
	return b.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (pr *printer) printf(depth int, format string, args ...any) {
	if pr.err != nil {
		return
	}
	_, pr.err = fmt.Fprintf(pr.w, "%s"+format+"\n", append([]any{strings.Repeat("\t", depth)}, args...)...)
}

func mods(m Modifiers) string {
	if m == 0 {
		return ""
	}
	return m.String() + " "
}

func (pr *printer) node(n Node, depth int) {
	switch n := n.(type) {
	case *File:
		for _, e := range n.Externs {
			pr.printf(depth, "extern alias %s", e)
		}
		for _, a := range n.Attributes {
			pr.printf(depth, "[%s: %s%s]", a.Target, a.Name, a.Args)
		}
		pr.node(n.Namespace, depth)
		return

	case *Namespace:
		if n.Name != "" {
			pr.printf(depth, "namespace %s", n.Name)
			depth++
		}
		for _, c := range n.Children() {
			pr.node(c, depth)
		}
		return

	case *Using:
		switch {
		case n.Alias != "":
			pr.printf(depth, "using %s = %s", n.Alias, n.Name)
		case n.Static:
			pr.printf(depth, "using static %s", n.Name)
		default:
			pr.printf(depth, "using %s", n.Name)
		}
		return

	case *TypeDecl:
		line := mods(n.Modifiers) + n.Kind.String() + " " + n.MetadataName()
		if n.Kind == Delegate {
			line = mods(n.Modifiers) + "delegate " + n.ReturnType + " " + n.MetadataName() + params(n.Params, "(", ")")
		}
		if len(n.Bases) > 0 {
			line += " : " + strings.Join(n.Bases, ", ")
		}
		pr.printf(depth, "%s", line)
		for _, m := range n.Members {
			pr.node(m, depth+1)
		}
		return

	case *Field:
		kw := ""
		if n.Const {
			kw = "const "
		}
		line := mods(n.Modifiers&^Const) + kw + n.Type + " " + n.Name
		if n.Value != "" {
			line += " = " + n.Value
		}
		pr.printf(depth, "%s", line)

	case *Method:
		tps := ""
		if len(n.TypeParams) > 0 {
			tps = "<" + strings.Join(n.TypeParams, ", ") + ">"
		}
		pr.printf(depth, "%s%s %s%s%s%s", mods(n.Modifiers), n.ReturnType, n.Name, tps, params(n.Params, "(", ")"), body(n.Body))

	case *Constructor:
		pr.printf(depth, "%s%s%s%s", mods(n.Modifiers), n.Name, params(n.Params, "(", ")"), body(n.Body))

	case *Destructor:
		pr.printf(depth, "%s()%s", n.Name, body(n.Body))

	case *Operator:
		pr.printf(depth, "%s%s operator %s%s%s", mods(n.Modifiers), n.ReturnType, n.Name, params(n.Params, "(", ")"), body(n.Body))

	case *Property:
		pr.printf(depth, "%s%s %s%s%s", mods(n.Modifiers), n.Type, n.Name, accessors(n.Accessors), body(n.Body))

	case *Indexer:
		pr.printf(depth, "%s%s %s%s%s%s", mods(n.Modifiers), n.Type, n.Name, params(n.Params, "[", "]"), accessors(n.Accessors), body(n.Body))

	case *Event:
		pr.printf(depth, "%sevent %s %s%s", mods(n.Modifiers), n.Type, n.Name, accessors(n.Accessors))

	case *EnumValue:
		if n.Value != "" {
			pr.printf(depth, "%s = %s", n.Name, n.Value)
		} else {
			pr.printf(depth, "%s", n.Name)
		}
	}
}

func params(ps []*Param, open, close string) string {
	var parts []string
	for _, p := range ps {
		s := p.Type + " " + p.Name
		if p.Modifier != "" {
			s = p.Modifier + " " + s
		}
		if p.Default != "" {
			s += " = " + p.Default
		}
		parts = append(parts, s)
	}
	return open + strings.Join(parts, ", ") + close
}

func accessors(as []*Accessor) string {
	if len(as) == 0 {
		return ""
	}
	var parts []string
	for _, a := range as {
		parts = append(parts, mods(a.Modifiers)+a.Name)
	}
	return " {" + strings.Join(parts, "; ") + "}"
}

func body(b *Body) string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf(" @%d", b.Pos.Line)
}
