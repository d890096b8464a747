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

package scope

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/parser"
)

const src = `using System;
using Col = System.Collections.Generic;
namespace Outer.Inner {
	using System.Linq;
	using static System.Math;
	class Widget {
		int count;
		public void Work(int n) {
			/*work*/
		}
		public int Count {
			get { return count; }
			set { /*setter*/ }
		}
		static void Helper() { /*static*/ }
		class Nested {
			void F() { /*nested*/ }
		}
	}
}
`

func locate(t *testing.T, marker string) *Context {
	f, err := parser.Parse("w.cs", src)
	qt.Assert(t, qt.IsNil(err))
	off := strings.Index(src, marker)
	qt.Assert(t, qt.Not(qt.Equals(off, -1)))
	return Locate(f, off)
}

func TestLocateMethod(t *testing.T) {
	c := locate(t, "/*work*/")
	qt.Assert(t, qt.Equals(c.Type.Name, "Widget"))
	qt.Assert(t, qt.Equals(c.Member.DeclName(), "Work"))
	qt.Assert(t, qt.IsTrue(c.InBody()))
	qt.Assert(t, qt.IsFalse(c.IsStatic()))
	qt.Assert(t, qt.IsFalse(c.InSetter()))
	qt.Assert(t, qt.Equals(c.Namespace.Name, "Outer.Inner"))
	qt.Assert(t, qt.DeepEquals(c.Namespaces(), []string{"Outer.Inner", "Outer", ""}))
	qt.Assert(t, qt.DeepEquals(c.Usings(), []string{"System.Linq", "System"}))
	qt.Assert(t, qt.DeepEquals(c.StaticUsings(), []string{"System.Math"}))

	target, ok := c.Alias("Col")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(target, "System.Collections.Generic"))
	_, ok = c.Alias("System")
	qt.Assert(t, qt.IsFalse(ok))
}

func TestLocateAccessor(t *testing.T) {
	c := locate(t, "/*setter*/")
	qt.Assert(t, qt.Equals(c.Member.DeclName(), "Count"))
	qt.Assert(t, qt.Equals(c.Accessor.Name, "set"))
	qt.Assert(t, qt.IsTrue(c.InSetter()))
	qt.Assert(t, qt.IsTrue(c.InBody()))
}

func TestLocateStatic(t *testing.T) {
	c := locate(t, "/*static*/")
	qt.Assert(t, qt.Equals(c.Member.DeclName(), "Helper"))
	qt.Assert(t, qt.IsTrue(c.IsStatic()))
}

func TestLocateNested(t *testing.T) {
	c := locate(t, "/*nested*/")
	qt.Assert(t, qt.Equals(c.Type.FullName(), "Outer.Inner.Widget.Nested"))
	qt.Assert(t, qt.Equals(c.Member.DeclName(), "F"))
	var names []string
	for _, t := range c.Types() {
		names = append(names, t.Name)
	}
	qt.Assert(t, qt.DeepEquals(names, []string{"Nested", "Widget"}))
}

func TestLocateOutsideMembers(t *testing.T) {
	c := locate(t, "int count")
	qt.Assert(t, qt.Equals(c.Type.Name, "Widget"))
	qt.Assert(t, qt.Equals(c.Member.(*ast.Field).Name, "count"))
	qt.Assert(t, qt.IsNil(c.Body))
	qt.Assert(t, qt.IsFalse(c.InBody()))

	c = locate(t, "using System;")
	qt.Assert(t, qt.IsNil(c.Type))
	qt.Assert(t, qt.DeepEquals(c.Namespaces(), []string{""}))

	c = Locate(nil, 10)
	qt.Assert(t, qt.IsNil(c.Type))
	qt.Assert(t, qt.DeepEquals(c.Namespaces(), []string{""}))
}
