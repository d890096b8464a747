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

import "strings"

// Modifiers is a set of declaration modifiers.
type Modifiers uint32

const (
	Public Modifiers = 1 << iota
	Protected
	Internal
	Private
	Static
	Abstract
	Sealed
	Virtual
	Override
	New
	Extern
	Readonly
	Volatile
	Unsafe
	Partial
	Const
	Async
	Implicit
	Explicit
	Fixed

	// AccessMask selects the accessibility modifiers.
	AccessMask = Public | Protected | Internal | Private
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Internal, "internal"},
	{Private, "private"},
	{Static, "static"},
	{Abstract, "abstract"},
	{Sealed, "sealed"},
	{Virtual, "virtual"},
	{Override, "override"},
	{New, "new"},
	{Extern, "extern"},
	{Readonly, "readonly"},
	{Volatile, "volatile"},
	{Unsafe, "unsafe"},
	{Partial, "partial"},
	{Const, "const"},
	{Async, "async"},
	{Implicit, "implicit"},
	{Explicit, "explicit"},
	{Fixed, "fixed"},
}

// LookupModifier returns the modifier spelled name.
func LookupModifier(name string) (Modifiers, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}

// Has reports whether all modifiers in x are set in m.
func (m Modifiers) Has(x Modifiers) bool { return m&x == x }

// IsStatic reports whether m declares a static or constant member;
// constants are implicitly static.
func (m Modifiers) IsStatic() bool { return m&(Static|Const) != 0 }

// IsPrivate reports whether m declares a member that is only accessible
// within its own type: either an explicit private or no access modifier
// at all, which defaults to private for members.
func (m Modifiers) IsPrivate() bool {
	return m&AccessMask == Private || m&AccessMask == 0
}

func (m Modifiers) String() string {
	var parts []string
	for _, x := range modifierNames {
		if m&x.mod != 0 {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, " ")
}
