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

// Package index defines the read-only symbol index of compiled types that
// completion consults for types outside the open files.
//
// The index is addressed by fully qualified type name, with generic types
// carrying an arity suffix, as in System.Collections.Generic.List`1. It is
// populated by a separate build step and may lag behind the files being
// edited.
package index

import "strings"

// Attr is a set of member attribute flags.
type Attr uint16

const (
	// Private marks a member that is only accessible within its type.
	Private Attr = 1 << 0

	// Static marks a member that belongs to the type rather than an
	// instance.
	Static Attr = 1 << 4
)

// IsPrivate reports whether a has the private flag.
func (a Attr) IsPrivate() bool { return a&Private != 0 }

// IsStatic reports whether a has the static flag.
func (a Attr) IsStatic() bool { return a&Static != 0 }

// A Type is a type row.
type Type struct {
	Name string `yaml:"name" toml:"name"`
	Hash string `yaml:"hash,omitempty" toml:"hash,omitempty"` // staleness token
	Kind string `yaml:"kind,omitempty" toml:"kind,omitempty"` // class, struct, interface, enum or delegate
}

// IsEnum reports whether t is an enum type.
func (t Type) IsEnum() bool { return t.Kind == "enum" }

// A Method is a method row. Property, event accessors and constructors
// are stored as methods using the compiler's names: get_X, set_X, add_X,
// remove_X, .ctor and .cctor.
type Method struct {
	Name       string `yaml:"name" toml:"name"`
	ReturnType string `yaml:"return,omitempty" toml:"return,omitempty"`
	ArgTypes   string `yaml:"argTypes,omitempty" toml:"argTypes,omitempty"` // colon delimited
	ArgNames   string `yaml:"argNames,omitempty" toml:"argNames,omitempty"` // colon delimited
	Attributes Attr   `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
}

// Args returns the argument types and names of m.
func (m Method) Args() (types, names []string) {
	return splitColons(m.ArgTypes), splitColons(m.ArgNames)
}

func splitColons(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ":")
}

// A Field is a field row.
type Field struct {
	Name       string `yaml:"name" toml:"name"`
	Type       string `yaml:"type" toml:"type"`
	Attributes Attr   `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
}

// An Index answers queries about compiled types. Implementations must be
// safe for concurrent use.
type Index interface {
	// FindType reports whether the named type exists.
	FindType(fullName string) (Type, bool)

	// FindMembers returns the methods declared by the named type.
	FindMembers(fullName string) []Method

	// FindFields returns the fields declared by the named type.
	FindFields(fullName string) []Field

	// FindBaseType returns the base class of the named type.
	FindBaseType(fullName string) (string, bool)
}

// Empty is an Index without any types.
var Empty Index = empty{}

type empty struct{}

func (empty) FindType(string) (Type, bool)       { return Type{}, false }
func (empty) FindMembers(string) []Method        { return nil }
func (empty) FindFields(string) []Field          { return nil }
func (empty) FindBaseType(string) (string, bool) { return "", false }
