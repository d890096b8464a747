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

package token

var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true,
	"break": true, "byte": true, "case": true, "catch": true,
	"char": true, "checked": true, "class": true, "const": true,
	"continue": true, "decimal": true, "default": true, "delegate": true,
	"do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true,
	"finally": true, "fixed": true, "float": true, "for": true,
	"foreach": true, "goto": true, "if": true, "implicit": true,
	"in": true, "int": true, "interface": true, "internal": true,
	"is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true,
	"out": true, "override": true, "params": true, "private": true,
	"protected": true, "public": true, "readonly": true, "ref": true,
	"return": true, "sbyte": true, "sealed": true, "short": true,
	"sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "uint": true,
	"ulong": true, "unchecked": true, "unsafe": true, "ushort": true,
	"using": true, "virtual": true, "void": true, "volatile": true,
	"while": true,
}

// IsKeyword reports whether name is a reserved C# keyword. Contextual
// keywords (var, get, set, value, partial, where, ...) are not reserved.
func IsKeyword(name string) bool {
	return keywords[name]
}

// builtins maps the predefined type keywords to their library names.
var builtins = map[string]string{
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"float":   "System.Single",
	"int":     "System.Int32",
	"long":    "System.Int64",
	"object":  "System.Object",
	"sbyte":   "System.SByte",
	"short":   "System.Int16",
	"string":  "System.String",
	"uint":    "System.UInt32",
	"ulong":   "System.UInt64",
	"ushort":  "System.UInt16",
	"void":    "System.Void",
	"dynamic": "System.Object",
}

// Builtin returns the canonical library name for a predefined type
// keyword such as int or string.
func Builtin(name string) (string, bool) {
	full, ok := builtins[name]
	return full, ok
}

// IsBuiltinType reports whether name is a predefined type keyword.
func IsBuiltinType(name string) bool {
	_, ok := builtins[name]
	return ok
}
