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

import "strings"

// Join concatenates the texts of toks. A single space separates two
// adjacent word-like tokens (identifiers, numbers and literals) so that,
// for example, "x as T" and "new T()" keep their meaning, and follows
// each comma, as in Dictionary<int, string>. Other punctuation is never
// padded: List<int> [ ] joins as "List<int>[]".
func Join(toks []Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && (isWord(toks[i-1]) && isWord(t) || toks[i-1].Is(",")) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func isWord(t Token) bool {
	switch t.Kind {
	case Identifier, Number, String, Char:
		return true
	}
	return false
}
