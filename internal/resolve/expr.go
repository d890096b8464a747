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
	"strings"
	"unicode/utf8"

	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

// Extract returns the expression that ends at offset in text, not
// including a trailing member access dot. It scans backwards over
// identifiers, dots, balanced brackets and quoted literals; an unbalanced
// bracket ends the scan. A leading new is included.
func Extract(text string, offset int) string {
	offset = min(max(offset, 0), len(text))
	end := offset
	if end > 0 && text[end-1] == '.' {
		end--
		if end > 0 && text[end-1] == '?' {
			end--
		}
	}
	start := scanBack(text, end)
	if start == end {
		return ""
	}
	// Include a new that starts the expression.
	i := start
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}
	if i >= 3 && i < start && text[i-3:i] == "new" && (i == 3 || !isIdentByte(text, i-3)) {
		start = i - 3
	}
	return text[start:end]
}

func scanBack(text string, i int) int {
	for i > 0 {
		c := text[i-1]
		switch {
		case c == '.':
			i--
		case c == '?' && i < len(text) && text[i] == '.':
			i--
		case c == ')' || c == ']':
			j := openingBack(text, i-1)
			if j < 0 {
				return i
			}
			i = j
		case c == '>':
			j := angleBack(text, i-1)
			if j < 0 {
				return i
			}
			i = j
		case c == '"' || c == '\'':
			j := quoteBack(text, i-1)
			if j < 0 {
				return i
			}
			i = j
		default:
			r, size := utf8.DecodeLastRuneInString(text[:i])
			if !scanner.IsIdentChar(r) {
				return i
			}
			i -= size
		}
	}
	return i
}

// isIdentByte reports whether the rune ending just before text[i]
// belongs to an identifier.
func isIdentByte(text string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return scanner.IsIdentChar(r)
}

// identByte reports whether c may be part of an identifier. Bytes of
// multi-byte runes are accepted.
func identByte(c byte) bool {
	return c >= utf8.RuneSelf || c == '_' || c == '@' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// openingBack returns the offset of the bracket matching the closing
// bracket at text[i], or -1.
func openingBack(text string, i int) int {
	var stack []byte
	for j := i; j >= 0; j-- {
		switch c := text[j]; c {
		case ')', ']', '}':
			stack = append(stack, c)
		case '(', '[', '{':
			if len(stack) == 0 || stack[len(stack)-1] != closer(c) {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return j
			}
		case '"', '\'':
			k := quoteBack(text, j)
			if k < 0 {
				return -1
			}
			j = k
		}
	}
	return -1
}

func closer(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

// angleBack returns the start of a generic name whose argument list
// closes at text[i], or -1 if the text before is not a type argument
// list.
func angleBack(text string, i int) int {
	depth := 0
	for j := i; j >= 0; j-- {
		switch c := text[j]; {
		case c == '>':
			depth++
		case c == '<':
			depth--
			if depth == 0 {
				if j == 0 || !isIdentByte(text, j) {
					return -1
				}
				return j
			}
		case c == '.' || c == ',' || c == ' ' || c == '[' || c == ']' || c == '?':
		case !identByte(c):
			return -1
		}
	}
	return -1
}

// quoteBack returns the start of the quoted literal whose closing quote
// is at text[i], including any @ or $ prefix, or -1.
func quoteBack(text string, i int) int {
	q := text[i]
	for j := i - 1; j >= 0; j-- {
		switch text[j] {
		case '\n':
			return -1
		case q:
			backslashes := 0
			for k := j - 1; k >= 0 && text[k] == '\\'; k-- {
				backslashes++
			}
			if backslashes%2 == 1 {
				continue
			}
			for j > 0 && (text[j-1] == '@' || text[j-1] == '$') {
				j--
			}
			return j
		}
	}
	return -1
}

// SplitOperands splits a dotted expression into its operands. Dots
// inside brackets, generic argument lists, quoted literals and numbers
// do not split.
func SplitOperands(expr string) []string {
	var ops []string
	start, depth := 0, 0
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '<':
			if depth == 0 && i > 0 && isIdentByte(expr, i) {
				if end := skipAngles(expr, i); end > 0 {
					i = end - 1
				}
			}
		case '"', '\'':
			i = skipQuoted(expr, i) - 1
		case '.':
			if depth != 0 || isNumber(expr[start:i]) {
				continue
			}
			ops = append(ops, operand(expr[start:i]))
			start = i + 1
		}
	}
	return append(ops, operand(expr[start:]))
}

func operand(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), "?")
}

func isNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// skipAngles returns the offset after the type argument list starting at
// s[i], or -1.
func skipAngles(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch c := s[j]; {
		case c == '<':
			depth++
		case c == '>':
			depth--
			if depth == 0 {
				return j + 1
			}
		case c == '.' || c == ',' || c == ' ' || c == '[' || c == ']' || c == '?':
		case !identByte(c):
			return -1
		}
	}
	return -1
}

// skipQuoted returns the offset after the quoted literal starting at
// s[i]. An unterminated literal runs to the end.
func skipQuoted(s string, i int) int {
	q := s[i]
	verbatim := i > 0 && (s[i-1] == '@' || (i > 1 && s[i-1] == '$' && s[i-2] == '@'))
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if !verbatim {
				j++
			}
		case q:
			if verbatim && j+1 < len(s) && s[j+1] == q {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// ResolveExpr resolves the type of the expression ending at offset in
// text, typically just after a member access dot.
func (r *Resolver) ResolveExpr(q *Query, text string, offset int) (Target, bool) {
	expr := Extract(text, offset)
	if expr == "" {
		return Target{}, false
	}
	return r.resolveChain(q, SplitOperands(expr), 0)
}

func (r *Resolver) resolveChain(q *Query, ops []string, depth int) (Target, bool) {
	if depth > maxDepth {
		return Target{}, false
	}
	t, rest, ok := r.resolveHead(q, ops, depth)
	if !ok {
		r.logger().Debug("cannot resolve expression head", "expr", strings.Join(ops, "."))
		return Target{}, false
	}
	for _, op := range rest {
		t, ok = r.resolveOperand(q, t, op)
		if !ok {
			r.logger().Debug("member chain halted", "operand", op, "expr", strings.Join(ops, "."))
			return Target{}, false
		}
	}
	return t, true
}

// resolveHead resolves the leading operands of an expression and returns
// the operands that remain.
func (r *Resolver) resolveHead(q *Query, ops []string, depth int) (Target, []string, bool) {
	head := ops[0]
	switch {
	case head == "":
		return Target{}, nil, false

	case strings.HasPrefix(head, "new ") || strings.HasPrefix(head, "new\t"):
		// The created type may be qualified: new N.T().
		for k, op := range ops {
			if !strings.ContainsAny(op, "([{") {
				continue
			}
			typ, ok := InferType(strings.Join(ops[:k+1], "."))
			if !ok {
				return Target{}, nil, false
			}
			t, ok := r.resolveType(q, q.Scope, typ, Instance)
			if !ok {
				return Target{}, nil, false
			}
			t, ok = r.applySuffixes(q, t, typeRef{typ, q.Scope}, trailing(ops[k]))
			return t, ops[k+1:], ok
		}
		return Target{}, nil, false

	case head[0] == '(':
		end := skipGroup(head, 0)
		if end < 0 {
			return Target{}, nil, false
		}
		inner := head[1 : end-1]
		if end < len(head) {
			if !strings.HasPrefix(head[end:], "(") && !strings.HasPrefix(head[end:], "[") {
				// A cast binds looser than member access: (T)x.y is a
				// cast of x.y, so the members are those of x.
				rest := append([]string{head[end:]}, ops[1:]...)
				return r.resolveHead(q, rest, depth+1)
			}
		}
		var t Target
		var ok bool
		if typ, inferred := InferType(inner); inferred {
			t, ok = r.resolveType(q, q.Scope, typ, Instance)
		} else {
			t, ok = r.resolveChain(q, SplitOperands(inner), depth+1)
		}
		if ok && end < len(head) {
			t, ok = r.applySuffixes(q, t, typeRef{}, head[end:])
		}
		return t, ops[1:], ok

	case head[0] == '"' || head[0] == '\'' || head[0] == '@' && len(head) > 1 && head[1] == '"' || head[0] == '$':
		t, ok := r.ResolveName(q, head, true)
		return t, ops[1:], ok
	}

	name, suffixes := splitOperand(head)
	if strings.HasPrefix(suffixes, "(") {
		// A call of a method of the enclosing types or a using static
		// type.
		for _, t := range r.ImplicitTargets(q) {
			if res, ok := r.resolveOperand(q, t, head); ok {
				return res, ops[1:], true
			}
		}
		return Target{}, nil, false
	}

	if v, ok := q.variable(name); ok {
		typ, c, ok := q.variableType(v)
		if !ok {
			return Target{}, nil, false
		}
		t, ok := r.resolveType(q, c, typ, Instance)
		if ok {
			t, ok = r.applySuffixes(q, t, typeRef{typ, c}, suffixes)
		}
		return t, ops[1:], ok
	}
	if t, ok := r.ResolveName(q, name, true); ok {
		t, ok = r.applySuffixes(q, t, typeRef{}, suffixes)
		return t, ops[1:], ok
	}
	// Fully qualified static access, such as System.Console.
	for k := len(ops); k >= 1; k-- {
		if strings.ContainsAny(ops[k-1], "([") {
			continue
		}
		if t, ok := r.resolveType(q, q.Scope, strings.Join(ops[:k], "."), Static); ok {
			return t, ops[k:], true
		}
	}
	return Target{}, nil, false
}

// variable returns the variable called name, other than this.
func (q *Query) variable(name string) (Variable, bool) {
	if name == "this" {
		return Variable{}, false
	}
	for _, v := range q.Variables() {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// ImplicitTargets returns the targets whose members may be named without
// qualification: the enclosing types and the using static types.
func (r *Resolver) ImplicitTargets(q *Query) []Target {
	var ts []Target
	c := q.Scope
	for i, t := range c.Types() {
		access := Both
		if i > 0 || c.IsStatic() {
			access = Static
		}
		ts = append(ts, Target{Name: t.FullName(), Source: Live{Decl: t}, Access: access})
	}
	for _, u := range c.StaticUsings() {
		if t, ok := r.resolveType(q, c, u, Static); ok {
			ts = append(ts, t)
		}
	}
	return ts
}

// typeRef is a written type and the scope it was written in.
type typeRef struct {
	text string
	ctx  *scope.Context
}

// resolveOperand resolves a member access op, such as Items, Get(x) or
// Items[0], on the target t.
func (r *Resolver) resolveOperand(q *Query, t Target, op string) (Target, bool) {
	name, suffixes := splitOperand(op)
	if name == "" {
		return Target{}, false
	}
	call := strings.HasPrefix(suffixes, "(")

	if t.Access&Static != 0 && !call {
		if nested, ok := Canonical(name); ok {
			if n, ok := r.lookup(q, t.Name+"."+nested, Static); ok {
				return r.applySuffixes(q, n, typeRef{}, suffixes)
			}
		}
	}

	var refs []typeRef
	for _, m := range r.Members(q, t) {
		if m.Name != name || m.Kind == Indexer || (m.Kind == Method) != call {
			continue
		}
		refs = append(refs, typeRef{m.Type, q.memberScope(m)})
	}
	if call {
		suffixes = trailing(suffixes)
	}
	ref, ok := r.agree(q, refs, name)
	if !ok {
		return Target{}, false
	}
	res, ok := r.resolveType(q, ref.ctx, ref.text, Instance)
	if !ok {
		return Target{}, false
	}
	return r.applySuffixes(q, res, ref, suffixes)
}

// agree returns the one type shared by all candidates, which must
// resolve to the same type.
func (r *Resolver) agree(q *Query, refs []typeRef, name string) (typeRef, bool) {
	if len(refs) == 0 {
		return typeRef{}, false
	}
	first := ""
	for i, ref := range refs {
		t, ok := r.resolveType(q, ref.ctx, ref.text, Instance)
		if !ok {
			r.logger().Debug("cannot resolve member type", "member", name, "type", ref.text)
			return typeRef{}, false
		}
		if i == 0 {
			first = t.Name
		} else if t.Name != first {
			r.logger().Debug("overloads disagree", "member", name, "types", []string{first, t.Name})
			return typeRef{}, false
		}
	}
	return refs[0], true
}

// applySuffixes applies the index suffixes of an operand to t, the type
// written as ref.
func (r *Resolver) applySuffixes(q *Query, t Target, ref typeRef, suffixes string) (Target, bool) {
	for suffixes != "" {
		if suffixes[0] != '[' {
			// Invoking a delegate typed value.
			return Target{}, false
		}
		end := skipGroup(suffixes, 0)
		if end < 0 {
			return Target{}, false
		}
		suffixes = suffixes[end:]

		if elem, ok := elementType(ref.text); ok {
			ref.text = elem
		} else {
			var refs []typeRef
			for _, m := range r.Members(q, Target{Name: t.Name, Source: t.Source, Access: Instance}) {
				if m.Kind == Indexer {
					refs = append(refs, typeRef{m.Type, q.memberScope(m)})
				}
			}
			var ok bool
			if ref, ok = r.agree(q, refs, "this[]"); !ok {
				return Target{}, false
			}
		}
		var ok bool
		if t, ok = r.resolveType(q, ref.ctx, ref.text, Instance); !ok {
			return Target{}, false
		}
	}
	return t, true
}

// elementType returns the element type of an array type text.
func elementType(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, "]") {
		return "", false
	}
	i := strings.LastIndexByte(text, '[')
	if i <= 0 || strings.Trim(text[i+1:len(text)-1], ", ") != "" {
		return "", false
	}
	return text[:i], true
}

// splitOperand separates the member name of an operand from its
// bracketed suffixes. Type arguments of a generic method are dropped.
func splitOperand(op string) (name, suffixes string) {
	op = strings.TrimSpace(op)
	i := 0
	for i < len(op) {
		r, size := utf8.DecodeRuneInString(op[i:])
		if !scanner.IsIdentChar(r) {
			break
		}
		i += size
	}
	name = strings.TrimPrefix(op[:i], "@")
	rest := strings.TrimSpace(op[i:])
	if strings.HasPrefix(rest, "<") {
		if end := skipAngles(rest, 0); end > 0 {
			rest = strings.TrimSpace(rest[end:])
		}
	}
	return name, rest
}

// trailing returns the suffixes after the first bracketed group.
func trailing(s string) string {
	i := strings.IndexAny(s, "([{")
	if i < 0 {
		return ""
	}
	end := skipGroup(s, i)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(s[end:])
}

// skipGroup returns the offset after the bracket that closes the one at
// s[i], skipping quoted literals, or -1.
func skipGroup(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		case '"', '\'':
			j = skipQuoted(s, j) - 1
		}
	}
	return -1
}
