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

package parser

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/errors"
	"github.com/jesse99/Continuum-sub001/cs/scanner"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

// The parser structure holds the parser's internal state.
type parser struct {
	file    *ast.File
	src     string
	scanner scanner.Scanner
	cfg     Config

	// Tokens read so far. The scanner itself only looks ahead; keeping
	// the tokens lets a failed member be retried from its first token.
	toks []token.Token
	pos  int // index of the current token in toks

	// Error recovery
	tolerant  bool
	first     *Diagnostic // first error seen by a tolerant parse
	truncated bool        // a construct was closed by the end of input

	// Tracing
	indent int
}

// bailout is raised to abandon the declaration being parsed.
type bailout struct {
	err error
}

func (p *parser) init(filename, src string, tolerant bool, opts []Option) {
	p.cfg = NewConfig(opts...)
	p.src = src
	p.tolerant = tolerant
	p.scanner.Init(src, 0)
	p.file = &ast.File{
		Filename: filename,
		Pos:      token.Span{Offset: 0, Length: len(src), Line: 1},
	}
}

// ----------------------------------------------------------------------------
// Parsing support

func (p *parser) printTrace(a ...any) {
	const dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
	const n = len(dots)
	t := p.tok()
	fmt.Fprintf(p.cfg.Trace, "%5d:%5d: ", t.Line, t.Offset)
	i := 2 * p.indent
	for i > n {
		fmt.Fprint(p.cfg.Trace, dots)
		i -= n
	}
	fmt.Fprint(p.cfg.Trace, dots[0:i])
	fmt.Fprintln(p.cfg.Trace, a...)
}

func trace(p *parser, msg string) *parser {
	if p.cfg.Trace != nil {
		p.printTrace(msg, "(")
	}
	p.indent++
	return p
}

// Usage pattern: defer un(trace(p, "..."))
func un(p *parser) {
	p.indent--
	if p.cfg.Trace != nil {
		p.printTrace(")")
	}
}

// peek returns the token n positions after the current one.
func (p *parser) peek(n int) token.Token {
	for len(p.toks) <= p.pos+n {
		t := p.scanner.Current()
		p.toks = append(p.toks, t)
		if !t.IsValid() {
			// Pad with end markers; the scanner never moves past them.
			continue
		}
		p.scanner.Advance()
	}
	return p.toks[p.pos+n]
}

func (p *parser) tok() token.Token { return p.peek(0) }

// prev returns the last consumed token.
func (p *parser) prev() token.Token {
	if p.pos == 0 {
		return token.Token{Line: 1}
	}
	return p.toks[p.pos-1]
}

func (p *parser) next() token.Token {
	t := p.tok()
	if t.IsValid() {
		p.pos++
	}
	return t
}

func (p *parser) at(text string) bool { return p.tok().Is(text) }

func (p *parser) atEOF() bool { return !p.tok().IsValid() }

func (p *parser) got(text string) bool {
	if p.at(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) token.Token {
	if !p.at(text) {
		p.errorExpected("'" + text + "'")
	}
	return p.next()
}

func (p *parser) errorExpected(what string) {
	t := p.tok()
	if !t.IsValid() {
		p.errorf(t, "expected %s", what)
	}
	p.errorf(t, "expected %s, found %s", what, t)
}

// errorf abandons the current declaration. A lexical error that ended the
// token stream takes precedence over the syntax error it caused.
func (p *parser) errorf(t token.Token, format string, args ...any) {
	if !t.IsValid() {
		if err := p.scanner.Err(); err != nil {
			panic(bailout{err})
		}
	}
	panic(bailout{&errors.SyntaxError{
		Pos:     t.Span(),
		Token:   t.Text,
		Message: fmt.Sprintf(format, args...),
	}})
}

// record remembers err if it is the first error of a tolerant parse.
func (p *parser) record(err error) {
	if p.first != nil {
		return
	}
	var e errors.Error
	if errors.As(err, &e) {
		p.first = &Diagnostic{Span: e.Span(), Message: e.Msg()}
		return
	}
	p.first = &Diagnostic{Span: p.tok().Span(), Message: err.Error()}
}

// unterminated handles a construct, opened by open, that runs to the end
// of the input. A tolerant parse records the error and closes the
// construct at the end of the input, so that the declaration holding the
// caret of an editor, which is often unbalanced, survives.
func (p *parser) unterminated(what string, open token.Token) {
	if err := p.scanner.Err(); err != nil {
		if !p.tolerant {
			panic(bailout{err})
		}
		p.record(err)
	}
	err := &errors.SyntaxError{
		Pos:     open.Span(),
		Token:   open.Text,
		Message: what + " not terminated",
	}
	if !p.tolerant {
		panic(bailout{err})
	}
	p.record(err)
	p.truncated = true
}

// attempt parses one declaration with f. In strict mode errors propagate.
// In tolerant mode a failure is recorded, the parser backtracks to the
// first token of the declaration, skips it and reports false so that the
// caller retries from the following token.
func attempt[T any](p *parser, f func() T) (result T, ok bool) {
	if !p.tolerant {
		return f(), true
	}
	start := p.pos
	indent := p.indent
	truncated := p.truncated
	defer func() {
		if r := recover(); r != nil {
			b, isBailout := r.(bailout)
			if !isBailout {
				panic(r)
			}
			p.record(b.err)
			p.pos = start
			p.indent = indent
			p.truncated = truncated
			p.skipOne()
			ok = false
		}
	}()
	return f(), true
}

// skipOne skips the current token, or a whole brace-balanced group if the
// current token opens one.
func (p *parser) skipOne() {
	if p.at("{") {
		p.skipGroup("{", "}")
		return
	}
	p.next()
}

// skipGroup skips a balanced group starting at the current open token and
// returns the closing token. If the group is not closed before the end of
// input, the last token read is returned and ok is false.
func (p *parser) skipGroup(open, close string) (last token.Token, ok bool) {
	depth := 0
	for {
		t := p.tok()
		if !t.IsValid() {
			return p.prev(), false
		}
		p.next()
		switch {
		case t.Is(open):
			depth++
		case t.Is(close):
			depth--
			if depth == 0 {
				return t, true
			}
		}
	}
}

// rawUntil collects tokens up to, but not including, the first of stops
// found outside of brackets, and returns their joined text.
func (p *parser) rawUntil(stops ...string) string {
	var toks []token.Token
	depth := 0
	for {
		t := p.tok()
		if !t.IsValid() {
			p.errorExpected(strings.Join(quoted(stops), " or "))
		}
		if depth == 0 {
			for _, s := range stops {
				if t.Is(s) {
					return token.Join(toks)
				}
			}
		}
		switch t.Text {
		case "(", "[", "{":
			if t.Kind == token.Punctuation {
				depth++
			}
		case ")", "]", "}":
			if t.Kind == token.Punctuation {
				if depth == 0 {
					p.errorf(t, "unbalanced %s", t.Text)
				}
				depth--
			}
		}
		toks = append(toks, p.next())
	}
}

func quoted(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "'" + s + "'"
	}
	return out
}

// spanFrom returns the span from start to the last consumed token, or to
// the end of input once a construct has been closed there.
func (p *parser) spanFrom(start token.Token) token.Span {
	if p.truncated {
		return token.Span{Offset: start.Offset, Length: len(p.src) - start.Offset, Line: start.Line}
	}
	return token.SpanOf(start, p.prev())
}

// requires fails if the configured language version is older than v.
func (p *parser) requires(v, feature string) {
	if semver.Compare(p.cfg.Version, v) < 0 {
		p.errorf(p.tok(), "%s requires language version %s", feature, v)
	}
}

// ----------------------------------------------------------------------------
// Files and namespaces

func (p *parser) parseFile() *ast.File {
	if p.cfg.Trace != nil {
		defer un(trace(p, "File"))
	}
	ns := &ast.Namespace{Pos: p.file.Pos}
	p.file.Namespace = ns
	p.parseNamespaceBody(ns, token.Token{})
	for !p.atEOF() {
		// Only a stray closing brace ends the global namespace early.
		attempt(p, func() bool {
			p.errorf(p.tok(), "unexpected %s", p.tok().Text)
			return true
		})
		p.parseNamespaceBody(ns, token.Token{})
	}
	return p.file
}

// parseNamespaceBody parses namespace members until the closing brace of
// a braced namespace, or until the end of input. A file-scoped namespace
// passes an invalid open token.
func (p *parser) parseNamespaceBody(ns *ast.Namespace, open token.Token) {
	for {
		if p.atEOF() {
			if open.IsValid() {
				p.unterminated("namespace", open)
			}
			return
		}
		if p.at("}") {
			return
		}
		attempt(p, func() bool {
			p.parseNamespaceMember(ns)
			return true
		})
	}
}

func (p *parser) parseNamespaceMember(ns *ast.Namespace) {
	if p.cfg.Trace != nil {
		defer un(trace(p, "NamespaceMember"))
	}
	t := p.tok()
	switch {
	case t.Is(";"):
		p.next()
		return

	case t.Is("extern") && p.peek(1).Is("alias"):
		p.next()
		p.next()
		name := p.parseName()
		p.expect(";")
		p.file.Externs = append(p.file.Externs, name)
		return

	case t.Is("using") && !p.peek(1).Is("("):
		ns.Usings = append(ns.Usings, p.parseUsing())
		return

	case t.Is("namespace"):
		ns.Namespaces = append(ns.Namespaces, p.parseNamespace(ns))
		return

	case t.Is("[") && p.isGlobalAttribute():
		p.file.Attributes = append(p.file.Attributes, p.parseAttributeSection()...)
		return
	}

	start := p.tok()
	attrs := p.parseAttributes()
	mods := p.parseModifiers()
	if !p.atTypeKeyword() {
		p.errorExpected("type declaration")
	}
	ns.Types = append(ns.Types, p.parseTypeDecl(start, attrs, mods, ns, nil))
}

func (p *parser) parseUsing() *ast.Using {
	start := p.expect("using")
	u := &ast.Using{}
	if p.got("static") {
		u.Static = true
	}
	if p.tok().IsName() && p.peek(1).Is("=") {
		u.Alias = p.next().Name()
		p.next()
		u.Name = p.parseType()
	} else {
		u.Name = p.parseType()
	}
	p.expect(";")
	u.Pos = p.spanFrom(start)
	return u
}

func (p *parser) parseNamespace(parent *ast.Namespace) *ast.Namespace {
	if p.cfg.Trace != nil {
		defer un(trace(p, "Namespace"))
	}
	start := p.expect("namespace")
	ns := &ast.Namespace{Parent: parent}
	ns.Name = p.parseName()
	if p.at(";") {
		p.requires("v10.0", "file-scoped namespace")
		p.next()
		p.parseNamespaceBody(ns, token.Token{})
		// A file-scoped namespace extends to the end of the file.
		ns.Pos = token.Span{Offset: start.Offset, Length: len(p.src) - start.Offset, Line: start.Line}
		return ns
	}
	open := p.expect("{")
	p.parseNamespaceBody(ns, open)
	if p.at("}") {
		p.next()
		p.got(";")
	}
	ns.Pos = p.spanFrom(start)
	return ns
}

// parseName parses a dotted name such as System.Collections.Generic.
func (p *parser) parseName() string {
	var b strings.Builder
	for {
		t := p.tok()
		if !t.IsName() {
			p.errorExpected("identifier")
		}
		b.WriteString(t.Name())
		p.next()
		if !p.at(".") {
			return b.String()
		}
		p.next()
		b.WriteByte('.')
	}
}

// ----------------------------------------------------------------------------
// Attributes and modifiers

func (p *parser) isGlobalAttribute() bool {
	t := p.peek(1)
	return (t.Is("assembly") || t.Is("module")) && p.peek(2).Is(":")
}

// parseAttributes parses any number of attribute sections.
func (p *parser) parseAttributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.at("[") {
		attrs = append(attrs, p.parseAttributeSection()...)
	}
	return attrs
}

// parseAttributeSection parses one bracketed list of attributes with an
// optional target, as in [return: NotNull].
func (p *parser) parseAttributeSection() []*ast.Attribute {
	var attrs []*ast.Attribute
	p.expect("[")
	target := ""
	if t := p.tok(); t.Kind == token.Identifier && p.peek(1).Is(":") {
		target = t.Name()
		p.next()
		p.next()
	}
	for {
		start := p.tok()
		a := &ast.Attribute{Target: target}
		a.Name = p.parseType()
		if p.at("(") {
			a.Args = p.rawGroup("(", ")")
		}
		a.Pos = p.spanFrom(start)
		attrs = append(attrs, a)
		if !p.got(",") || p.at("]") {
			break
		}
	}
	p.expect("]")
	return attrs
}

// rawGroup consumes a balanced group and returns its joined text,
// including the delimiters.
func (p *parser) rawGroup(open, close string) string {
	startPos := p.pos
	if _, ok := p.skipGroup(open, close); !ok {
		p.errorExpected("'" + close + "'")
	}
	return token.Join(p.toks[startPos:p.pos])
}

func (p *parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		t := p.tok()
		if t.Kind != token.Identifier {
			return mods
		}
		m, ok := ast.LookupModifier(t.Text)
		if !ok {
			return mods
		}
		switch m {
		case ast.Partial:
			// partial is contextual: it must precede a type keyword or
			// void, otherwise it is a type or member name.
			n := p.peek(1)
			if !isTypeKeyword(n) && !n.Is("void") {
				return mods
			}
		case ast.Async:
			if n := p.peek(1); n.Kind != token.Identifier {
				return mods
			}
		case ast.Const:
			// const starts a constant declaration; see parseMember.
			return mods
		}
		mods |= m
		p.next()
	}
}

func isTypeKeyword(t token.Token) bool {
	switch t.Text {
	case "class", "struct", "interface", "enum", "delegate", "record":
		return t.Kind == token.Identifier
	}
	return false
}

func (p *parser) atTypeKeyword() bool {
	t := p.tok()
	if t.Is("record") {
		// record is contextual; "record Foo" or "record struct Foo".
		n := p.peek(1)
		return n.IsName() || n.Is("struct") || n.Is("class")
	}
	return isTypeKeyword(t)
}

// ----------------------------------------------------------------------------
// Types references

// parseType parses a type reference and returns its text. Generic
// argument lists, array ranks and nullable or pointer suffixes are kept
// as opaque, bracket-balanced text.
func (p *parser) parseType() string {
	startPos := p.pos
	p.skipType()
	return token.Join(p.toks[startPos:p.pos])
}

func (p *parser) skipType() {
	if p.at("(") {
		// Tuple type.
		if _, ok := p.skipGroup("(", ")"); !ok {
			p.errorExpected("')'")
		}
	} else {
		if p.tok().Is("global") && p.peek(1).Is("::") {
			p.next()
			p.next()
		}
		for {
			t := p.tok()
			if !t.IsName() && !(t.Kind == token.Identifier && token.IsBuiltinType(t.Text)) {
				p.errorExpected("type")
			}
			p.next()
			if p.at("<") {
				p.skipTypeArgs()
			}
			if (p.at(".") || p.at("::")) && p.peek(1).IsName() {
				p.next()
				continue
			}
			break
		}
	}
	for {
		switch {
		case p.at("?"), p.at("*"):
			p.next()
		case p.at("[") && (p.peek(1).Is("]") || p.peek(1).Is(",")):
			p.next()
			for p.got(",") {
			}
			p.expect("]")
		default:
			return
		}
	}
}

// skipTypeArgs skips a generic argument list, counting nested angle
// brackets.
func (p *parser) skipTypeArgs() {
	depth := 0
	for {
		t := p.tok()
		switch {
		case !t.IsValid():
			p.errorExpected("'>'")
		case t.Is("<"):
			depth++
		case t.Is(">"):
			depth--
		case t.Is(";"), t.Is("{"), t.Is("}"), t.Is("="), t.Is("=>"):
			p.errorExpected("'>'")
		}
		p.next()
		if depth == 0 {
			return
		}
	}
}

// parseTypeParams parses <T, in U, out V> after a declaration name.
func (p *parser) parseTypeParams() []string {
	if !p.got("<") {
		return nil
	}
	var names []string
	for {
		p.parseAttributes()
		if p.at("in") || p.at("out") {
			p.next()
		}
		t := p.tok()
		if !t.IsName() {
			p.errorExpected("type parameter")
		}
		names = append(names, p.next().Name())
		if !p.got(",") {
			break
		}
	}
	p.expect(">")
	return names
}

// parseConstraints parses where clauses and returns their raw text.
func (p *parser) parseConstraints() string {
	if !p.at("where") {
		return ""
	}
	return p.rawUntil("{", ";", "=>")
}

// ----------------------------------------------------------------------------
// Type declarations

func (p *parser) parseTypeDecl(start token.Token, attrs []*ast.Attribute, mods ast.Modifiers, ns *ast.Namespace, outer *ast.TypeDecl) *ast.TypeDecl {
	if p.cfg.Trace != nil {
		defer un(trace(p, "TypeDecl"))
	}
	td := &ast.TypeDecl{
		Info:      ast.Info{Modifiers: mods, Attributes: attrs},
		Namespace: ns,
		Outer:     outer,
	}
	kw := p.next()
	switch kw.Text {
	case "class":
		td.Kind = ast.Class
	case "struct":
		td.Kind = ast.Struct
	case "interface":
		td.Kind = ast.Interface
	case "enum":
		td.Kind = ast.Enum
	case "delegate":
		td.Kind = ast.Delegate
		return p.parseDelegate(start, td)
	case "record":
		p.requires("v9.0", "record")
		td.Kind = ast.Class
		if p.got("struct") {
			td.Kind = ast.Struct
		} else {
			p.got("class")
		}
	}

	name := p.tok()
	if !name.IsName() {
		p.errorExpected("type name")
	}
	td.Name = p.next().Name()
	td.TypeParams = p.parseTypeParams()
	if kw.Is("record") && p.at("(") {
		// Positional record parameters become properties.
		for _, prm := range p.parseParams("(", ")") {
			td.Members = append(td.Members, &ast.Property{
				Info: ast.Info{Pos: prm.Pos, Name: prm.Name, Modifiers: ast.Public},
				Type: prm.Type,
				Accessors: []*ast.Accessor{
					{Info: ast.Info{Pos: prm.Pos, Name: "get"}},
					{Info: ast.Info{Pos: prm.Pos, Name: "init"}},
				},
			})
		}
	}
	if p.got(":") {
		for {
			td.Bases = append(td.Bases, p.parseType())
			if p.at("(") {
				// record base constructor arguments
				p.rawGroup("(", ")")
			}
			if !p.got(",") {
				break
			}
		}
	}
	td.Constraints = p.parseConstraints()

	if kw.Is("record") && p.got(";") {
		td.Pos = p.spanFrom(start)
		return td
	}
	open := p.expect("{")
	if td.Kind == ast.Enum {
		p.parseEnumBody(td, open)
	} else {
		p.parseTypeBody(td, open)
	}
	if p.at("}") {
		td.Body = token.SpanOf(open, p.next())
		p.got(";")
	} else {
		td.Body = p.spanFrom(open)
	}
	td.Pos = p.spanFrom(start)
	return td
}

func (p *parser) parseDelegate(start token.Token, td *ast.TypeDecl) *ast.TypeDecl {
	td.ReturnType = p.parseType()
	if !p.tok().IsName() {
		p.errorExpected("delegate name")
	}
	td.Name = p.next().Name()
	td.TypeParams = p.parseTypeParams()
	td.Params = p.parseParams("(", ")")
	td.Constraints = p.parseConstraints()
	p.expect(";")
	td.Pos = p.spanFrom(start)
	return td
}

func (p *parser) parseEnumBody(td *ast.TypeDecl, open token.Token) {
	for !p.at("}") {
		if p.atEOF() {
			p.unterminated("enum", open)
			return
		}
		v, ok := attempt(p, func() *ast.EnumValue {
			start := p.tok()
			v := &ast.EnumValue{}
			v.Attributes = p.parseAttributes()
			v.Modifiers = ast.Public | ast.Static | ast.Const
			if !p.tok().IsName() {
				p.errorExpected("enum value")
			}
			v.Name = p.next().Name()
			if p.got("=") {
				v.Value = p.rawUntil(",", "}")
			}
			v.Pos = p.spanFrom(start)
			if !p.at("}") {
				p.expect(",")
			}
			return v
		})
		if ok {
			td.Members = append(td.Members, v)
		}
	}
}

func (p *parser) parseTypeBody(td *ast.TypeDecl, open token.Token) {
	for !p.at("}") {
		if p.atEOF() {
			p.unterminated(td.Kind.String(), open)
			return
		}
		ms, ok := attempt(p, func() []ast.Member {
			return p.parseMember(td)
		})
		if ok {
			td.Members = append(td.Members, ms...)
		}
	}
}

// ----------------------------------------------------------------------------
// Members

// parseMember parses one member declaration. Field declarations with
// several declarators produce several members.
func (p *parser) parseMember(td *ast.TypeDecl) []ast.Member {
	if p.cfg.Trace != nil {
		defer un(trace(p, "Member"))
	}
	if p.got(";") {
		return nil
	}
	start := p.tok()
	info := ast.Info{}
	info.Attributes = p.parseAttributes()
	info.Modifiers = p.parseModifiers()

	t := p.tok()
	switch {
	case p.atTypeKeyword():
		return []ast.Member{p.parseTypeDecl(start, info.Attributes, info.Modifiers, td.Namespace, td)}

	case t.Is("event"):
		p.next()
		return p.parseEvent(start, info)

	case t.Is("const"):
		p.next()
		info.Modifiers |= ast.Const
		return p.parseFields(start, info, p.parseType(), true)

	case t.Is("~"):
		p.next()
		info.Name = "~" + p.expectName()
		p.expect("(")
		p.expect(")")
		d := &ast.Destructor{Info: info}
		d.Body = p.parseBody(start)
		d.Pos = p.spanFrom(start)
		return []ast.Member{d}

	case t.Is("operator") && info.Modifiers&(ast.Implicit|ast.Explicit) != 0:
		p.next()
		o := &ast.Operator{Info: info}
		o.Name = "explicit"
		if info.Modifiers&ast.Implicit != 0 {
			o.Name = "implicit"
		}
		o.ReturnType = p.parseType()
		o.Params = p.parseParams("(", ")")
		o.Body = p.parseBody(start)
		o.Pos = p.spanFrom(start)
		return []ast.Member{o}

	case t.IsName() && t.Name() == td.Name && p.peek(1).Is("("):
		p.next()
		return []ast.Member{p.parseConstructor(start, info, t.Name())}
	}

	typ := p.parseType()
	switch {
	case p.at("operator"):
		p.next()
		return []ast.Member{p.parseOperator(start, info, typ)}

	case p.at("this"):
		return []ast.Member{p.parseIndexer(start, info, typ)}
	}

	name, isIndexer := p.parseMemberName()
	if isIndexer {
		idx := p.parseIndexer(start, info, typ)
		idx.Name = name + idx.Name
		return []ast.Member{idx}
	}
	info.Name = name
	switch {
	case p.at("(") || p.at("<"):
		return []ast.Member{p.parseMethod(start, info, typ)}
	case p.at("{") || p.at("=>"):
		return []ast.Member{p.parseProperty(start, info, typ)}
	case p.at("=") || p.at(",") || p.at(";") || p.at("["):
		return p.parseFieldsAfterName(start, info, typ, false)
	}
	p.errorExpected("member declaration")
	return nil
}

func (p *parser) expectName() string {
	if !p.tok().IsName() {
		p.errorExpected("identifier")
	}
	return p.next().Name()
}

// parseMemberName parses a member name, which may be qualified by an
// interface for explicit implementations, as in IList<T>.Add or
// IList<T>.this[int]. It reports whether the name ends in an indexer.
func (p *parser) parseMemberName() (string, bool) {
	startPos := p.pos
	for {
		p.expectName()
		if p.at("<") && p.isInterfaceQualifier() {
			p.skipTypeArgs()
		}
		if !p.at(".") {
			break
		}
		if p.peek(1).Is("this") {
			p.next()
			return token.Join(p.toks[startPos:p.pos]), true
		}
		p.next()
	}
	return token.Join(p.toks[startPos:p.pos]), false
}

// isInterfaceQualifier reports whether the < at the current position opens
// the type arguments of an interface qualifier, as in IFoo<T>.Bar, rather
// than the type parameters of a generic method.
func (p *parser) isInterfaceQualifier() bool {
	depth := 0
	for i := 0; ; i++ {
		t := p.peek(i)
		switch {
		case !t.IsValid():
			return false
		case t.Is("<"):
			depth++
		case t.Is(">"):
			depth--
			if depth == 0 {
				return p.peek(i + 1).Is(".")
			}
		case t.Is("("), t.Is("{"), t.Is(";"):
			return false
		}
	}
}

func (p *parser) parseFields(start token.Token, info ast.Info, typ string, isConst bool) []ast.Member {
	info.Name = p.expectName()
	return p.parseFieldsAfterName(start, info, typ, isConst)
}

func (p *parser) parseFieldsAfterName(start token.Token, info ast.Info, typ string, isConst bool) []ast.Member {
	var fields []*ast.Field
	for {
		f := &ast.Field{Info: info, Type: typ, Const: isConst}
		if p.at("[") {
			// fixed size buffer
			f.Type += p.rawGroup("[", "]")
		}
		if p.got("=") {
			f.Value = p.rawUntil(",", ";")
		}
		fields = append(fields, f)
		if !p.got(",") {
			break
		}
		info.Name = p.expectName()
	}
	p.expect(";")
	span := p.spanFrom(start)
	ms := make([]ast.Member, len(fields))
	for i, f := range fields {
		f.Pos = span
		ms[i] = f
	}
	return ms
}

func (p *parser) parseEvent(start token.Token, info ast.Info) []ast.Member {
	typ := p.parseType()
	name, _ := p.parseMemberName()
	if p.at("{") {
		e := &ast.Event{Info: info, Type: typ}
		e.Name = name
		e.Accessors = p.parseAccessors()
		e.Pos = p.spanFrom(start)
		return []ast.Member{e}
	}
	var events []*ast.Event
	for {
		e := &ast.Event{Info: info, Type: typ}
		e.Name = name
		if p.got("=") {
			p.rawUntil(",", ";")
		}
		events = append(events, e)
		if !p.got(",") {
			break
		}
		name = p.expectName()
	}
	p.expect(";")
	span := p.spanFrom(start)
	ms := make([]ast.Member, len(events))
	for i, e := range events {
		e.Pos = span
		ms[i] = e
	}
	return ms
}

func (p *parser) parseConstructor(start token.Token, info ast.Info, name string) *ast.Constructor {
	c := &ast.Constructor{Info: info}
	c.Name = name
	c.Params = p.parseParams("(", ")")
	if p.got(":") {
		c.Initializer = p.rawUntil("{", ";", "=>")
	}
	c.Body = p.parseBody(start)
	c.Pos = p.spanFrom(start)
	return c
}

func (p *parser) parseMethod(start token.Token, info ast.Info, typ string) *ast.Method {
	m := &ast.Method{Info: info, ReturnType: typ}
	m.TypeParams = p.parseTypeParams()
	m.Params = p.parseParams("(", ")")
	m.Constraints = p.parseConstraints()
	m.Body = p.parseBody(start)
	m.Pos = p.spanFrom(start)
	return m
}

// parseOperator parses an overloaded operator after the operator keyword.
func (p *parser) parseOperator(start token.Token, info ast.Info, typ string) *ast.Operator {
	o := &ast.Operator{Info: info, ReturnType: typ}
	t := p.tok()
	switch {
	case t.Kind == token.Punctuation && !t.Is("("):
		p.next()
		o.Name = t.Text
		// >> is scanned as two tokens.
		if t.Is(">") && p.at(">") && p.tok().Offset == t.End() {
			o.Name = ">>"
			p.next()
		}
	case t.Is("true"), t.Is("false"):
		o.Name = p.next().Text
	default:
		p.errorExpected("overloadable operator")
	}
	o.Params = p.parseParams("(", ")")
	o.Body = p.parseBody(start)
	o.Pos = p.spanFrom(start)
	return o
}

func (p *parser) parseIndexer(start token.Token, info ast.Info, typ string) *ast.Indexer {
	p.expect("this")
	x := &ast.Indexer{Info: info, Type: typ}
	x.Name = "this"
	x.Params = p.parseParams("[", "]")
	if p.at("=>") {
		x.Body = p.parseBody(start)
	} else {
		x.Accessors = p.parseAccessors()
	}
	x.Pos = p.spanFrom(start)
	return x
}

func (p *parser) parseProperty(start token.Token, info ast.Info, typ string) *ast.Property {
	prop := &ast.Property{Info: info, Type: typ}
	if p.at("=>") {
		prop.Body = p.parseBody(start)
	} else {
		prop.Accessors = p.parseAccessors()
		if p.got("=") {
			prop.Value = p.rawUntil(";")
			p.expect(";")
		}
	}
	prop.Pos = p.spanFrom(start)
	return prop
}

func (p *parser) parseAccessors() []*ast.Accessor {
	open := p.expect("{")
	var as []*ast.Accessor
	for !p.at("}") {
		if p.atEOF() {
			p.unterminated("accessor list", open)
			return as
		}
		start := p.tok()
		a := &ast.Accessor{}
		a.Attributes = p.parseAttributes()
		a.Modifiers = p.parseModifiers()
		switch t := p.tok(); t.Text {
		case "get", "set", "init", "add", "remove":
			a.Name = p.next().Text
		default:
			p.errorExpected("accessor")
		}
		a.Body = p.parseBody(start)
		a.Pos = p.spanFrom(start)
		as = append(as, a)
	}
	p.next()
	return as
}

// parseParams parses a formal parameter list delimited by open and close.
func (p *parser) parseParams(open, close string) []*ast.Param {
	p.expect(open)
	var params []*ast.Param
	for !p.at(close) {
		if len(params) > 0 {
			p.expect(",")
		}
		start := p.tok()
		prm := &ast.Param{}
		prm.Attributes = p.parseAttributes()
		switch t := p.tok(); t.Text {
		case "ref", "out", "in", "params", "this":
			if t.Kind == token.Identifier {
				prm.Modifier = p.next().Text
			}
		}
		if p.at("__arglist") {
			prm.Name = p.next().Text
		} else {
			prm.Type = p.parseType()
			prm.Name = p.expectName()
		}
		if p.got("=") {
			prm.Default = p.rawUntil(",", close)
		}
		prm.Pos = p.spanFrom(start)
		params = append(params, prm)
	}
	p.expect(close)
	return params
}

// parseBody parses a block body, an expression body or a bare semicolon.
func (p *parser) parseBody(owner token.Token) *ast.Body {
	switch {
	case p.got(";"):
		return nil

	case p.at("=>"):
		p.requires("v6.0", "expression-bodied member")
		arrow := p.next()
		p.rawUntil(";")
		end := p.expect(";")
		return &ast.Body{
			Start: owner.Offset,
			Brace: arrow.Offset,
			Pos:   token.SpanOf(arrow, end),
		}

	case p.at("{"):
		open := p.tok()
		last, ok := p.skipGroup("{", "}")
		b := &ast.Body{Start: owner.Offset, Brace: open.Offset}
		if !ok {
			p.unterminated("block", open)
		}
		b.Pos = p.spanFrom(open)
		if ok {
			b.Pos = token.SpanOf(open, last)
		}
		return b
	}
	p.errorExpected("'{', '=>' or ';'")
	return nil
}
