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

// This file contains the exported entry points for invoking the parser.

// Package parser implements a recursive-descent parser for the
// declarations of C# source files.
//
// [Parse] is strict and fails on the first syntax error. [TryParse] is
// tolerant: it never fails, remembers only the first error, and keeps
// parsing so that one broken member does not hide the rest of the file.
package parser

import (
	"fmt"
	"io"

	"golang.org/x/mod/semver"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/errors"
	"github.com/jesse99/Continuum-sub001/cs/token"
)

// LatestVersion is the newest language version the parser understands.
const LatestVersion = "v12.0"

// Option specifies a parse option.
type Option interface {
	apply(cfg *Config)
}

var _ Option = Config{}

// Config represents the end result of applying a set of options.
// The zero value is not OK to use: use [NewConfig] to construct
// a Config value before using it.
//
// Config itself implements [Option] by overwriting the
// entire configuration.
type Config struct {
	// valid is set by NewConfig and is used to check
	// that a Config has been created correctly.
	valid bool

	// Version holds the language version, in semver form such as
	// "v7.3", that gates newer syntax.
	Version string

	// Trace, if non-nil, receives a trace of parsed productions.
	Trace io.Writer
}

// apply implements [Option]
func (cfg Config) apply(cfg1 *Config) {
	if !cfg.valid {
		panic("zero parser.Config value used; use parser.NewConfig!")
	}
	*cfg1 = cfg
}

// NewConfig returns the configuration containing all default values
// with the given options applied.
func NewConfig(opts ...Option) Config {
	return Config{
		valid:   true,
		Version: LatestVersion,
	}.Apply(opts...)
}

// Apply applies all the given options to cfg and
// returns the resulting configuration.
func (cfg Config) Apply(opts ...Option) Config {
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return cfg
}

// optionFunc implements [Option] for a function.
type optionFunc func(cfg *Config)

func (f optionFunc) apply(cfg *Config) {
	f(cfg)
}

// Version specifies the language version to parse. The argument must be
// a valid semantic version, as checked by [semver.IsValid].
func Version(v string) Option {
	if !semver.IsValid(v) {
		panic(fmt.Errorf("invalid language version %q", v))
	}
	return optionFunc(func(c *Config) {
		c.Version = v
	})
}

// Trace causes parsing to write a trace of parsed productions to w.
func Trace(w io.Writer) Option {
	return optionFunc(func(c *Config) {
		c.Trace = w
	})
}

// A Diagnostic describes the first error found by a tolerant parse.
type Diagnostic struct {
	Span    token.Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s", d.Span.Line, d.Message)
}

// Parse parses the declarations of a C# source file. The filename is only
// recorded in the returned tree.
//
// Parsing stops at the first error, which is returned as an
// [*errors.ScanError] or [*errors.SyntaxError] naming the line and the
// offending token.
func Parse(filename, src string, opts ...Option) (f *ast.File, err error) {
	var p parser
	p.init(filename, src, false, opts)
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()
	f = p.parseFile()
	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// TryParse parses the declarations of a C# source file and never fails.
// Declarations that cannot be parsed are skipped; the first error found,
// if any, is returned as a Diagnostic.
func TryParse(filename, src string, opts ...Option) (*ast.File, *Diagnostic) {
	var p parser
	p.init(filename, src, true, opts)
	f := p.parseFile()

	var serr *errors.ScanError
	if errors.As(p.scanner.Err(), &serr) {
		if p.first == nil || serr.Pos.Offset < p.first.Span.Offset {
			p.first = &Diagnostic{Span: serr.Pos, Message: serr.Message}
		}
	}
	return f, p.first
}
