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

package index

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// An Entry holds everything the index knows about one type.
type Entry struct {
	Type    `yaml:",inline"`
	Base    string   `yaml:"base,omitempty" toml:"base,omitempty"`
	Methods []Method `yaml:"methods,omitempty" toml:"methods,omitempty"`
	Fields  []Field  `yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// A BaseRule gives the base type of every type whose name matches a glob
// pattern, such as the instantiations of a generic type.
type BaseRule struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	Base    string `yaml:"base" toml:"base"`
}

// document is the on-disk form of an index.
type document struct {
	Types []Entry    `yaml:"types" toml:"types"`
	Bases []BaseRule `yaml:"bases,omitempty" toml:"bases,omitempty"`
}

// Memory is an Index held in memory. The zero value is an empty index
// ready to use.
type Memory struct {
	mu    sync.RWMutex
	types map[string]*Entry
	rules []BaseRule
}

var _ Index = (*Memory)(nil)

// Add adds or replaces the entry for e.Name.
func (m *Memory) Add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.types == nil {
		m.types = make(map[string]*Entry)
	}
	m.types[e.Name] = &e
}

// AddBaseRule adds a glob rule consulted by FindBaseType for types
// without an explicit base. It returns an error if pattern is malformed.
func (m *Memory) AddBaseRule(r BaseRule) error {
	if !doublestar.ValidatePattern(r.Pattern) {
		return fmt.Errorf("invalid base type pattern %q", r.Pattern)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, r)
	return nil
}

// Len returns the number of types in m.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.types)
}

// Names returns the sorted names of all types in m.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.types))
	for n := range m.types {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (m *Memory) entry(name string) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[name]
}

func (m *Memory) FindType(fullName string) (Type, bool) {
	if e := m.entry(fullName); e != nil {
		return e.Type, true
	}
	return Type{}, false
}

func (m *Memory) FindMembers(fullName string) []Method {
	if e := m.entry(fullName); e != nil {
		return e.Methods
	}
	return nil
}

func (m *Memory) FindFields(fullName string) []Field {
	if e := m.entry(fullName); e != nil {
		return e.Fields
	}
	return nil
}

func (m *Memory) FindBaseType(fullName string) (string, bool) {
	if e := m.entry(fullName); e != nil && e.Base != "" {
		return e.Base, true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if ok, _ := doublestar.Match(r.Pattern, fullName); ok {
			return r.Base, true
		}
	}
	return "", false
}

// Format names an encoding of an index file.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf returns the format implied by the extension of filename.
func FormatOf(filename string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("unsupported index format %q", ext)
	}
}

// Load reads an index file, choosing the decoder by file extension.
func Load(filename string) (*Memory, error) {
	f, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// Decode decodes an index in the given format.
func Decode(data []byte, f Format) (*Memory, error) {
	var doc document
	var err error
	switch f {
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	case TOML:
		err = toml.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unsupported index format %q", f)
	}
	if err != nil {
		return nil, err
	}
	m := &Memory{}
	for _, e := range doc.Types {
		if e.Name == "" {
			return nil, fmt.Errorf("type without a name")
		}
		m.Add(e)
	}
	for _, r := range doc.Bases {
		if err := m.AddBaseRule(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Encode writes m to w in the given format, with types sorted by name.
func (m *Memory) Encode(w io.Writer, f Format) error {
	var doc document
	for _, n := range m.Names() {
		doc.Types = append(doc.Types, *m.entry(n))
	}
	m.mu.RLock()
	doc.Bases = slices.Clone(m.rules)
	m.mu.RUnlock()

	var buf bytes.Buffer
	switch f {
	case YAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	case TOML:
		if err := toml.NewEncoder(&buf).Encode(&doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported index format %q", f)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
