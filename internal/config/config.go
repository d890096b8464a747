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

// Package config holds the configuration of the completion engine and
// its command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/rogpeppe/go-internal/lockedfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from a configuration file. Fields
// absent from the file keep their default values.
type Config struct {
	// Index is the path of the persisted symbol index, in YAML or TOML.
	Index string `yaml:"index,omitempty" toml:"index,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty" toml:"logLevel,omitempty"`

	// LanguageVersion gates newer syntax, in semver form such as v7.3.
	// Empty means the latest version.
	LanguageVersion string `yaml:"languageVersion,omitempty" toml:"languageVersion,omitempty"`

	MaxCandidates  int     `yaml:"maxCandidates" toml:"maxCandidates"`
	FuzzyThreshold float32 `yaml:"fuzzyThreshold" toml:"fuzzyThreshold"`

	// Usings are namespaces imported implicitly by every file.
	Usings []string `yaml:"usings,omitempty" toml:"usings,omitempty"`

	// Sources are glob patterns, relative to the workspace root, of the
	// files to index and watch.
	Sources []string `yaml:"sources,omitempty" toml:"sources,omitempty"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		MaxCandidates:  200,
		FuzzyThreshold: 0.8,
		Usings:         []string{"System"},
		Sources:        []string{"**/*.cs"},
	}
}

// Dir returns the directory holding the configuration file.
func Dir(getenv func(string) string) (string, error) {
	if dir := getenv("CSCOMPLETE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine system config directory: %v", err)
	}
	return filepath.Join(dir, "cscomplete"), nil
}

// Path returns the path of the default configuration file.
func Path(getenv func(string) string) (string, error) {
	dir, err := Dir(getenv)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Format names the encoding of a configuration file.
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
		return "", fmt.Errorf("unsupported config format %q", ext)
	}
}

// Load reads the configuration file at path. A relative index path in
// the file is taken relative to the directory of the file.
func Load(path string) (*Config, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(body, f)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	if c.Index != "" && !filepath.IsAbs(c.Index) {
		c.Index = filepath.Join(filepath.Dir(path), c.Index)
	}
	return c, nil
}

// LoadDefault reads the default configuration file, if there is one, and
// returns the defaults otherwise.
func LoadDefault(getenv func(string) string) (*Config, error) {
	path, err := Path(getenv)
	if err != nil {
		return nil, err
	}
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Decode decodes a configuration over the defaults and validates it.
func Decode(body []byte, f Format) (*Config, error) {
	c := Default()
	var err error
	switch f {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(body))
		dec.KnownFields(true)
		if err = dec.Decode(c); errors.Is(err, io.EOF) {
			// An empty file.
			err = nil
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		err = dec.Decode(c)
	default:
		err = fmt.Errorf("unsupported config format %q", f)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the values of c.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if v := c.LanguageVersion; v != "" && !semver.IsValid(v) {
		return fmt.Errorf("invalid language version %q", v)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("maxCandidates must not be negative")
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzyThreshold %v is outside [0, 1]", c.FuzzyThreshold)
	}
	for _, p := range c.Sources {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid source pattern %q", p)
		}
	}
	return nil
}

// Level returns the log level of c.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// Write stores c at path in the format implied by its extension. The
// file is replaced atomically; concurrent writers are serialized by a
// lock file next to it.
func Write(path string, c *Config) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	var body []byte
	switch f {
	case YAML:
		body, err = yaml.Marshal(c)
	case TOML:
		body, err = toml.Marshal(c)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return err
	}

	unlock, err := lockedfile.MutexAt(path + ".lock").Lock()
	if err != nil {
		return err
	}
	defer unlock()

	// Write to a temp file and rename it so that readers, which do not
	// take the lock, never see a partial file.
	if err := os.WriteFile(path+".tmp", body, 0o666); err != nil {
		return err
	}
	return os.Rename(path+".tmp", path)
}
