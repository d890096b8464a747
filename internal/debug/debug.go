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

// Package debug reads the debugging switches of the command line tool
// from the CSCOMPLETE_DEBUG environment variable.
//
// The variable holds a comma-separated list of name=value pairs, with
// names matched case insensitively against the fields of [Flags]. A
// boolean may be given by its name alone, as in parsetrace.
package debug

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// EnvVar is the environment variable holding the flags.
const EnvVar = "CSCOMPLETE_DEBUG"

// Flags holds the known debug flags.
type Flags struct {
	// ParseTrace writes a trace of every parse to standard error.
	ParseTrace bool

	// LogLevel overrides the configured log level.
	LogLevel string

	// Source adds the source position of the logging call to each log
	// record.
	Source bool
}

// ErrInvalid indicates a value that does not parse as the type of its
// flag.
var ErrInvalid = errors.New("invalid value")

// Init sets flags from the contents of the environment variable read
// with getenv.
func Init(flags *Flags, getenv func(string) string) error {
	if err := Parse(flags, getenv(EnvVar)); err != nil {
		return fmt.Errorf("cannot parse %s: %w", EnvVar, err)
	}
	return nil
}

// Parse sets the fields of flags, a pointer to a struct, from env. All
// errors found are reported; flags that parse are set regardless.
func Parse(flags any, env string) error {
	v := reflect.ValueOf(flags).Elem()
	fields := map[string]reflect.Value{}
	for _, f := range reflect.VisibleFields(v.Type()) {
		fields[strings.ToLower(f.Name)] = v.FieldByIndex(f.Index)
	}

	var errs []error
	for _, elem := range strings.Split(env, ",") {
		if elem == "" {
			continue
		}
		name, value, hasValue := strings.Cut(elem, "=")
		field, ok := fields[strings.ToLower(name)]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown flag %q", elem))
			continue
		}
		if !hasValue {
			if field.Kind() != reflect.Bool {
				errs = append(errs, fmt.Errorf("value needed for %s flag %q", field.Kind(), name))
				continue
			}
			value = "true"
		}
		if err := set(field, value); err != nil {
			errs = append(errs, fmt.Errorf("%w for %s: %v", ErrInvalid, name, err))
		}
	}
	return errors.Join(errs...)
}

func set(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(n))
	case reflect.String:
		field.SetString(value)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
