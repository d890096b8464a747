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

package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Common flags
const (
	flagAfter           flagName = "after"
	flagAt              flagName = "at"
	flagComments        flagName = "comments"
	flagConfig          flagName = "config"
	flagFuzzy           flagName = "fuzzy"
	flagIndex           flagName = "index"
	flagLanguageVersion flagName = "language-version"
	flagLogLevel        flagName = "log-level"
	flagMax             flagName = "max"
	flagOnce            flagName = "once"
	flagOutFile         flagName = "outfile"
	flagStrict          flagName = "strict"
	flagTrace           flagName = "trace"
	flagUsing           flagName = "using"
)

func addGlobalFlags(f *pflag.FlagSet) {
	f.String(string(flagConfig), "", "configuration file to use instead of the default one")
	f.String(string(flagIndex), "", "symbol index file, in YAML or TOML")
	f.String(string(flagLogLevel), "", "log level: debug, info, warn or error")
	f.String(string(flagLanguageVersion), "", "C# language version, such as v7.3")
	f.Int(string(flagMax), 0, "maximum number of completions; 0 for no limit")
	f.Float32(string(flagFuzzy), 0, "minimum similarity of fuzzy matches, in [0, 1]")
	f.StringArray(string(flagUsing), nil, "namespace imported by every file")
}

func addCaretFlags(f *pflag.FlagSet) {
	f.Int(string(flagAt), -1, "byte offset of the caret")
	f.String(string(flagAfter), "", "place the caret after the first occurrence of this text")
}

type flagName string

// ensureAdded detects if a flag is being used without it first being
// added to the flagSet. Because flagNames are global, it is quite
// easy to accidentally use a flag in a command without adding it to
// the flagSet.
func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic(fmt.Sprintf("Cmd %q uses flag %q without adding it", cmd.Name(), f))
	}
}

// Changed reports whether the flag was set on the command line.
func (f flagName) Changed(cmd *Command) bool {
	f.ensureAdded(cmd)
	return cmd.Flags().Changed(string(f))
}

func (f flagName) Bool(cmd *Command) bool {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

func (f flagName) Int(cmd *Command) int {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetInt(string(f))
	return v
}

func (f flagName) Float32(cmd *Command) float32 {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetFloat32(string(f))
	return v
}

func (f flagName) String(cmd *Command) string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) StringArray(cmd *Command) []string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetStringArray(string(f))
	return v
}
