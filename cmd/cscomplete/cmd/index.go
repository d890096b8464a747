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
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/jesse99/Continuum-sub001/cs/parser"
	"github.com/jesse99/Continuum-sub001/internal/index"
	"github.com/jesse99/Continuum-sub001/internal/watch"
)

func newIndexCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "build a symbol index from source files",
		Long: `Index parses the source files under dir, the current directory by
default, and writes an index of the types they declare. The files are
those matching the sources patterns of the configuration.

The index is written to standard output in YAML, or to the file named by
--outfile in the format implied by its extension. Files with syntax
errors are indexed as far as they could be parsed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runIndex),
	}
	cmd.Flags().StringP(string(flagOutFile), "o", "", "file to write the index to")
	return cmd
}

func runIndex(cmd *Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	format := index.YAML
	out := flagOutFile.String(cmd)
	if out != "" {
		if format, err = index.FormatOf(out); err != nil {
			return err
		}
	}

	paths, err := watch.Glob(root, e.cfg.Sources)
	if err != nil {
		return err
	}
	m := &index.Memory{}
	b := index.NewBuilder(m)
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, diag := parser.TryParse(path, string(text), e.parser...)
		if diag != nil {
			e.logger.Warn("syntax error", "path", path, "err", diag)
		}
		b.Add(f, string(text))
	}
	e.logger.Debug("indexed", "files", len(paths), "types", m.Len())

	if out == "" {
		return m.Encode(cmd.OutOrStdout(), format)
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf, format); err != nil {
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o666)
}
