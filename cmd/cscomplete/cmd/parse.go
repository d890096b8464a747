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
	"os"

	"github.com/spf13/cobra"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/cs/parser"
)

func newParseCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse file...",
		Short: "print the declarations of files",
		Long: `Parse prints an outline of the declarations of each file.

By default declarations that cannot be parsed are skipped and the first
error of each file is reported. With --strict a file with an error has
no outline.`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runParse),
	}
	cmd.Flags().Bool(string(flagStrict), false, "stop at the first error")
	cmd.Flags().Bool(string(flagTrace), false, "trace the parser on stderr")
	return cmd
}

func runParse(cmd *Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	opts := e.parser
	if flagTrace.Bool(cmd) {
		opts = append(opts, parser.Trace(cmd.ErrOrStderr()))
	}
	strict := flagStrict.Bool(cmd)

	w := cmd.OutOrStdout()
	for i, path := range args {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var f *ast.File
		if strict {
			f, err = parser.Parse(path, string(text), opts...)
			if err != nil {
				fmt.Fprintf(cmd.Stderr(), "%s: %v\n", path, err)
				continue
			}
		} else {
			var diag *parser.Diagnostic
			f, diag = parser.TryParse(path, string(text), opts...)
			if diag != nil {
				fmt.Fprintf(cmd.Stderr(), "%s: %v\n", path, diag)
			}
		}
		if len(args) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n", path)
		}
		if err := ast.Fprint(w, f); err != nil {
			return err
		}
	}
	return nil
}
