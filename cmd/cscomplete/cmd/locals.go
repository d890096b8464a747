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

	"github.com/jesse99/Continuum-sub001/cs/parser"
	"github.com/jesse99/Continuum-sub001/internal/resolve"
	"github.com/jesse99/Continuum-sub001/internal/scope"
)

func newLocalsCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locals file",
		Short: "print the variables visible at a caret",
		Long: `Locals prints the variables visible at the caret, in lookup
order: this, the value of a setter, locals with the most recent first,
arguments and members of the enclosing types. Each line holds the
origin, the declared type and the name, followed by the initializer of
a local if it has one.

The first line names the enclosing type and member.`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runLocals),
	}
	addCaretFlags(cmd.Flags())
	return cmd
}

func runLocals(cmd *Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(body)
	at, err := caret(cmd, text)
	if err != nil {
		return err
	}
	f, _ := parser.TryParse(path, text, e.parser...)

	w := cmd.OutOrStdout()
	c := scope.Locate(f, at)
	switch {
	case c.Type == nil:
		fmt.Fprintln(w, "# outside any type")
	case c.Member == nil:
		fmt.Fprintf(w, "# in %s\n", c.Type.FullName())
	default:
		fmt.Fprintf(w, "# in %s.%s\n", c.Type.FullName(), c.Member.DeclName())
	}

	q := resolve.NewQuery(f, text, at)
	for _, v := range q.Variables() {
		fmt.Fprintf(w, "%s\t%s\t%s", v.Origin, v.Type, v.Name)
		if v.Origin == resolve.Local && v.Value != "" {
			fmt.Fprintf(w, "\t= %s", v.Value)
		}
		fmt.Fprintln(w)
	}
	return nil
}
