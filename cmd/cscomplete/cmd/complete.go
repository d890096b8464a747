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

	"github.com/jesse99/Continuum-sub001/internal/complete"
	"github.com/jesse99/Continuum-sub001/internal/workspace"
)

func newCompleteCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete file [other...]",
		Short: "print the completions at a caret",
		Long: `Complete prints the completions at the caret in the first file,
one per line, with their kind and the type declaring them. The other
files are parsed too and their declarations are visible, as if they
were open in an editor.

After a member access the completions are the members of the type of
the expression before the dot. Elsewhere they are the variables, the
members of the enclosing types and the types visible from the caret.`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runComplete),
	}
	addCaretFlags(cmd.Flags())
	return cmd
}

func runComplete(cmd *Command, args []string) error {
	items, err := query(cmd, args, (*workspace.Workspace).Complete)
	if err != nil {
		return err
	}
	printItems(cmd.OutOrStdout(), items)
	return nil
}

func newSignaturesCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures file [other...]",
		Short: "print the overloads of the method called at a caret",
		Long: `Signatures prints the overloads of the method whose argument list
encloses the caret. Each line holds the signature and the parameter the
caret is in, if the overload has one at that position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runSignatures),
	}
	addCaretFlags(cmd.Flags())
	return cmd
}

func runSignatures(cmd *Command, args []string) error {
	items, err := query(cmd, args, (*workspace.Workspace).Signatures)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, it := range items {
		fmt.Fprint(w, it.Text)
		if h := it.Highlight; !h.Empty() {
			fmt.Fprintf(w, "\t%s", it.Text[h.Start:h.End])
		}
		fmt.Fprintln(w)
	}
	return nil
}

type queryFunc func(ws *workspace.Workspace, path string, caret int) ([]complete.Item, *workspace.Snapshot, error)

// query loads args into a new workspace and runs f at the caret in the
// first file.
func query(cmd *Command, args []string, f queryFunc) ([]complete.Item, error) {
	e, err := newEnv(cmd)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	at, err := caret(cmd, string(text))
	if err != nil {
		return nil, err
	}

	ws := e.workspace(e.engine(), nil)
	defer ws.Shutdown()
	if err := load(ws, args...); err != nil {
		return nil, err
	}
	items, _, err := f(ws, args[0], at)
	return items, err
}

func newArgIndexCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "argindex file",
		Short: "print the argument index at a caret",
		Long: `Argindex prints the position of the argument the caret is in,
counting from 1, within the innermost enclosing argument list. A
negative number is the position within a generic argument list, and 0
means the caret is in no argument list.`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runArgIndex),
	}
	addCaretFlags(cmd.Flags())
	return cmd
}

func runArgIndex(cmd *Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	at, err := caret(cmd, string(text))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), complete.ArgIndex(string(text), at))
	return nil
}
