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

	"github.com/jesse99/Continuum-sub001/cs/errors"
	"github.com/jesse99/Continuum-sub001/cs/scanner"
)

func newTokensCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens file",
		Short: "print the tokens of a file",
		Long: `Tokens prints the tokens of a C# source file, one per line, as
line, offset, kind and text. Comments are skipped unless --comments is
given. A lexical error stops the listing and is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runTokens),
	}
	cmd.Flags().Bool(string(flagComments), false, "include comments")
	return cmd
}

func runTokens(cmd *Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var mode scanner.Mode
	if flagComments.Bool(cmd) {
		mode |= scanner.ScanComments
	}
	w := cmd.OutOrStdout()
	s := scanner.New(string(text), 0, mode)
	for tok := s.Current(); tok.IsValid(); tok = s.Current() {
		fmt.Fprintf(w, "%d:%d\t%s\t%q\n", tok.Line, tok.Offset, tok.Kind, tok.Text)
		s.Advance()
	}
	if err := s.Err(); err != nil {
		errors.Print(cmd.Stderr(), err)
	}
	return nil
}
