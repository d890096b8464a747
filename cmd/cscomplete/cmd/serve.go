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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jesse99/Continuum-sub001/internal/complete"
	"github.com/jesse99/Continuum-sub001/internal/index"
	"github.com/jesse99/Continuum-sub001/internal/workspace"
)

func newServeCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "answer completion requests read from standard input",
		Long: `Serve keeps a set of files parsed and answers requests read from
standard input, one per line. Arguments are split like shell words, so
text containing spaces must be quoted. A caret is a byte offset, or the
word after followed by a piece of text, in which case the caret is
placed right after the first occurrence of the text.

	open path              read and parse path and mark it open
	edit path [text]       queue new text for path, or reread it
	close path             mark path as no longer open
	complete path caret    print the completions at caret
	signatures path caret  print the overloads of the method called at caret
	argindex path caret    print the argument index at caret
	rebuilt                reload the index and drop the files not open
	quit                   stop serving

Each response ends with a line holding a single dot. Errors are reported
on a line starting with "error:". Serving also stops at the end of the
input.`,
		Args: cobra.NoArgs,
		RunE: mkRunE(c, runServe),
	}
	return cmd
}

var errQuit = errors.New("quit")

func runServe(cmd *Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(cmd.Context())

	published := make(chan *workspace.Snapshot)
	engine := e.engine()
	ws := e.workspace(engine, func(snap *workspace.Snapshot) {
		select {
		case published <- snap:
		case <-ctx.Done():
		}
	})
	defer ws.Shutdown()

	// The reader is not part of the group: it may block on input after
	// a quit request.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		sc.Buffer(nil, 16<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		for {
			select {
			case snap := <-published:
				if snap.Diag != nil {
					e.logger.Warn("syntax error", "path", snap.Path, "version", snap.Version, "err", snap.Diag)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	s := &server{env: e, engine: engine, ws: ws, w: cmd.OutOrStdout()}
	g.Go(func() error {
		for line := range lines {
			if err := s.handle(ctx, line); err != nil {
				return err
			}
		}
		return errQuit
	})

	if err := g.Wait(); err != errQuit {
		return err
	}
	return nil
}

// A server handles requests one at a time, so it may change the index
// of its engine between requests.
type server struct {
	env    *env
	engine *complete.Engine
	ws     *workspace.Workspace
	w      io.Writer
}

// handle answers one request. It returns errQuit to stop serving.
func (s *server) handle(ctx context.Context, line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		s.reply(err)
		return nil
	}
	if len(words) == 0 {
		return nil
	}
	if words[0] == "quit" {
		return errQuit
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.reply(s.run(words[0], words[1:]))
	return nil
}

func (s *server) reply(err error) {
	if err != nil {
		fmt.Fprintf(s.w, "error: %v\n", err)
	}
	fmt.Fprintln(s.w, ".")
}

func (s *server) run(verb string, args []string) error {
	switch verb {
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open path")
		}
		s.ws.Open(args[0])
		if err := s.edit(args[0], nil); err != nil {
			return err
		}
		_, err := s.ws.ParseNow(args[0])
		return err

	case "edit":
		switch len(args) {
		case 1:
			return s.edit(args[0], nil)
		case 2:
			return s.edit(args[0], &args[1])
		}
		return errors.New("usage: edit path [text]")

	case "close":
		if len(args) != 1 {
			return errors.New("usage: close path")
		}
		s.ws.Close(args[0])
		return nil

	case "complete", "signatures":
		path, at, err := s.caret(verb, args)
		if err != nil {
			return err
		}
		query := s.ws.Complete
		if verb == "signatures" {
			query = s.ws.Signatures
		}
		items, _, err := query(path, at)
		if err != nil {
			return err
		}
		if verb == "complete" {
			printItems(s.w, items)
			return nil
		}
		for _, it := range items {
			fmt.Fprintln(s.w, it.Text)
		}
		return nil

	case "argindex":
		path, at, err := s.caret(verb, args)
		if err != nil {
			return err
		}
		snap, err := s.ws.ParseNow(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.w, complete.ArgIndex(snap.Text, at))
		return nil

	case "rebuilt":
		if len(args) != 0 {
			return errors.New("usage: rebuilt")
		}
		if path := s.env.cfg.Index; path != "" {
			m, err := index.Load(path)
			if err != nil {
				return err
			}
			s.env.index = m
			s.engine.Resolver.Index = m
		}
		for _, path := range s.ws.Rebuilt() {
			fmt.Fprintf(s.w, "dropped %s\n", path)
		}
		return nil
	}
	return fmt.Errorf("unknown request %q", verb)
}

// edit sets the text of path, reading it from disk if text is nil.
func (s *server) edit(path string, text *string) error {
	if text == nil {
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		t := string(body)
		text = &t
	}
	fmt.Fprintf(s.w, "version %d\n", s.ws.Edit(path, *text))
	return nil
}

// caret parses the path and caret arguments of a query.
func (s *server) caret(verb string, args []string) (string, int, error) {
	usage := fmt.Errorf("usage: %s path offset|after text", verb)
	switch {
	case len(args) == 2:
		at, err := strconv.Atoi(args[1])
		if err != nil || at < 0 {
			return "", 0, usage
		}
		return args[0], at, nil

	case len(args) == 3 && args[1] == "after":
		snap, err := s.ws.ParseNow(args[0])
		if err != nil {
			return "", 0, err
		}
		i := strings.Index(snap.Text, args[2])
		if i < 0 {
			return "", 0, fmt.Errorf("text %q not found", args[2])
		}
		return args[0], i + len(args[2]), nil
	}
	return "", 0, usage
}
