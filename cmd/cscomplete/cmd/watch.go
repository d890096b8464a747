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
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jesse99/Continuum-sub001/cs/ast"
	"github.com/jesse99/Continuum-sub001/internal/watch"
	"github.com/jesse99/Continuum-sub001/internal/workspace"
)

func newWatchCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "parse source files as they change",
		Long: `Watch parses the source files under dir, the current directory by
default, and parses them again each time they change, until interrupted.
For each parse it prints the file, the number of types it declares and
its first syntax error, if any.

With --once the files are parsed a single time and watch exits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runWatch),
	}
	cmd.Flags().Bool(string(flagOnce), false, "parse the files once and exit")
	return cmd
}

func runWatch(cmd *Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	once := flagOnce.Bool(cmd)

	var mu sync.Mutex
	w := cmd.OutOrStdout()
	report := func(snap *workspace.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		printSnapshot(w, root, snap)
	}
	var notify func(*workspace.Snapshot)
	if !once {
		notify = report
	}
	ws := e.workspace(e.engine(), notify)
	defer ws.Shutdown()

	if once {
		paths, err := watch.Glob(root, e.cfg.Sources)
		if err != nil {
			return err
		}
		for _, path := range paths {
			text, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			ws.Edit(path, string(text))
			snap, err := ws.ParseNow(path)
			if err != nil {
				return err
			}
			report(snap)
		}
		return nil
	}

	watcher, err := watch.New(root, e.cfg.Sources, ws, e.logger)
	if err != nil {
		return err
	}
	n, err := watcher.Start()
	if err != nil {
		return err
	}
	e.logger.Info("watching", "dir", root, "files", n)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return watcher.Stop()
}

func printSnapshot(w io.Writer, root string, snap *workspace.Snapshot) {
	path := snap.Path
	if rel, err := filepath.Rel(root, path); err == nil {
		path = filepath.ToSlash(rel)
	}
	types := 0
	ast.Types(snap.File, func(*ast.TypeDecl) bool {
		types++
		return true
	})
	fmt.Fprintf(w, "%s: %d types", path, types)
	if snap.Diag != nil {
		fmt.Fprintf(w, ": %v", snap.Diag)
	}
	fmt.Fprintln(w)
}
