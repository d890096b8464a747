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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/jesse99/Continuum-sub001/cs/parser"
	"github.com/jesse99/Continuum-sub001/internal/complete"
	"github.com/jesse99/Continuum-sub001/internal/config"
	"github.com/jesse99/Continuum-sub001/internal/debug"
	"github.com/jesse99/Continuum-sub001/internal/index"
	"github.com/jesse99/Continuum-sub001/internal/resolve"
	"github.com/jesse99/Continuum-sub001/internal/workspace"
)

// loadConfig reads the configuration file and applies the global flags
// on top of it.
func loadConfig(cmd *Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := flagConfig.String(cmd); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault(os.Getenv)
	}
	if err != nil {
		return nil, err
	}

	if flagIndex.Changed(cmd) {
		cfg.Index = flagIndex.String(cmd)
	}
	if flagLogLevel.Changed(cmd) {
		cfg.LogLevel = flagLogLevel.String(cmd)
	}
	if flagLanguageVersion.Changed(cmd) {
		cfg.LanguageVersion = flagLanguageVersion.String(cmd)
	}
	if flagMax.Changed(cmd) {
		cfg.MaxCandidates = flagMax.Int(cmd)
	}
	if flagFuzzy.Changed(cmd) {
		cfg.FuzzyThreshold = flagFuzzy.Float32(cmd)
	}
	if flagUsing.Changed(cmd) {
		cfg.Usings = flagUsing.StringArray(cmd)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// An env holds the settings and collaborators shared by the commands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	index  *index.Memory // nil without an index file
	parser []parser.Option
}

func newEnv(cmd *Command) (*env, error) {
	var flags debug.Flags
	if err := debug.Init(&flags, os.Getenv); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	stderr := &lockedWriter{w: cmd.ErrOrStderr()}
	e := &env{
		cfg: cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: flags.Source,
		})),
	}
	if cfg.Index != "" {
		if e.index, err = index.Load(cfg.Index); err != nil {
			return nil, err
		}
		e.logger.Debug("loaded index", "path", cfg.Index, "types", e.index.Len())
	}
	if v := cfg.LanguageVersion; v != "" {
		e.parser = append(e.parser, parser.Version(v))
	}
	if flags.ParseTrace {
		e.parser = append(e.parser, parser.Trace(stderr))
	}
	return e, nil
}

// lockedWriter serializes the writes of the worker and of the command
// goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(b)
}

func (e *env) resolver() *resolve.Resolver {
	var idx index.Index
	if e.index != nil {
		idx = e.index
	}
	r := resolve.New(idx, e.logger)
	r.Usings = e.cfg.Usings
	return r
}

func (e *env) engine() *complete.Engine {
	return &complete.Engine{
		Resolver:      e.resolver(),
		MaxCandidates: e.cfg.MaxCandidates,
		Threshold:     e.cfg.FuzzyThreshold,
		Logger:        e.logger,
	}
}

func (e *env) workspace(engine *complete.Engine, notify func(*workspace.Snapshot)) *workspace.Workspace {
	return workspace.New(workspace.Options{
		Engine: engine,
		Notify: notify,
		Parser: e.parser,
		Logger: e.logger,
	})
}

// load edits the given files into ws and waits until all of them are
// parsed.
func load(ws *workspace.Workspace, paths ...string) error {
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ws.Edit(path, string(text))
	}
	for _, path := range paths {
		if _, err := ws.ParseNow(path); err != nil {
			return err
		}
	}
	return nil
}

// caret returns the caret offset in text given by the caret flags.
func caret(cmd *Command, text string) (int, error) {
	if flagAfter.Changed(cmd) {
		after := flagAfter.String(cmd)
		i := strings.Index(text, after)
		if i < 0 {
			return 0, fmt.Errorf("text %q not found", after)
		}
		return i + len(after), nil
	}
	at := flagAt.Int(cmd)
	switch {
	case at < 0:
		return 0, errors.New("no caret given: use --at or --after")
	case at > len(text):
		return 0, fmt.Errorf("caret %d is beyond the end of the file", at)
	}
	return at, nil
}

func printItems(w io.Writer, items []complete.Item) {
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s", it.Text, it.Kind)
		if it.Owner != "" {
			fmt.Fprintf(w, "\t%s", it.Owner)
		}
		fmt.Fprintln(w)
	}
}
