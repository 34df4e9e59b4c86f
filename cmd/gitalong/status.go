// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

const statusShortHelp = `Report where each path's last commit lives`
const statusLongHelp = `
Reports, for each given path, a ten-glyph spread describing whether its last
commit is on disk here, on another machine, committed, uncommitted or
claimed, followed by the SHA, branches, host and author gitalong knows about.
`

type statusCommand struct {
	prune bool
}

func (cmd *statusCommand) Name() string      { return "status" }
func (cmd *statusCommand) Args() string      { return "<paths...>" }
func (cmd *statusCommand) ShortHelp() string { return statusShortHelp }
func (cmd *statusCommand) LongHelp() string  { return statusLongHelp }

func (cmd *statusCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.prune, "prune", false, "fetch with --prune before resolving remote branches")
}

func (cmd *statusCommand) Run(args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least one path")
	}

	paths := make([]string, len(args))
	for i, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", a)
		}
		paths[i] = abs
	}

	ctx := context.Background()
	engine := newEngine()
	commits := engine.LastCommits(ctx, paths, cmd.prune)

	for i, c := range commits {
		repo, err := registry.FromPath(paths[i])
		if err != nil {
			fmt.Printf("---------- %s: not a gitalong repository\n", args[i])
			continue
		}
		branch, err := repo.VCS().ActiveBranch(ctx)
		if err != nil {
			vlogf("resolving active branch for %s: %v", args[i], err)
		}
		fmt.Println(statusLine(repo.RelativePath(paths[i]), c, branch, repo.Identity()))
	}
	return nil
}
