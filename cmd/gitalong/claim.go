// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go/spread"
)

const claimShortHelp = `Claim paths for editing`
const claimLongHelp = `
Claims the given paths: a claim publishes an uncommitted-changes record to
the store so that other clones see the paths as claimed by you. A path
whose last commit belongs to someone else's active branch cannot be
claimed and is reported instead of published.
`

type claimCommand struct {
	prune bool
}

func (cmd *claimCommand) Name() string      { return "claim" }
func (cmd *claimCommand) Args() string      { return "<paths...>" }
func (cmd *claimCommand) ShortHelp() string { return claimShortHelp }
func (cmd *claimCommand) LongHelp() string  { return claimLongHelp }

func (cmd *claimCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.prune, "prune", false, "fetch with --prune before resolving remote branches")
}

func (cmd *claimCommand) Run(args []string) error {
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
	commits := engine.Claim(ctx, paths, cmd.prune)

	blocked := false
	for i, c := range commits {
		repo, err := registry.FromPath(paths[i])
		if err != nil {
			fmt.Printf("%s: not a gitalong repository\n", args[i])
			blocked = true
			continue
		}
		branch, err := repo.VCS().ActiveBranch(ctx)
		if err != nil {
			vlogf("resolving active branch for %s: %v", args[i], err)
		}
		s := c.Spread(branch, repo.Identity())
		if !s.SubsetOf(spread.Claimable) {
			fmt.Printf("blocked: %s (%s)\n", args[i], s.String())
			blocked = true
			continue
		}
		fmt.Printf("claimed: %s\n", args[i])
	}
	if blocked {
		os.Exit(1)
	}
	return nil
}
