// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

const updateShortHelp = `Republish this clone's tracked commits`
const updateLongHelp = `
Recomputes and republishes the tracked-commit records this clone is
responsible for: its own local-only commits and its own uncommitted
changes. Run after pulling, committing, or pushing so other clones see an
up-to-date picture. Refreshes filesystem write permissions when
modify_permissions is enabled.
`

type updateCommand struct{}

func (cmd *updateCommand) Name() string      { return "update" }
func (cmd *updateCommand) Args() string      { return "" }
func (cmd *updateCommand) ShortHelp() string { return updateShortHelp }
func (cmd *updateCommand) LongHelp() string  { return updateLongHelp }

func (cmd *updateCommand) Register(fs *flag.FlagSet) {}

func (cmd *updateCommand) Run(args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	repo, err := registry.FromPath(wd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := repo.RecomputeTrackedCommits(ctx, nil); err != nil {
		return err
	}

	if repo.Config().ModifyPermissions {
		paths, err := repo.TrackedPaths(ctx)
		if err != nil {
			return err
		}
		newEngine().UpdatePermissions(ctx, paths)
	}

	fmt.Printf("updated: %s\n", repo.Root())
	return nil
}
