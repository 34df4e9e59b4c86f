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

const releaseShortHelp = `Release claimed paths`
const releaseLongHelp = `
Releases the given paths: republishes this clone's records with no claims,
so every claim this clone published in the repository is withdrawn. Paths
with uncommitted working-tree changes are still published as yours.
`

type releaseCommand struct{}

func (cmd *releaseCommand) Name() string      { return "release" }
func (cmd *releaseCommand) Args() string      { return "<paths...>" }
func (cmd *releaseCommand) ShortHelp() string { return releaseShortHelp }
func (cmd *releaseCommand) LongHelp() string  { return releaseLongHelp }

func (cmd *releaseCommand) Register(fs *flag.FlagSet) {}

func (cmd *releaseCommand) Run(args []string) error {
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
	engine.Release(ctx, paths)

	for _, a := range args {
		fmt.Printf("released: %s\n", a)
	}
	return nil
}
