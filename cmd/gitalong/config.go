// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

const configShortHelp = `Print a value from .gitalong.json`
const configLongHelp = `
Prints the value of the named configuration key (store_url, modify_permissions,
track_binaries, tracked_extensions, track_uncommitted, pull_threshold) for the
repository containing the current directory.
`

type configCommand struct{}

func (cmd *configCommand) Name() string      { return "config" }
func (cmd *configCommand) Args() string      { return "<key>" }
func (cmd *configCommand) ShortHelp() string { return configShortHelp }
func (cmd *configCommand) LongHelp() string  { return configLongHelp }
func (cmd *configCommand) Register(fs *flag.FlagSet) {}

func (cmd *configCommand) Run(args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one key")
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	repo, err := registry.FromPath(wd)
	if err != nil {
		return err
	}
	cfg := repo.Config()

	switch args[0] {
	case "store_url":
		fmt.Println(cfg.StoreURL)
	case "modify_permissions":
		fmt.Println(cfg.ModifyPermissions)
	case "track_binaries":
		fmt.Println(cfg.TrackBinaries)
	case "tracked_extensions":
		fmt.Println(cfg.TrackedExtensions)
	case "track_uncommitted":
		fmt.Println(cfg.TrackUncommitted)
	case "pull_threshold":
		fmt.Println(cfg.PullThreshold)
	default:
		return errors.Errorf("unknown configuration key %q", args[0])
	}
	return nil
}
