// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go/config"
	"github.com/douglaslassance/gitalong-go/repository"
)

const setupShortHelp = `Install gitalong on the current (or given) working tree`
const setupLongHelp = `
Writes .gitalong.json at the working tree root containing store_url and the
tracking options. Setup is idempotent: running it again with the same flags
overwrites the configuration with byte-identical content.
`

type setupCommand struct {
	modifyPermissions bool
	trackBinaries     bool
	trackUncommitted  bool
	trackedExtensions string
	pullThreshold     int
}

func (cmd *setupCommand) Name() string      { return "setup" }
func (cmd *setupCommand) Args() string      { return "<store-url> [path]" }
func (cmd *setupCommand) ShortHelp() string { return setupShortHelp }
func (cmd *setupCommand) LongHelp() string  { return setupLongHelp }

func (cmd *setupCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.modifyPermissions, "modify-permissions", false, "enforce claims via filesystem write bits")
	fs.BoolVar(&cmd.trackBinaries, "track-binaries", false, "auto-detect binary files as tracked")
	fs.BoolVar(&cmd.trackUncommitted, "track-uncommitted", false, "publish uncommitted working-tree changes to the store")
	fs.StringVar(&cmd.trackedExtensions, "tracked-extensions", "", "comma-separated list of extensions to track, e.g. .psd,.fbx")
	fs.IntVar(&cmd.pullThreshold, "pull-threshold", config.DefaultPullThreshold, "seconds between opportunistic store pulls")
}

func (cmd *setupCommand) Run(args []string) error {
	if len(args) < 1 {
		return errors.New("store-url is required")
	}
	storeURL := args[0]

	path := "."
	if len(args) > 1 {
		path = args[1]
	}

	var extensions []string
	if cmd.trackedExtensions != "" {
		for _, ext := range strings.Split(cmd.trackedExtensions, ",") {
			extensions = append(extensions, strings.TrimSpace(ext))
		}
	}

	cfg := &config.Configuration{
		StoreURL:          storeURL,
		ModifyPermissions: cmd.modifyPermissions,
		TrackBinaries:     cmd.trackBinaries,
		TrackUncommitted:  cmd.trackUncommitted,
		TrackedExtensions: extensions,
		PullThreshold:     cmd.pullThreshold,
	}

	abs, err := os.Getwd()
	if err != nil {
		return err
	}
	if path != "." {
		abs = path
	}

	repo, err := repository.Setup(registry, abs, cfg)
	if err != nil {
		return errors.Wrap(err, "setting up gitalong")
	}
	fmt.Printf("gitalong: installed at %s\n", repo.Root())
	return nil
}
