// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
)

// gitalongVersion is set at release time; "dev" identifies a locally built
// binary.
const gitalongVersion = "dev"

const versionShortHelp = `Print the gitalong version`
const versionLongHelp = `
Prints the gitalong version string.
`

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return versionShortHelp }
func (cmd *versionCommand) LongHelp() string  { return versionLongHelp }

func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(args []string) error {
	fmt.Println(gitalongVersion)
	return nil
}
