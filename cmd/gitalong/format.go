// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/commit"
)

// dash renders an empty field as "-", the status line's placeholder.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}

// statusLine renders the single-source-of-truth wire format for c at path:
// the ten-glyph spread, the path, the SHA, local and remote branches, host,
// and author (falling back to user when there is no author, e.g. for a
// synthetic-uncommitted record).
func statusLine(path string, c commit.Commit, activeBranch string, id gitalong.Identity) string {
	var local, remote []string
	if c.Branches != nil {
		local, remote = c.Branches.Local, c.Branches.Remote
	}
	author := c.Author
	if author == "" {
		author = c.User
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s",
		c.Spread(activeBranch, id).String(),
		path,
		dash(c.SHA),
		joinOrDash(local),
		joinOrDash(remote),
		dash(c.Host),
		dash(author),
	)
}
