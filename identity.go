// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gitalong coordinates binary-file editing across many clones of a
// shared version-control repository. It publishes, through a pluggable
// side-channel store, the set of in-flight changes made in each clone and
// uses that knowledge to tell a user whether a file is safe to edit.
package gitalong

// Identity names the clone a commit record was issued from: the machine
// (Host), the logged-in account (User), and the real, symlink-resolved
// working-tree root (ClonePath).
type Identity struct {
	Host      string
	User      string
	ClonePath string
}

// IsIssuedBy reports whether a record carrying the given host, user and
// clone path values was issued by id. A field left empty on the record side
// is absent, not a conflicting value, and never disqualifies the match: the
// record is "ours" iff every field it does carry agrees with id.
func (id Identity) IsIssuedBy(host, user, clonePath string) bool {
	if host != "" && host != id.Host {
		return false
	}
	if user != "" && user != id.User {
		return false
	}
	if clonePath != "" && clonePath != id.ClonePath {
		return false
	}
	return true
}
