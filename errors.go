// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gitalong

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Wrap with github.com/pkg/errors.Wrap at call sites
// that add context; compare with errors.Cause against these values.
var (
	// ErrRepositoryNotFound means a path is not under a VCS working tree.
	ErrRepositoryNotFound = errors.New("gitalong: path is not under a version-controlled working tree")

	// ErrRepositoryNotSetup means a working tree has no configuration file.
	ErrRepositoryNotSetup = errors.New("gitalong: repository has no .gitalong.json configuration")

	// ErrRepositoryInvalidConfig means the configuration file is malformed
	// or names a store_url of unrecognized shape.
	ErrRepositoryInvalidConfig = errors.New("gitalong: invalid repository configuration")

	// ErrPermissionDenied means the write bit of an existing path could not
	// be adjusted.
	ErrPermissionDenied = errors.New("gitalong: permission denied adjusting file mode")
)

// StoreUnreachableError means a store GET/PUT returned a status other than
// 200 OK, or failed at the network level (including a timeout).
type StoreUnreachableError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StoreUnreachableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gitalong: store unreachable: %s", e.Err)
	}
	return fmt.Sprintf("gitalong: store unreachable: status %d: %s", e.StatusCode, e.Body)
}

func (e *StoreUnreachableError) Unwrap() error { return e.Err }

// VCSError means the VCS binary returned a non-zero exit status.
type VCSError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *VCSError) Error() string {
	return fmt.Sprintf("gitalong: vcs command %v failed with exit code %d: %s", e.Args, e.ExitCode, e.Stderr)
}
