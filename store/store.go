// Package store defines the side-channel Store capability: a list of
// commit records that any clone may read, and that a clone writes back as
// a best-effort total replacement.
package store

import (
	"context"
	"strings"

	"github.com/douglaslassance/gitalong-go/commit"
)

// Store is the two-method capability both backends implement. Read is
// freshness-gated; Write is a best-effort total replace of the shared
// state.
type Store interface {
	Read(ctx context.Context) ([]commit.Commit, error)
	Write(ctx context.Context, commits []commit.Commit) error
}

// Kind names which backend a store_url selects.
type Kind int

const (
	// KindVCS selects the VCS-backed store: a dedicated second clone.
	KindVCS Kind = iota
	// KindHTTP selects the HTTP-backed JSON-document store.
	KindHTTP
)

// SelectKind inspects storeURL's syntax and reports which backend it
// names: an "http://" or "https://" prefix selects the HTTP store;
// anything else (in particular, a trailing VCS-clone suffix like ".git")
// selects the VCS store.
func SelectKind(storeURL string) Kind {
	if strings.HasPrefix(storeURL, "http://") || strings.HasPrefix(storeURL, "https://") {
		return KindHTTP
	}
	return KindVCS
}
