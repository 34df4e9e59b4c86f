// Package commit models the tracked-commit record: the unit of information
// published to and read from the side-channel store, and the pure spread
// derivation that tells a caller where a commit's changes live relative to
// its own context.
package commit

import (
	"encoding/json"
	"path"
	"sort"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/spread"
)

// Branches records, for a Real commit, the local and remote branch names
// that contain it.
type Branches struct {
	Local  []string `json:"local,omitempty"`
	Remote []string `json:"remote,omitempty"`
}

// Commit is the tagged-union record described by the commit JSON schema. A
// zero Commit is the Empty variant: it represents "no managed repository"
// or "no relevant commit" and carries no placement information.
//
//   - Real: SHA is non-empty; Host/User/Clone are set when a clone
//     publishes it as one of its local-only commits, and empty when it was
//     resolved from remote history.
//   - Synthetic-uncommitted: SHA is empty, User is non-empty.
//   - Empty: every field is its zero value.
type Commit struct {
	SHA      string    `json:"sha,omitempty"`
	Remote   string    `json:"remote,omitempty"`
	Changes  []string  `json:"changes,omitempty"`
	Date     Timestamp `json:"date,omitempty"`
	Author   string    `json:"author,omitempty"`
	Branches *Branches `json:"branches,omitempty"`
	Host     string    `json:"host,omitempty"`
	User     string    `json:"user,omitempty"`
	Clone    string    `json:"clone,omitempty"`

	// Claimed marks a synthetic-uncommitted record whose Changes were
	// contributed by an explicit claim call rather than derived from a
	// working-tree diff. It distinguishes MINE_CLAIMED/THEIR_CLAIMED from
	// the plain MINE_UNCOMMITTED/THEIR_UNCOMMITTED bits.
	Claimed bool `json:"claimed,omitempty"`
}

// Empty is the null-object Commit: no managed repository, or no relevant
// commit found.
var Empty = Commit{}

// IsEmpty reports whether c carries no placement information at all.
func (c Commit) IsEmpty() bool {
	return c.SHA == "" && c.Remote == "" && c.User == "" && c.Host == "" &&
		c.Clone == "" && len(c.Changes) == 0
}

// IsUncommitted reports whether c is the synthetic-uncommitted variant: it
// has no SHA but does carry a context identity.
func (c Commit) IsUncommitted() bool {
	return c.SHA == "" && c.User != ""
}

// IssuedBy reports whether c's context identity (the subset of
// host/user/clone it carries) matches id key-for-key.
func (c Commit) IssuedBy(id gitalong.Identity) bool {
	return id.IsIssuedBy(c.Host, c.User, c.Clone)
}

// WithContext stamps c with id's host, user and clone path.
func (c Commit) WithContext(id gitalong.Identity) Commit {
	c.Host = id.Host
	c.User = id.User
	c.Clone = id.ClonePath
	return c
}

func containsBranch(branches []string, name string) bool {
	for _, b := range branches {
		if b == name {
			return true
		}
	}
	return false
}

func withoutBranch(branches []string, name string) []string {
	out := make([]string, 0, len(branches))
	for _, b := range branches {
		if b != name {
			out = append(out, b)
		}
	}
	return out
}

// Spread computes the placement bitset for c relative to the caller's
// identity and current active branch. It is pure: it reads only c,
// activeBranch and id.
func (c Commit) Spread(activeBranch string, id gitalong.Identity) spread.Spread {
	var s spread.Spread
	var local, remote []string
	if c.Branches != nil {
		local, remote = c.Branches.Local, c.Branches.Remote
	}

	if c.User != "" {
		mine := c.IssuedBy(id)
		if c.SHA != "" {
			if containsBranch(local, activeBranch) {
				if mine {
					s = s.Set(spread.MineActiveBranch)
				} else {
					s = s.Set(spread.TheirMatchingBranch)
				}
			} else {
				if mine {
					s = s.Set(spread.MineOtherBranch)
				} else {
					s = s.Set(spread.TheirOtherBranch)
				}
			}
		} else {
			if mine {
				s = s.Set(spread.MineUncommitted)
			} else {
				s = s.Set(spread.TheirUncommitted)
			}
			if c.Claimed {
				if mine {
					s = s.Set(spread.MineClaimed)
				} else {
					s = s.Set(spread.TheirClaimed)
				}
			}
		}
		return s
	}

	if containsBranch(remote, activeBranch) {
		s = s.Set(spread.RemoteMatchingBranch)
	}
	if containsBranch(local, activeBranch) {
		s = s.Set(spread.MineActiveBranch)
	}
	if len(withoutBranch(remote, activeBranch)) > 0 {
		s = s.Set(spread.RemoteOtherBranch)
	}
	return s
}

// HasChange reports whether file (relative, forward-slash) is among c's
// changes, under path-normalized comparison.
func (c Commit) HasChange(file string) bool {
	target := path.Clean(file)
	for _, change := range c.Changes {
		if path.Clean(change) == target {
			return true
		}
	}
	return false
}

// Sort orders commits newest first by Date, a stable sort so equal-date
// commits retain their relative order.
func Sort(commits []Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[j].Date.Before(commits[i].Date)
	})
}

// MarshalJSON renders c with alphabetically sorted keys so that republishing
// an unchanged store produces a minimal diff.
func (c Commit) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	if c.SHA != "" {
		m["sha"] = c.SHA
	}
	if c.Remote != "" {
		m["remote"] = c.Remote
	}
	if len(c.Changes) > 0 {
		m["changes"] = c.Changes
	}
	if c.Date != "" {
		m["date"] = c.Date
	}
	if c.Author != "" {
		m["author"] = c.Author
	}
	if c.Branches != nil && (len(c.Branches.Local) > 0 || len(c.Branches.Remote) > 0) {
		m["branches"] = c.Branches
	}
	if c.Host != "" {
		m["host"] = c.Host
	}
	if c.User != "" {
		m["user"] = c.User
	}
	if c.Clone != "" {
		m["clone"] = c.Clone
	}
	if c.Claimed {
		m["claimed"] = true
	}
	return json.Marshal(m)
}
