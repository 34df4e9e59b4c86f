package commit

import (
	"testing"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/spread"
)

var me = gitalong.Identity{Host: "h1", User: "alice", ClonePath: "/clones/a"}

func TestSpreadUncommittedMine(t *testing.T) {
	c := Commit{}.WithContext(me)
	c.Remote = "origin"
	s := c.Spread("main", me)
	if s != spread.MineUncommitted {
		t.Fatalf("got %v, want MineUncommitted", s)
	}
}

func TestSpreadUncommittedTheirs(t *testing.T) {
	other := gitalong.Identity{Host: "h2", User: "bob", ClonePath: "/clones/b"}
	c := Commit{}.WithContext(other)
	s := c.Spread("main", me)
	if s != spread.TheirUncommitted {
		t.Fatalf("got %v, want TheirUncommitted", s)
	}
}

func TestSpreadClaimedAddsBitAlongsideUncommitted(t *testing.T) {
	c := Commit{Claimed: true}.WithContext(me)
	s := c.Spread("main", me)
	if !s.Has(spread.MineUncommitted) || !s.Has(spread.MineClaimed) {
		t.Fatalf("expected both MineUncommitted and MineClaimed, got %v", s)
	}
}

func TestSpreadRealCommitMineActiveBranch(t *testing.T) {
	c := Commit{SHA: "deadbeef", Branches: &Branches{Local: []string{"main"}}}.WithContext(me)
	s := c.Spread("main", me)
	if s != spread.MineActiveBranch {
		t.Fatalf("got %v, want MineActiveBranch", s)
	}
}

func TestSpreadRealCommitTheirMatchingBranch(t *testing.T) {
	other := gitalong.Identity{Host: "h2", User: "bob", ClonePath: "/clones/b"}
	c := Commit{SHA: "deadbeef", Branches: &Branches{Local: []string{"main"}}}.WithContext(other)
	s := c.Spread("main", me)
	if s != spread.TheirMatchingBranch {
		t.Fatalf("got %v, want TheirMatchingBranch", s)
	}
}

func TestSpreadRemoteOnlyCommit(t *testing.T) {
	c := Commit{SHA: "deadbeef", Branches: &Branches{Remote: []string{"main", "release"}}}
	s := c.Spread("main", me)
	if !s.Has(spread.RemoteMatchingBranch) || !s.Has(spread.RemoteOtherBranch) {
		t.Fatalf("got %v, want RemoteMatchingBranch|RemoteOtherBranch", s)
	}
	if s.Has(spread.MineActiveBranch) {
		t.Fatal("no local branches were given, MineActiveBranch must not be set")
	}
}

func TestSpreadRemoteMatchingOnlyWhenSoleRemoteBranch(t *testing.T) {
	c := Commit{SHA: "deadbeef", Branches: &Branches{Remote: []string{"main"}}}
	s := c.Spread("main", me)
	if s != spread.RemoteMatchingBranch {
		t.Fatalf("got %v, want RemoteMatchingBranch only", s)
	}
}

// TestSpreadDisjointMineTheirLanes asserts the universal invariant that the MINE_* and
// THEIR_* bit of any single lane are never both set.
func TestSpreadDisjointMineTheirLanes(t *testing.T) {
	lanes := [][2]spread.Spread{
		{spread.MineUncommitted, spread.TheirUncommitted},
		{spread.MineClaimed, spread.TheirClaimed},
		{spread.MineActiveBranch, spread.TheirMatchingBranch},
		{spread.MineOtherBranch, spread.TheirOtherBranch},
	}
	identities := []gitalong.Identity{me, {Host: "h2", User: "bob", ClonePath: "/clones/b"}}
	shas := []string{"", "deadbeef"}
	branchSets := []*Branches{nil, {Local: []string{"main"}}, {Local: []string{"feature"}}}
	for _, id := range identities {
		for _, sha := range shas {
			for _, b := range branchSets {
				c := Commit{SHA: sha, Branches: b, Claimed: true}.WithContext(id)
				s := c.Spread("main", me)
				for _, lane := range lanes {
					if s.Has(lane[0]) && s.Has(lane[1]) {
						t.Fatalf("commit %+v produced spread %v with both lane bits set", c, s)
					}
				}
			}
		}
	}
}

func TestHasChangeNormalizesPaths(t *testing.T) {
	c := Commit{Changes: []string{"a/b/c.png"}}
	if !c.HasChange("a/b/c.png") {
		t.Error("expected exact match to be found")
	}
	if !c.HasChange("a/b/../b/c.png") {
		t.Error("expected normalized match to be found")
	}
	if c.HasChange("a/b/d.png") {
		t.Error("unexpected match")
	}
}

func TestSortNewestFirst(t *testing.T) {
	commits := []Commit{
		{Date: Timestamp("2024-01-01T00:00:00.000000000Z")},
		{Date: Timestamp("2024-06-01T00:00:00.000000000Z")},
		{Date: Timestamp("2024-03-01T00:00:00.000000000Z")},
	}
	Sort(commits)
	if commits[0].Date != "2024-06-01T00:00:00.000000000Z" {
		t.Fatalf("expected newest-first, got %v", commits)
	}
}
