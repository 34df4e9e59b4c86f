// Package spread defines the CommitSpread bitset: the set of placement
// facts describing where, across branches and clones, a commit's changes
// live relative to the caller's context.
package spread

import "strings"

// Spread is a combinable bitset over the ten disjoint placement facts a
// commit can carry.
type Spread uint16

const (
	// MineUncommitted means the record represents our own uncommitted
	// working-tree changes.
	MineUncommitted Spread = 1 << iota
	// MineClaimed means the record's changes were contributed by an
	// explicit claim call of ours, rather than a working-tree diff.
	MineClaimed
	// MineActiveBranch means the commit is on our local active branch.
	MineActiveBranch
	// MineOtherBranch means the commit is on one or more of our other
	// local branches.
	MineOtherBranch
	// RemoteMatchingBranch means the commit is on the remote branch with
	// the same name as our active branch.
	RemoteMatchingBranch
	// RemoteOtherBranch means the commit is on some other remote branch.
	RemoteOtherBranch
	// TheirOtherBranch means the commit is on someone else's clone, on a
	// branch other than the one matching our active branch.
	TheirOtherBranch
	// TheirMatchingBranch means the commit is on someone else's clone, on
	// the branch matching our active branch.
	TheirMatchingBranch
	// TheirClaimed means the record's changes were contributed by someone
	// else's explicit claim call.
	TheirClaimed
	// TheirUncommitted means the record represents someone else's
	// uncommitted working-tree changes.
	TheirUncommitted
)

// bits lists every named flag in wire order: the order used by the
// ten-glyph status line and by String.
var bits = [...]struct {
	flag Spread
	ch   byte
}{
	{MineUncommitted, 'U'},
	{MineClaimed, 'C'},
	{MineActiveBranch, 'A'},
	{MineOtherBranch, 'O'},
	{RemoteMatchingBranch, 'M'},
	{RemoteOtherBranch, 'R'},
	{TheirOtherBranch, 'o'},
	{TheirMatchingBranch, 'm'},
	{TheirClaimed, 'c'},
	{TheirUncommitted, 'u'},
}

// Has reports whether every bit set in want is also set in s.
func (s Spread) Has(want Spread) bool {
	return s&want == want
}

// Any reports whether s and want share at least one set bit.
func (s Spread) Any(want Spread) bool {
	return s&want != 0
}

// SubsetOf reports whether every bit set in s is also set in allowed. An
// empty spread is a subset of anything, including the zero spread.
func (s Spread) SubsetOf(allowed Spread) bool {
	return s&^allowed == 0
}

// Set returns s with every bit in flags turned on.
func (s Spread) Set(flags Spread) Spread {
	return s | flags
}

// Clear returns s with every bit in flags turned off.
func (s Spread) Clear(flags Spread) Spread {
	return s &^ flags
}

// String renders the ten-glyph wire representation, one character per
// named flag in MINE_UNCOMMITTED..THEIR_UNCOMMITTED order: '+' when the bit
// is set, '-' otherwise.
func (s Spread) String() string {
	var b strings.Builder
	b.Grow(len(bits))
	for _, e := range bits {
		if s.Has(e.flag) {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Names returns the flag names currently set, in wire order. Useful for
// diagnostics; the wire format itself uses String.
func (s Spread) Names() []string {
	names := map[Spread]string{
		MineUncommitted:      "MINE_UNCOMMITTED",
		MineClaimed:          "MINE_CLAIMED",
		MineActiveBranch:     "MINE_ACTIVE_BRANCH",
		MineOtherBranch:      "MINE_OTHER_BRANCH",
		RemoteMatchingBranch: "REMOTE_MATCHING_BRANCH",
		RemoteOtherBranch:    "REMOTE_OTHER_BRANCH",
		TheirOtherBranch:     "THEIR_OTHER_BRANCH",
		TheirMatchingBranch:  "THEIR_MATCHING_BRANCH",
		TheirClaimed:         "THEIR_CLAIMED",
		TheirUncommitted:     "THEIR_UNCOMMITTED",
	}
	var out []string
	for _, e := range bits {
		if s.Has(e.flag) {
			out = append(out, names[e.flag])
		}
	}
	return out
}

// Claimable is the set of spreads under which a path is safe to claim: no
// one else holds any record of this change.
const Claimable = MineActiveBranch | MineUncommitted | MineClaimed

// Writable is the set of spreads under which the working copy of a path is
// safe to edit without claiming it first.
const Writable = MineUncommitted | MineActiveBranch
