package spread

import "testing"

func TestStringGlyphOrder(t *testing.T) {
	cases := []struct {
		s    Spread
		want string
	}{
		{0, "----------"},
		{MineUncommitted, "+---------"},
		{TheirUncommitted, "---------+"},
		{MineActiveBranch | RemoteMatchingBranch, "--+-+-----"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("Spread(%b).String() = %q, want %q", uint16(c.s), got, c.want)
		}
	}
}

func TestSubsetOf(t *testing.T) {
	if !(MineActiveBranch | MineClaimed).SubsetOf(Claimable) {
		t.Error("MineActiveBranch|MineClaimed should be a subset of Claimable")
	}
	if !Spread(0).SubsetOf(Claimable) {
		// zero is trivially a subset; this asserts the property holds true,
		// not that it's falsy.
		t.Error("zero spread must be a subset of Claimable")
	}
	if (MineOtherBranch).SubsetOf(Claimable) {
		t.Error("MineOtherBranch must not be claimable")
	}
	if !Spread(0).SubsetOf(0) {
		t.Error("zero spread must be a subset of the zero spread")
	}
}

func TestHasAndAny(t *testing.T) {
	s := MineActiveBranch | RemoteMatchingBranch
	if !s.Has(MineActiveBranch) {
		t.Error("expected MineActiveBranch to be set")
	}
	if s.Has(MineActiveBranch | MineOtherBranch) {
		t.Error("Has should require every requested bit")
	}
	if !s.Any(MineOtherBranch | RemoteMatchingBranch) {
		t.Error("Any should match on a shared bit")
	}
}

func TestSetClear(t *testing.T) {
	s := Spread(0).Set(MineUncommitted | MineClaimed)
	if !s.Has(MineUncommitted) || !s.Has(MineClaimed) {
		t.Fatalf("Set did not apply both flags: %v", s)
	}
	s = s.Clear(MineClaimed)
	if s.Has(MineClaimed) {
		t.Error("Clear did not remove MineClaimed")
	}
	if !s.Has(MineUncommitted) {
		t.Error("Clear must not remove unrelated flags")
	}
}
