package boltcache

import (
	"path/filepath"
	"testing"
)

func TestChangesRoundTrip(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "changes.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, found := c.Changes("origin", "deadbeef"); found {
		t.Fatalf("expected a miss on an empty cache")
	}

	want := []string{"a.psd", "b.psd"}
	if err := c.PutChanges("origin", "deadbeef", want); err != nil {
		t.Fatalf("PutChanges: %v", err)
	}

	got, found := c.Changes("origin", "deadbeef")
	if !found {
		t.Fatalf("expected a hit after PutChanges")
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChangesScopedByRemote(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "changes.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.PutChanges("origin", "deadbeef", []string{"a.psd"}); err != nil {
		t.Fatalf("PutChanges: %v", err)
	}

	if _, found := c.Changes("upstream", "deadbeef"); found {
		t.Errorf("expected the same SHA under a different remote to miss")
	}
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "changes.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.PutChanges("origin", "cafef00d", []string{"texture.psd"}); err != nil {
		t.Fatalf("PutChanges: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	got, found := reopened.Changes("origin", "cafef00d")
	if !found || len(got) != 1 || got[0] != "texture.psd" {
		t.Errorf("expected cached entry to survive reopen, got %v, found=%v", got, found)
	}
}
