package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWithinMissingFile(t *testing.T) {
	dir := t.TempDir()
	if Within(filepath.Join(dir, "absent"), time.Minute) {
		t.Error("a missing file must never be within the freshness window")
	}
}

func TestTouchThenWithin(t *testing.T) {
	dir := t.TempDir()
	sentinel := filepath.Join(dir, ".pull")
	if err := Touch(sentinel); err != nil {
		t.Fatal(err)
	}
	if !Within(sentinel, time.Minute) {
		t.Error("freshly touched sentinel should be within a one-minute window")
	}
	if Within(sentinel, 0) {
		t.Error("a zero-width window should never be satisfied")
	}
}
