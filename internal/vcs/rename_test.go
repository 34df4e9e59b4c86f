package vcs

import (
	"reflect"
	"sort"
	"testing"
)

func TestExpandRenameRoundTrip(t *testing.T) {
	got := ExpandRename("X/{A => B}/Y")
	sort.Strings(got)
	want := []string{"X/A/Y", "X/B/Y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandRename = %v, want %v", got, want)
	}
}

func TestExpandRenameBarePath(t *testing.T) {
	got := ExpandRename("src/file.go")
	want := []string{"src/file.go"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandRename = %v, want %v", got, want)
	}
}

func TestExpandRenameAtRoot(t *testing.T) {
	got := ExpandRename("{old.png => new.png}")
	sort.Strings(got)
	want := []string{"new.png", "old.png"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandRename = %v, want %v", got, want)
	}
}
