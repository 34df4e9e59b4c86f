package permissions

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetWritableTogglesUserBit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.bin")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := SetWritable(path, false, false); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&userWrite != 0 {
		t.Fatalf("expected user-write bit cleared, mode=%v", fi.Mode())
	}

	if _, err := SetWritable(path, true, false); err != nil {
		t.Fatal(err)
	}
	fi, err = os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&userWrite == 0 {
		t.Fatalf("expected user-write bit set, mode=%v", fi.Mode())
	}
}

func TestSetWritableMissingFileSafeMode(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "absent.bin")

	got, err := SetWritable(missing, true, true)
	if err != nil {
		t.Fatalf("safe mode must not error on a missing file: %v", err)
	}
	if got {
		t.Fatal("expected false result for a missing file in safe mode")
	}
}

func TestSetWritableMissingFilePropagates(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "absent.bin")

	if _, err := SetWritable(missing, true, false); err == nil {
		t.Fatal("expected an error for a missing file outside safe mode")
	}
}
