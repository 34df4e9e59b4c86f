package vcs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsBinaryWindow(t *testing.T) {
	text := []byte("hello\tworld\nthis is a perfectly normal text file.\r\n")
	if isBinaryWindow(text) {
		t.Error("plain text window should not be detected as binary")
	}

	withNul := append([]byte{}, text...)
	withNul[3] = 0
	if !isBinaryWindow(withNul) {
		t.Error("a single NUL byte in the window must flip detection to binary")
	}
}

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(textPath, []byte("just some text\n"), 0644); err != nil {
		t.Fatal(err)
	}
	isBin, err := IsBinary(textPath)
	if err != nil {
		t.Fatal(err)
	}
	if isBin {
		t.Error("text file reported as binary")
	}

	binPath := filepath.Join(dir, "image.dat")
	payload := append([]byte("PNG"), 0x00, 0x01, 0x02, 0xff)
	if err := os.WriteFile(binPath, payload, 0644); err != nil {
		t.Fatal(err)
	}
	isBin, err = IsBinary(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if !isBin {
		t.Error("binary file not detected as binary")
	}
}
