package vcs

import (
	"io"
	"os"
)

// controlWhitelist is the set of non-printable control bytes tolerated in a
// text file's opening window: bell, backspace, tab, line feed, form feed,
// carriage return, and escape.
var controlWhitelist = map[byte]bool{7: true, 8: true, 9: true, 10: true, 12: true, 13: true, 27: true}

// probeWindow is the number of leading bytes inspected for binary content.
const probeWindow = 1024

// IsBinary reports whether the first 1024 bytes of the file at path,
// stripped of printable ASCII and the whitelisted control bytes, leave any
// byte behind.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, probeWindow)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return isBinaryWindow(buf[:n]), nil
}

func isBinaryWindow(window []byte) bool {
	for _, b := range window {
		if b >= 32 && b <= 126 {
			continue
		}
		if controlWhitelist[b] {
			continue
		}
		return true
	}
	return false
}
