package vcs

import (
	"os"
	"path/filepath"

	"github.com/douglaslassance/gitalong-go"
)

// FindRoot ascends from path, directory by directory, looking for a `.git`
// entry, the same walk-to-parent search Masterminds/vcs.DetectVcsFromFS does
// for a single directory. Returns gitalong.ErrRepositoryNotFound once it
// reaches the filesystem root without finding one.
func FindRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err == nil && !fi.IsDir() {
		abs = filepath.Dir(abs)
	}

	for {
		if _, err := os.Stat(filepath.Join(abs, ".git")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", gitalong.ErrRepositoryNotFound
		}
		abs = parent
	}
}
