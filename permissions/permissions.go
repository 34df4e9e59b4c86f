// Package permissions enforces the spread-derived write-bit policy on the
// working tree, grounded on the single-purpose filesystem helpers
// (os.Stat/os.Chmod, a function of a path) the teacher uses throughout its
// own fs.go.
package permissions

import (
	"os"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
)

// userWrite is the user-write bit this package flips; group/other bits and
// any other mode bits are left untouched.
const userWrite = 0200

// SetWritable ORs (writable=true) or ANDs-off (writable=false) the
// user-write bit of path. In safe mode a missing file or an OS-level
// permission failure is reported as a plain (false, nil)/(true, nil) rather
// than an error; otherwise a missing file returns the wrapped stat error
// and a failed chmod returns gitalong.ErrPermissionDenied.
func SetWritable(path string, writable bool, safe bool) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if safe {
			return false, nil
		}
		return false, errors.Wrap(err, "statting path for permission change")
	}

	mode := fi.Mode()
	var want os.FileMode
	if writable {
		want = mode | userWrite
	} else {
		want = mode &^ userWrite
	}
	if want == mode {
		return writable, nil
	}

	if err := os.Chmod(path, want); err != nil {
		if safe {
			return !writable, nil
		}
		return false, errors.Wrapf(gitalong.ErrPermissionDenied, "%s: %s", path, err)
	}
	return writable, nil
}
