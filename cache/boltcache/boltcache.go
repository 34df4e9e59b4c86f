// Package boltcache persists per-commit file-change lists across process
// invocations, so that a repeated status() over the same history does not
// repay the cost of shelling out to git for commits whose changes were
// already computed.
//
// Unlike the version/revision cache this is adapted from, a commit's
// change list is immutable once its SHA is known, so entries here never go
// stale and carry no epoch: there is nothing to invalidate.
package boltcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/jmank88/nuts"
	"github.com/pkg/errors"
)

var changesBucket = []byte("changes")

// Cache is a BoltDB-backed store of sha -> changed-files, scoped to the
// remotes it has seen.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the cache file at path.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory %q", dir)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache file %q", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(changesBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database file.
func (c *Cache) Close() error {
	return c.db.Close()
}

func changesKey(remote, sha string) []byte {
	return []byte("/" + remote + "/" + sha)
}

// Changes returns the cached change list for (remote, sha), if present.
func (c *Cache) Changes(remote, sha string) ([]string, bool) {
	var changes []string
	found := false
	want := changesKey(remote, sha)
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(changesBucket)
		if b == nil {
			return nil
		}
		// nuts.SeekPathMatch resolves a stored path-shaped key against a
		// query path; our keys carry no variable segments, so this
		// degrades to an exact lookup, but it means the bucket layout can
		// later grow wildcard entries (e.g. a remote-wide default) without
		// a storage format change.
		path, value := nuts.SeekPathMatch(b.Cursor(), want)
		if path == nil || !bytesEqual(path, want) || value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &changes); err != nil {
			return err
		}
		found = true
		return nil
	})
	return changes, found
}

// PutChanges caches the change list for (remote, sha).
func (c *Cache) PutChanges(remote, sha string, changes []string) error {
	value, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(changesBucket)
		return b.Put(changesKey(remote, sha), value)
	})
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
