// Package vcsstore implements the store.Store capability over a dedicated
// second VCS clone: state is a single commits.json file at the clone root,
// published by committing and pushing it.
package vcsstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/cache"
	"github.com/douglaslassance/gitalong-go/commit"
	internalvcs "github.com/douglaslassance/gitalong-go/internal/vcs"
)

// CloneDirName is where the store's second clone lives, relative to the
// managed working-tree root.
const CloneDirName = ".gitalong"

// CommitsFilename is the JSON document holding the published commit list.
const CommitsFilename = "commits.json"

// Store is the VCS-backed side-channel.
type Store struct {
	repo          *internalvcs.Repo
	pullThreshold time.Duration
	lock          *flock.Flock
}

// Open opens the store clone under managedRoot, cloning it from storeURL on
// first use.
func Open(managedRoot, storeURL string, pullThreshold time.Duration) (*Store, error) {
	dir := filepath.Join(managedRoot, CloneDirName)
	repo, err := internalvcs.Open(storeURL, dir)
	if err != nil {
		return nil, errors.Wrap(err, "opening store clone")
	}
	if !repo.CheckLocal() {
		if err := repo.Get(); err != nil {
			return nil, errors.Wrap(err, "cloning store repository")
		}
	}
	return &Store{
		repo:          repo,
		pullThreshold: pullThreshold,
		lock:          flock.New(filepath.Join(dir, ".gitalong.lock")),
	}, nil
}

func (s *Store) commitsPath() string {
	return filepath.Join(s.repo.LocalPath(), CommitsFilename)
}

// Read pulls (if stale) then parses commits.json. A pull failure degrades
// to whatever is on disk; a missing commits.json reads as an empty list.
func (s *Store) Read(ctx context.Context) ([]commit.Commit, error) {
	if !cache.Within(s.repo.FetchHeadPath(), s.pullThreshold) {
		_ = s.repo.Pull(ctx)
	}

	if err := s.lock.RLock(); err == nil {
		defer s.lock.Unlock()
	}

	data, err := os.ReadFile(s.commitsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading commits.json")
	}

	var commits []commit.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, errors.Wrap(err, "parsing commits.json")
	}
	return commits, nil
}

// Write overwrites commits.json, commits it with a fixed message, and
// pushes. A push failure is a non-fatal StoreUnreachableError: the caller
// already has the data on disk locally.
func (s *Store) Write(ctx context.Context, commits []commit.Commit) error {
	if commits == nil {
		commits = []commit.Commit{}
	}

	if err := s.lock.Lock(); err == nil {
		defer s.lock.Unlock()
	}

	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding commits.json")
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.commitsPath(), data, 0644); err != nil {
		return errors.Wrap(err, "writing commits.json")
	}

	if _, err := s.repo.RunGit(ctx, "add", CommitsFilename); err != nil {
		return errors.Wrap(err, "staging commits.json")
	}
	if _, err := s.repo.RunGit(ctx, "commit", "--allow-empty-message", "-m", "Update "+CommitsFilename); err != nil {
		return errors.Wrap(err, "committing commits.json")
	}
	if _, err := s.repo.RunGit(ctx, "push", s.repo.RemoteLocation); err != nil {
		return &gitalong.StoreUnreachableError{Err: err}
	}
	return nil
}
