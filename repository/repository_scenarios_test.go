package repository

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/douglaslassance/gitalong-go/commit"
	"github.com/douglaslassance/gitalong-go/config"
)

// runGit mirrors the real-subprocess test style golang-dep's own test
// suite uses for exercising git end to end, rather than mocking it.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=tester", "GIT_AUTHOR_EMAIL=tester@example.com",
		"GIT_COMMITTER_NAME=tester", "GIT_COMMITTER_EMAIL=tester@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// newManagedRepo sets up a bare "project" remote and a bare "store" remote,
// clones the project into a working tree, commits a file, and installs
// gitalong against the store remote via a fresh Registry.
func newManagedRepo(t *testing.T) (string, *Repository) {
	t.Helper()
	root := t.TempDir()

	bareProject := filepath.Join(root, "project.git")
	runGit(t, root, "init", "--bare", bareProject)

	bareStore := filepath.Join(root, "store.git")
	runGit(t, root, "init", "--bare", bareStore)

	work := filepath.Join(root, "work")
	runGit(t, root, "clone", bareProject, work)

	if err := os.WriteFile(filepath.Join(work, "README.md"), []byte("hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, work, "add", "README.md")
	runGit(t, work, "commit", "-m", "initial")
	runGit(t, work, "push", "origin", "HEAD")
	runGit(t, work, "fetch", "origin")

	cfg := &config.Configuration{
		StoreURL:          bareStore,
		TrackUncommitted:  true,
		TrackedExtensions: []string{".psd"},
		PullThreshold:     1,
	}

	registry := NewRegistry()
	repo, err := Setup(registry, work, cfg)
	if err != nil {
		t.Fatalf("setting up gitalong: %v", err)
	}
	return work, repo
}

func TestIsTrackedHonorsExtensionsAndIgnore(t *testing.T) {
	work, repo := newManagedRepo(t)
	ctx := context.Background()

	psd := filepath.Join(work, "texture.psd")
	if err := os.WriteFile(psd, []byte("fake binary payload"), 0644); err != nil {
		t.Fatal(err)
	}
	tracked, err := repo.IsTracked(ctx, psd)
	if err != nil {
		t.Fatalf("IsTracked: %v", err)
	}
	if !tracked {
		t.Errorf("expected .psd to be tracked by extension")
	}

	txt := filepath.Join(work, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	tracked, err = repo.IsTracked(ctx, txt)
	if err != nil {
		t.Fatalf("IsTracked: %v", err)
	}
	if tracked {
		t.Errorf("expected .txt to be untracked with no matching extension and track_binaries off")
	}

	if err := os.WriteFile(filepath.Join(work, ".gitignore"), []byte("ignored.psd\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ignored := filepath.Join(work, "ignored.psd")
	if err := os.WriteFile(ignored, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	tracked, err = repo.IsTracked(ctx, ignored)
	if err != nil {
		t.Fatalf("IsTracked: %v", err)
	}
	if tracked {
		t.Errorf("expected .gitignore'd file to be untracked regardless of extension")
	}
}

func TestUncommittedChangesCommitUnionsDiffAndClaims(t *testing.T) {
	work, repo := newManagedRepo(t)
	ctx := context.Background()

	psd := filepath.Join(work, "texture.psd")
	if err := os.WriteFile(psd, []byte("fake binary payload"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := repo.UncommittedChangesCommit(ctx, nil)
	if err != nil {
		t.Fatalf("UncommittedChangesCommit: %v", err)
	}
	if c.IsEmpty() {
		t.Fatal("expected a non-empty synthetic-uncommitted commit")
	}
	if !c.HasChange("texture.psd") {
		t.Errorf("expected changes to include texture.psd, got %v", c.Changes)
	}
	if c.Claimed {
		t.Errorf("a plain working-tree diff must not be marked Claimed")
	}
	if !c.IssuedBy(repo.Identity()) {
		t.Errorf("expected the record to carry this repository's identity")
	}
}

func TestUncommittedChangesCommitMarksClaims(t *testing.T) {
	work, repo := newManagedRepo(t)
	ctx := context.Background()

	other := filepath.Join(work, "model.psd")
	if err := os.WriteFile(other, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, work, "add", "model.psd")
	runGit(t, work, "commit", "-m", "add model")

	c, err := repo.UncommittedChangesCommit(ctx, []string{other})
	if err != nil {
		t.Fatalf("UncommittedChangesCommit: %v", err)
	}
	if c.IsEmpty() {
		t.Fatal("expected claims alone to produce a non-empty record")
	}
	if !c.Claimed {
		t.Errorf("a claim-contributed record must be marked Claimed")
	}
	if !c.HasChange("model.psd") {
		t.Errorf("expected claimed path among changes, got %v", c.Changes)
	}
}

func TestRecomputeTrackedCommitsPublishesLocalOnlyHistory(t *testing.T) {
	work, repo := newManagedRepo(t)
	ctx := context.Background()

	psd := filepath.Join(work, "texture.psd")
	if err := os.WriteFile(psd, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, work, "add", "texture.psd")
	runGit(t, work, "commit", "-m", "add texture")

	if err := repo.RecomputeTrackedCommits(ctx, nil); err != nil {
		t.Fatalf("RecomputeTrackedCommits: %v", err)
	}

	commits, err := repo.Store().Read(ctx)
	if err != nil {
		t.Fatalf("Store().Read: %v", err)
	}

	var found bool
	for _, c := range commits {
		if c.HasChange("texture.psd") {
			found = true
			if !c.IssuedBy(repo.Identity()) {
				t.Errorf("expected the published record to carry our identity")
			}
		}
	}
	if !found {
		t.Fatalf("expected a record for texture.psd among %d published commits", len(commits))
	}
}

// TestRecomputeTrackedCommitsKeepsOurZeroChangeRecords checks spec.md
// §4.4's filter: a real commit of ours that carries no changes (the shell
// left behind once its changes have been stripped elsewhere) survives a
// republish rather than getting silently dropped.
func TestRecomputeTrackedCommitsKeepsOurZeroChangeRecords(t *testing.T) {
	_, repo := newManagedRepo(t)
	ctx := context.Background()

	remote, err := repo.remoteURL(ctx)
	if err != nil {
		t.Fatalf("remoteURL: %v", err)
	}

	placeholder := commit.Commit{SHA: "deadbeef", Remote: remote}.WithContext(repo.Identity())
	if err := repo.Store().Write(ctx, []commit.Commit{placeholder}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	if err := repo.RecomputeTrackedCommits(ctx, nil); err != nil {
		t.Fatalf("RecomputeTrackedCommits: %v", err)
	}

	commits, err := repo.Store().Read(ctx)
	if err != nil {
		t.Fatalf("Store().Read: %v", err)
	}
	var kept bool
	for _, c := range commits {
		if c.SHA == "deadbeef" {
			kept = true
		}
	}
	if !kept {
		t.Errorf("expected our zero-change record to survive republish")
	}
}

// TestRecomputeTrackedCommitsDropsOthersSyntheticRecords checks the other
// side of the same filter: someone else's synthetic-uncommitted record
// (SHA == "") for our remote is replaced, since only real commits or our
// own records survive a republish.
func TestRecomputeTrackedCommitsDropsOthersSyntheticRecords(t *testing.T) {
	_, repo := newManagedRepo(t)
	ctx := context.Background()

	remote, err := repo.remoteURL(ctx)
	if err != nil {
		t.Fatalf("remoteURL: %v", err)
	}

	theirs := commit.Commit{Remote: remote, Changes: []string{"elsewhere.psd"}, Host: "other-host", User: "other-user", Clone: "/elsewhere"}
	if err := repo.Store().Write(ctx, []commit.Commit{theirs}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	if err := repo.RecomputeTrackedCommits(ctx, nil); err != nil {
		t.Fatalf("RecomputeTrackedCommits: %v", err)
	}

	commits, err := repo.Store().Read(ctx)
	if err != nil {
		t.Fatalf("Store().Read: %v", err)
	}
	for _, c := range commits {
		if c.HasChange("elsewhere.psd") {
			t.Errorf("expected someone else's stale synthetic-uncommitted record to be dropped on our republish")
		}
	}
}
