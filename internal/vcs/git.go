// Package vcs is a narrow, typed wrapper over the git binary: the single
// source of VCS truth the rest of gitalong is built on. Every operation is
// a function of (working directory, arguments) returning parsed stdout, or
// failing with a *gitalong.VCSError.
//
// original implementation of Get/Update comes from
// https://github.com/Masterminds/vcs
package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	mvcs "github.com/Masterminds/vcs"
	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
)

// Repo wraps a git working tree, adding the gitalong-specific queries on
// top of Masterminds/vcs's clone/pull primitives.
type Repo struct {
	*mvcs.GitRepo
}

// Open wraps an existing or not-yet-cloned git working tree at dir, whose
// remote (when known) is remote. remote may be empty for a tree that is
// already checked out and configured.
func Open(remote, dir string) (*Repo, error) {
	g, err := mvcs.NewGitRepo(remote, dir)
	if err != nil {
		return nil, errors.Wrap(err, "opening git working tree")
	}
	return &Repo{GitRepo: g}, nil
}

// Get clones the repository, creating parent directories as needed. This
// mirrors Masterminds/vcs's GitRepo.Get, working around a handful of
// localized "could not create work tree dir" messages that the OS/Git
// combination can emit before the parent exists.
func (r *Repo) Get() error {
	out, err := r.runHere("clone", "--recursive", r.Remote(), r.LocalPath())
	if err != nil && r.isUnableToCreateDir(err) {
		basePath := filepath.Dir(filepath.FromSlash(r.LocalPath()))
		if _, statErr := os.Stat(basePath); os.IsNotExist(statErr) {
			if mkErr := os.MkdirAll(basePath, 0755); mkErr != nil {
				return errors.Wrap(mkErr, "creating parent directory for clone")
			}
			out, err = r.runHere("clone", r.Remote(), r.LocalPath())
		}
	}
	if err != nil {
		return &gitalong.VCSError{Args: []string{"clone", r.Remote()}, ExitCode: exitCode(err), Stderr: out}
	}
	return nil
}

func (r *Repo) isUnableToCreateDir(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "could not create work tree dir")
}

func (r *Repo) runHere(args ...string) (string, error) {
	return runGit(context.Background(), "", args...)
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	return runGit(ctx, r.LocalPath(), args...)
}

// RunGit runs an arbitrary git subcommand in the working tree, for
// operations this adapter does not expose a dedicated method for (such as
// staging and committing the store's commits.json).
func (r *Repo) RunGit(ctx context.Context, args ...string) (string, error) {
	return r.run(ctx, args...)
}

// Fetch runs `git fetch [--prune] <remote>`.
func (r *Repo) Fetch(ctx context.Context, prune bool) error {
	args := []string{"fetch"}
	if prune {
		args = append(args, "--prune")
	}
	args = append(args, r.RemoteLocation)
	_, err := r.run(ctx, args...)
	return err
}

// Pull runs a fast-forward/rebase pull with autostash, as recommended for
// clones that might have local, uncommitted permission-flip noise.
func (r *Repo) Pull(ctx context.Context) error {
	_, err := r.run(ctx, "pull", "--ff", "--rebase", "--autostash", "--quiet")
	return err
}

// Log returns the SHAs of commits touching path across all local and
// remote branches, newest first.
func (r *Repo) Log(ctx context.Context, path string) ([]string, error) {
	out, err := r.run(ctx, "log", "--all", "--remotes", "--date-order", "--pretty=%H", "--", path)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ShowNameOnly lists the files touched by sha, for a first-parentless
// (root) commit.
func (r *Repo) ShowNameOnly(ctx context.Context, sha string) ([]string, error) {
	out, err := r.run(ctx, "show", "--pretty=format:", "--name-only", sha)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DiffTreeNameOnly lists the files touched by sha, for a commit with
// parents.
func (r *Repo) DiffTreeNameOnly(ctx context.Context, sha string) ([]string, error) {
	out, err := r.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", sha)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// HasParents reports whether sha has at least one parent commit.
func (r *Repo) HasParents(ctx context.Context, sha string) (bool, error) {
	out, err := r.run(ctx, "log", "--pretty=%P", "-n", "1", sha)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Parents returns the parent SHAs of sha, in order.
func (r *Repo) Parents(ctx context.Context, sha string) ([]string, error) {
	out, err := r.run(ctx, "log", "--pretty=%P", "-n", "1", sha)
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Fields(out), nil
}

// Branches lists local branch names.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// RevParse resolves rev (a branch name, tag, or other ref) to a SHA.
func (r *Repo) RevParse(ctx context.Context, rev string) (string, error) {
	out, err := r.run(ctx, "rev-parse", rev)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// commitFieldSep is a byte unlikely to appear in an author name, used to
// split the %cI/%an pretty-format fields unambiguously.
const commitFieldSep = "\x1f"

// CommitInfo returns sha's committer date (RFC3339/ISO-8601) and author name.
func (r *Repo) CommitInfo(ctx context.Context, sha string) (date string, author string, err error) {
	out, err := r.run(ctx, "log", "-1", "--pretty=%cI"+commitFieldSep+"%an", sha)
	if err != nil {
		return "", "", err
	}
	parts := strings.SplitN(strings.TrimSpace(out), commitFieldSep, 2)
	if len(parts) != 2 {
		return "", "", errors.Errorf("unexpected git log output for %s: %q", sha, out)
	}
	return parts[0], parts[1], nil
}

// BranchContains returns the branch names (local, or remote when remote is
// true) that contain sha. Remote branch refs are reduced to their trailing
// segment, so "origin/foo" and "upstream/foo" both collapse to "foo".
func (r *Repo) BranchContains(ctx context.Context, sha string, remote bool) ([]string, error) {
	args := []string{"branch"}
	if remote {
		args = append(args, "--remote")
	}
	args = append(args, "--contains", sha)
	out, err := r.run(ctx, args...)
	if err != nil {
		// Treated as "not found": a missing SHA must not crash callers that
		// use this for post-push cleanup detection.
		return nil, nil
	}
	seen := map[string]bool{}
	var names []string
	for _, line := range splitLines(out) {
		line = strings.ReplaceAll(line, "*", "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if remote {
			parts := strings.SplitN(line, "/", 2)
			line = parts[len(parts)-1]
		}
		if !seen[line] {
			seen[line] = true
			names = append(names, line)
		}
	}
	return names, nil
}

// UncommittedPaths returns the union of untracked, unstaged and staged
// working-tree paths.
func (r *Repo) UncommittedPaths(ctx context.Context) ([]string, error) {
	untracked, err := r.run(ctx, "ls-files", "--exclude-standard", "--others")
	if err != nil {
		return nil, err
	}
	unstaged, err := r.run(ctx, "diff", "--name-only")
	if err != nil {
		return nil, err
	}
	staged, err := r.run(ctx, "diff", "--staged", "--name-only")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var paths []string
	for _, group := range [][]string{splitLines(untracked), splitLines(unstaged), splitLines(staged)} {
		for _, p := range group {
			if p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

// TrackedPaths lists every path tracked at HEAD.
func (r *Repo) TrackedPaths(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "ls-tree", "-r", "--name-only", "--full-tree", "HEAD")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CheckIgnore reports whether path is ignored by .gitignore.
func (r *Repo) CheckIgnore(ctx context.Context, path string) (bool, error) {
	_, err := r.run(ctx, "check-ignore", path)
	if err == nil {
		return true, nil
	}
	if vcsErr, ok := err.(*gitalong.VCSError); ok && vcsErr.ExitCode == 1 {
		return false, nil
	}
	return false, err
}

// ActiveBranch returns the name of the currently checked-out branch.
func (r *Repo) ActiveBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the URL configured for the given remote name.
func (r *Repo) RemoteURL(ctx context.Context, name string) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetConfigValue sets a git config key to value in the repository's local
// config.
func (r *Repo) SetConfigValue(ctx context.Context, key, value string) error {
	_, err := r.run(ctx, "config", key, value)
	return err
}

// GitDir returns the repository's .git directory.
func (r *Repo) GitDir() string {
	return filepath.Join(r.LocalPath(), ".git")
}

// FetchHeadPath returns the path to FETCH_HEAD, whose mtime is used as the
// VCS-store freshness signal.
func (r *Repo) FetchHeadPath() string {
	return filepath.Join(r.GitDir(), "FETCH_HEAD")
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Trim(l, "\"")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func exitCode(err error) int {
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	mc := newMonitoredCmd(ctx, cmd)
	err := mc.run()
	stdout := mc.stdout.String()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return stdout, &gitalong.VCSError{Args: args, ExitCode: exitCode(err), Stderr: mc.stderr.String()}
		}
		return stdout, err
	}
	return stdout, nil
}
