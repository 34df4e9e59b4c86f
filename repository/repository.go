// Package repository ties the VCS adapter, configuration, and store
// backend together into the per-working-tree object the batch engine
// operates on: it resolves a path to its managed repository, builds the
// synthetic uncommitted-changes commit, walks local-only history, and
// republishes the store's tracked-commit list.
package repository

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
	"github.com/douglaslassance/gitalong-go/commit"
	"github.com/douglaslassance/gitalong-go/config"
	"github.com/douglaslassance/gitalong-go/internal/vcs"
	"github.com/douglaslassance/gitalong-go/store"
	"github.com/douglaslassance/gitalong-go/store/httpstore"
	"github.com/douglaslassance/gitalong-go/store/vcsstore"
)

// Repository is a single managed working tree: its configuration, its VCS
// handle, its store handle, and the context identity stamped on records it
// publishes.
type Repository struct {
	root     string
	cfg      *config.Configuration
	vcs      *vcs.Repo
	store    store.Store
	identity gitalong.Identity
}

// Root returns the managed working-tree's absolute root path.
func (r *Repository) Root() string { return r.root }

// Config returns the repository's loaded, immutable configuration.
func (r *Repository) Config() *config.Configuration { return r.cfg }

// Identity returns the context identity stamped on records this repository
// publishes.
func (r *Repository) Identity() gitalong.Identity { return r.identity }

// Store returns the repository's store handle.
func (r *Repository) Store() store.Store { return r.store }

// VCS returns the repository's VCS adapter, for callers (the batch engine)
// that need direct access to log/diff/branch queries.
func (r *Repository) VCS() *vcs.Repo { return r.vcs }

// contextIdentity builds the ContextIdentity for the working tree at root:
// hostname, current user, and the symlink-resolved real path of root.
func contextIdentity(root string) (gitalong.Identity, error) {
	host, err := os.Hostname()
	if err != nil {
		return gitalong.Identity{}, errors.Wrap(err, "resolving hostname")
	}
	u, err := user.Current()
	if err != nil {
		return gitalong.Identity{}, errors.Wrap(err, "resolving current user")
	}
	real, err := filepath.EvalSymlinks(root)
	if err != nil {
		real = root
	}
	return gitalong.Identity{Host: host, User: u.Username, ClonePath: real}, nil
}

// newRepository builds a Repository from an already-loaded configuration at
// root.
func newRepository(root string, cfg *config.Configuration) (*Repository, error) {
	repo, err := vcs.Open("", root)
	if err != nil {
		return nil, errors.Wrap(err, "opening managed working tree")
	}

	id, err := contextIdentity(root)
	if err != nil {
		return nil, err
	}

	pullThreshold := time.Duration(cfg.PullThreshold) * time.Second
	var backend store.Store
	switch store.SelectKind(cfg.StoreURL) {
	case store.KindHTTP:
		backend = httpstore.Open(root, cfg.StoreURL, cfg.StoreHeaders, pullThreshold)
	default:
		backend, err = vcsstore.Open(root, cfg.StoreURL, pullThreshold)
		if err != nil {
			return nil, err
		}
	}

	if cfg.ModifyPermissions {
		if err := repo.SetConfigValue(context.Background(), "core.fileMode", "false"); err != nil {
			return nil, errors.Wrap(err, "forcing core.fileMode off")
		}
	}

	return &Repository{root: root, cfg: cfg, vcs: repo, store: backend, identity: id}, nil
}

// Registry caches Repository instances by working-tree root, replacing the
// process-global singleton map of the original implementation with an
// explicit, constructor-injected store: callers that want cached instances
// pass the same *Registry; callers that don't can simply use FromPath on a
// fresh Registry each time.
type Registry struct {
	mu     sync.Mutex
	byRoot map[string]*Repository
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byRoot: map[string]*Repository{}}
}

// FromPath resolves path to its managed working tree by ascending until a
// VCS root is found, then loads its configuration. It returns
// gitalong.ErrRepositoryNotFound if path is not under a VCS working tree,
// or gitalong.ErrRepositoryNotSetup/gitalong.ErrRepositoryInvalidConfig if
// the working tree has no (or an invalid) .gitalong.json. A Registry reuses
// a previously built Repository for the same root.
func (reg *Registry) FromPath(path string) (*Repository, error) {
	root, err := vcs.FindRoot(path)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.byRoot[root]; ok {
		return r, nil
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	r, err := newRepository(root, cfg)
	if err != nil {
		return nil, err
	}
	reg.byRoot[root] = r
	return r, nil
}

// Setup writes cfg at the working-tree root containing path and returns the
// resulting Repository, registering it in reg. Setup is idempotent: calling
// it again with the same configuration overwrites the document with
// byte-identical content.
func Setup(reg *Registry, path string, cfg *config.Configuration) (*Repository, error) {
	root, err := vcs.FindRoot(path)
	if err != nil {
		return nil, err
	}
	if cfg.PullThreshold <= 0 {
		cfg.PullThreshold = config.DefaultPullThreshold
	}
	if err := config.Save(root, cfg); err != nil {
		return nil, errors.Wrap(err, "writing repository configuration")
	}

	r, err := newRepository(root, cfg)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		reg.mu.Lock()
		reg.byRoot[root] = r
		reg.mu.Unlock()
	}
	return r, nil
}

// RelativePath normalizes p to a forward-slash path relative to the
// working-tree root, when p names an existing filesystem entry; otherwise p
// is assumed already relative and is merely slash-normalized.
func (r *Repository) RelativePath(p string) string {
	if _, err := os.Stat(p); err == nil {
		if rel, err := filepath.Rel(r.root, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

// AbsolutePath resolves p, which may be relative to the working-tree root
// or already absolute, to an absolute path.
func (r *Repository) AbsolutePath(p string) string {
	if filepath.IsAbs(p) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(r.root, p)
}

// IsTracked reports whether path is a candidate for commit-spread tracking:
// it is not VCS-ignored, and either its extension is configured as tracked
// or track_binaries is set and the file is detected binary.
func (r *Repository) IsTracked(ctx context.Context, path string) (bool, error) {
	rel := r.RelativePath(path)
	ignored, err := r.vcs.CheckIgnore(ctx, rel)
	if err != nil {
		return false, err
	}
	if ignored {
		return false, nil
	}

	ext := filepath.Ext(rel)
	for _, tracked := range r.cfg.TrackedExtensions {
		if strings.EqualFold(tracked, ext) {
			return true, nil
		}
	}

	if r.cfg.TrackBinaries {
		abs := r.AbsolutePath(path)
		if binary, err := vcs.IsBinary(abs); err == nil && binary {
			return true, nil
		}
	}
	return false, nil
}

// remoteURL returns the URL of the working tree's single tracked remote.
func (r *Repository) remoteURL(ctx context.Context) (string, error) {
	name := r.vcs.RemoteLocation
	if name == "" {
		name = "origin"
	}
	return r.vcs.RemoteURL(ctx, name)
}

// UncommittedChangesCommit constructs the synthetic-uncommitted record for
// this repository: the union of the working-tree diff and the paths in
// claims, stamped with the repository's identity and the current time. It
// returns the Empty commit when both are empty. claims contributing changes
// sets Commit.Claimed, distinguishing an explicit claim call from a plain
// diff-derived record.
func (r *Repository) UncommittedChangesCommit(ctx context.Context, claims []string) (commit.Commit, error) {
	diffPaths, err := r.vcs.UncommittedPaths(ctx)
	if err != nil {
		return commit.Empty, err
	}

	seen := map[string]bool{}
	var changes []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		changes = append(changes, p)
	}
	for _, p := range diffPaths {
		add(filepath.ToSlash(p))
	}
	claimed := false
	for _, c := range claims {
		abs := r.AbsolutePath(c)
		if _, err := os.Stat(abs); err == nil {
			add(r.RelativePath(abs))
			claimed = true
		}
	}

	if len(changes) == 0 {
		return commit.Empty, nil
	}

	remote, err := r.remoteURL(ctx)
	if err != nil {
		return commit.Empty, err
	}

	c := commit.Commit{
		Remote:  remote,
		Changes: changes,
		Date:    commit.Now(),
		Claimed: claimed,
	}
	return c.WithContext(r.identity), nil
}

// localOnlyCommit builds the tracked-commit record for a single real
// commit: changes, local-branch membership, context identity.
func (r *Repository) localOnlyCommit(ctx context.Context, sha, remote string) (commit.Commit, error) {
	hasParents, err := r.vcs.HasParents(ctx, sha)
	if err != nil {
		return commit.Empty, err
	}
	var changes []string
	if hasParents {
		changes, err = r.vcs.DiffTreeNameOnly(ctx, sha)
	} else {
		changes, err = r.vcs.ShowNameOnly(ctx, sha)
	}
	if err != nil {
		return commit.Empty, err
	}
	var expanded []string
	for _, c := range changes {
		expanded = append(expanded, vcs.ExpandRename(filepath.ToSlash(c))...)
	}

	date, author, err := r.vcs.CommitInfo(ctx, sha)
	if err != nil {
		return commit.Empty, err
	}
	committed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return commit.Empty, errors.Wrapf(err, "parsing commit date of %s", sha)
	}
	local, err := r.vcs.BranchContains(ctx, sha, false)
	if err != nil {
		return commit.Empty, err
	}

	c := commit.Commit{
		SHA:     sha,
		Remote:  remote,
		Changes: expanded,
		Date:    commit.NewTimestamp(committed),
		Author:  author,
		Branches: &commit.Branches{
			Local: local,
		},
	}
	return c.WithContext(r.identity), nil
}

// accumulateLocalOnly performs the DFS from a branch head described by
// spec.md §4.4: a commit already visible on any remote branch stops the
// walk (its ancestors are assumed reachable too, matching the source's own
// pruning optimization); otherwise the commit is recorded and its parents
// are visited.
func (r *Repository) accumulateLocalOnly(ctx context.Context, sha, remote string, seen map[string]bool, out *[]commit.Commit) error {
	if seen[sha] {
		return nil
	}
	seen[sha] = true

	onRemote, err := r.vcs.BranchContains(ctx, sha, true)
	if err != nil {
		return err
	}
	if len(onRemote) > 0 {
		return nil
	}

	c, err := r.localOnlyCommit(ctx, sha, remote)
	if err != nil {
		return err
	}
	*out = append(*out, c)

	parents, err := r.vcs.Parents(ctx, sha)
	if err != nil {
		return err
	}
	for _, parent := range parents {
		if err := r.accumulateLocalOnly(ctx, parent, remote, seen, out); err != nil {
			return err
		}
	}
	return nil
}

// LocalOnlyCommits walks every local branch, depth-first from its tip,
// collecting commits not reachable from any remote branch, deduplicated by
// SHA. Branches are visited in name order for a deterministic walk (the
// source leaves cross-branch ordering implementation-defined when
// histories share ancestors). When track_uncommitted is set, the
// uncommitted-changes commit (amended with claims) is prepended. The
// result is newest-first.
func (r *Repository) LocalOnlyCommits(ctx context.Context, claims []string) ([]commit.Commit, error) {
	remote, err := r.remoteURL(ctx)
	if err != nil {
		return nil, err
	}

	branches, err := r.vcs.Branches(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(branches)

	seen := map[string]bool{}
	var commits []commit.Commit
	for _, branch := range branches {
		sha, err := r.vcs.RevParse(ctx, branch)
		if err != nil {
			continue
		}
		if err := r.accumulateLocalOnly(ctx, sha, remote, seen, &commits); err != nil {
			return nil, err
		}
	}

	if r.cfg.TrackUncommitted {
		uc, err := r.UncommittedChangesCommit(ctx, claims)
		if err != nil {
			return nil, err
		}
		if !uc.IsEmpty() {
			commits = append([]commit.Commit{uc}, commits...)
		}
	}

	commit.Sort(commits)
	return commits, nil
}

// RecomputeTrackedCommits filters the store per spec.md §4.4: keep records
// from a different remote, real commits we did not issue, or our own
// records that carry no changes; drop everything else, then append our
// freshly computed local-only commits (claims included) and publish.
func (r *Repository) RecomputeTrackedCommits(ctx context.Context, claims []string) error {
	existing, err := r.store.Read(ctx)
	if err != nil {
		return err
	}
	remote, err := r.remoteURL(ctx)
	if err != nil {
		return err
	}

	var kept []commit.Commit
	for _, c := range existing {
		if c.Remote != remote {
			kept = append(kept, c)
			continue
		}
		if c.SHA != "" && !c.IssuedBy(r.identity) {
			kept = append(kept, c)
			continue
		}
		if c.IssuedBy(r.identity) && len(c.Changes) == 0 {
			kept = append(kept, c)
			continue
		}
	}

	local, err := r.LocalOnlyCommits(ctx, claims)
	if err != nil {
		return err
	}
	kept = append(kept, local...)

	return r.store.Write(ctx, kept)
}

// TrackedPaths returns the absolute paths of every file tracked at HEAD,
// for callers (the batch engine) that need to refresh permissions across
// the whole working tree after a republish.
func (r *Repository) TrackedPaths(ctx context.Context) ([]string, error) {
	rels, err := r.vcs.TrackedPaths(ctx)
	if err != nil {
		return nil, err
	}
	abs := make([]string, len(rels))
	for i, rel := range rels {
		abs[i] = r.AbsolutePath(rel)
	}
	return abs, nil
}
