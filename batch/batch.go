// Package batch implements the concurrent fan-out engine: given a list of
// absolute paths, compute each one's last relevant commit, claim or release
// it, or refresh its filesystem permissions. Grounded on the teacher's
// goroutine-per-request concurrency style (gps/source.go's sourceCoordinator
// spins up one goroutine per distinct unit of work rather than pooling
// workers), generalized here to one goroutine per path with results written
// to a pre-sized, positionally-indexed slice — no shared mutable state, no
// worker pool, matching the cost profile of fork/exec-bound VCS queries.
package batch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/douglaslassance/gitalong-go/cache"
	"github.com/douglaslassance/gitalong-go/cache/boltcache"
	"github.com/douglaslassance/gitalong-go/commit"
	"github.com/douglaslassance/gitalong-go/permissions"
	"github.com/douglaslassance/gitalong-go/repository"
	"github.com/douglaslassance/gitalong-go/spread"
)

// Engine runs the batch operations against the repositories reachable
// through registry.
type Engine struct {
	registry *repository.Registry
	changes  *boltcache.Cache
}

// NewEngine returns an Engine backed by registry. Repositories are resolved
// (and cached) through it, so repeated batch calls over the same working
// trees reuse their store and VCS handles.
func NewEngine(registry *repository.Registry) *Engine {
	return &Engine{registry: registry}
}

// NewEngineWithCache is NewEngine plus an on-disk cache of per-SHA change
// lists: a commit's changes never mutate once its SHA is known, so repeat
// batch calls across process runs can skip the diff-tree/show round trip
// entirely for commits already seen.
func NewEngineWithCache(registry *repository.Registry, changes *boltcache.Cache) *Engine {
	return &Engine{registry: registry, changes: changes}
}

// fanOut runs fn(i) for every i in [0, n) on its own goroutine and waits
// for all of them to finish. fn must only write to slot i of whatever
// result slice the caller pre-sized; there is no other shared state.
func fanOut(n int, fn func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// candidate resolves path to its managed repository, or nil if it is not
// under one. Whether path is tracked is not checked here.
func (e *Engine) candidate(path string) (*repository.Repository, bool) {
	repo, err := e.registry.FromPath(path)
	if err != nil {
		return nil, false
	}
	return repo, true
}

// storeCandidates returns the store records that name path among their
// changes, restricted to our remote, honoring track_uncommitted.
func storeCandidates(ctx context.Context, repo *repository.Repository, path string) ([]commit.Commit, error) {
	records, err := repo.Store().Read(ctx)
	if err != nil {
		return nil, err
	}
	remote, err := repo.VCS().RemoteURL(ctx, repoRemoteName(repo))
	if err != nil {
		return nil, err
	}

	rel := repo.RelativePath(path)
	var candidates []commit.Commit
	for _, rec := range records {
		if rec.Remote != remote {
			continue
		}
		if rec.SHA == "" && !repo.Config().TrackUncommitted {
			continue
		}
		if rec.HasChange(rel) {
			candidates = append(candidates, rec)
		}
	}
	return candidates, nil
}

func repoRemoteName(repo *repository.Repository) string {
	if name := repo.VCS().RemoteLocation; name != "" {
		return name
	}
	return "origin"
}

// resolveLastCommit implements the per-path resolution steps of
// last_commits (spec.md §4.5, steps 1-4): store lookup with post-push
// cleanup, falling back to a `log --all --remotes` query when the store
// has nothing relevant. The opportunistic fetch that precedes that
// fallback only fires when the working tree has not already been pulled
// in this call (pulledRepos) AND it is outside its own pull_threshold
// freshness window (cache.Within on FETCH_HEAD's mtime, the same signal
// store/vcsstore uses for the same throttle).
func (e *Engine) resolveLastCommit(ctx context.Context, path string, prune bool, pulledRepos map[string]bool, mu *sync.Mutex) commit.Commit {
	repo, ok := e.candidate(path)
	if !ok {
		return commit.Empty
	}
	tracked, err := repo.IsTracked(ctx, path)
	if err != nil || !tracked {
		return commit.Empty
	}

	candidates, err := storeCandidates(ctx, repo, path)
	if err != nil {
		return commit.Empty
	}
	if len(candidates) > 0 {
		commit.Sort(candidates)
		last := candidates[0]

		if last.SHA != "" {
			onRemote, err := repo.VCS().BranchContains(ctx, last.SHA, true)
			if err == nil && len(onRemote) > 0 {
				mu.Lock()
				_ = removeRecord(ctx, repo, last)
				mu.Unlock()
				last.Host, last.User, last.Clone = "", "", ""
			}
		}
		return last
	}

	mu.Lock()
	root := repo.Root()
	pullThreshold := time.Duration(repo.Config().PullThreshold) * time.Second
	shouldFetch := !pulledRepos[root] && !cache.Within(repo.VCS().FetchHeadPath(), pullThreshold)
	if shouldFetch {
		pulledRepos[root] = true
	}
	mu.Unlock()
	if shouldFetch {
		_ = repo.VCS().Fetch(ctx, prune)
	}

	shas, err := repo.VCS().Log(ctx, repo.RelativePath(path))
	if err != nil || len(shas) == 0 {
		return commit.Empty
	}
	remote, err := repo.VCS().RemoteURL(ctx, repoRemoteName(repo))
	if err != nil {
		return commit.Empty
	}
	return commit.Commit{SHA: shas[0], Remote: remote}
}

// removeRecord drops from repo's store every record with rec's SHA and
// remote that this clone issued, and republishes; records with that SHA
// issued by other clones are kept. Used by the post-push stale-record
// cleanup in resolveLastCommit.
func removeRecord(ctx context.Context, repo *repository.Repository, rec commit.Commit) error {
	records, err := repo.Store().Read(ctx)
	if err != nil {
		return err
	}
	kept := records[:0:0]
	for _, r := range records {
		if r.SHA == rec.SHA && r.Remote == rec.Remote && r.IssuedBy(repo.Identity()) {
			continue
		}
		kept = append(kept, r)
	}
	return repo.Store().Write(ctx, kept)
}

// LastCommits resolves, for each of paths, the commit that last touched it
// anywhere in the distributed topology known to the store plus the
// repository's own remote history. The result is in one-to-one positional
// correspondence with paths.
func (e *Engine) LastCommits(ctx context.Context, paths []string, prune bool) []commit.Commit {
	results := make([]commit.Commit, len(paths))
	pulledRepos := map[string]bool{}
	var mu sync.Mutex

	fanOut(len(paths), func(i int) {
		results[i] = e.resolveLastCommit(ctx, paths[i], prune, pulledRepos, &mu)
	})

	needsChanges := make([]bool, len(paths))
	for i, c := range results {
		needsChanges[i] = c.SHA != "" && len(c.Changes) == 0
	}
	fanOut(len(paths), func(i int) {
		if !needsChanges[i] {
			return
		}
		repo, ok := e.candidate(paths[i])
		if !ok {
			return
		}

		if e.changes != nil {
			if cached, found := e.changes.Changes(results[i].Remote, results[i].SHA); found {
				results[i].Changes = cached
				return
			}
		}

		hasParents, err := repo.VCS().HasParents(ctx, results[i].SHA)
		if err != nil {
			return
		}
		var changes []string
		if hasParents {
			changes, err = repo.VCS().DiffTreeNameOnly(ctx, results[i].SHA)
		} else {
			changes, err = repo.VCS().ShowNameOnly(ctx, results[i].SHA)
		}
		if err != nil {
			return
		}
		var expanded []string
		for _, c := range changes {
			expanded = append(expanded, filepath.ToSlash(c))
		}
		results[i].Changes = expanded

		if e.changes != nil {
			_ = e.changes.PutChanges(results[i].Remote, results[i].SHA, expanded)
		}
	})

	fanOut(len(paths), func(i int) {
		if results[i].SHA == "" {
			return
		}
		repo, ok := e.candidate(paths[i])
		if !ok {
			return
		}
		local, err := repo.VCS().BranchContains(ctx, results[i].SHA, false)
		if err != nil {
			return
		}
		if results[i].Branches == nil {
			results[i].Branches = &commit.Branches{}
		}
		results[i].Branches.Local = local
	})

	fanOut(len(paths), func(i int) {
		if results[i].SHA == "" {
			return
		}
		repo, ok := e.candidate(paths[i])
		if !ok {
			return
		}
		remote, err := repo.VCS().BranchContains(ctx, results[i].SHA, true)
		if err != nil {
			return
		}
		if results[i].Branches == nil {
			results[i].Branches = &commit.Branches{}
		}
		results[i].Branches.Remote = remote
	})

	return results
}

// claimableSpread is the exact set of spread bits under which nobody else
// has any record of a change: safe to claim. It requires s to be a subset
// of spread.Claimable; a spread that merely overlaps it (for example
// MineActiveBranch|TheirUncommitted) is not claimable.
func claimableSpread(s spread.Spread) bool {
	return s.SubsetOf(spread.Claimable)
}

// Claim attempts to claim each of paths: the returned slice holds, at each
// position, the blocking commit (Empty when the claim succeeds). Successful
// claims are grouped by repository and republished via
// Repository.RecomputeTrackedCommits; when modify_permissions is set, Claim
// then refreshes the write bit of every file tracked at HEAD in that
// repository.
func (e *Engine) Claim(ctx context.Context, paths []string, prune bool) []commit.Commit {
	lastCommits := e.LastCommits(ctx, paths, prune)
	blockers := make([]commit.Commit, len(paths))

	claimsByRoot := map[string][]string{}
	reposByRoot := map[string]*repository.Repository{}
	for i, path := range paths {
		repo, ok := e.candidate(path)
		if !ok {
			blockers[i] = commit.Empty
			continue
		}
		activeBranch, err := repo.VCS().ActiveBranch(ctx)
		if err != nil {
			blockers[i] = lastCommits[i]
			continue
		}
		s := lastCommits[i].Spread(activeBranch, repo.Identity())
		if claimableSpread(s) {
			blockers[i] = commit.Empty
			claimsByRoot[repo.Root()] = append(claimsByRoot[repo.Root()], path)
			reposByRoot[repo.Root()] = repo
		} else {
			blockers[i] = lastCommits[i]
		}
	}

	for root, claims := range claimsByRoot {
		repo := reposByRoot[root]
		if err := repo.RecomputeTrackedCommits(ctx, claims); err != nil {
			continue
		}
		if repo.Config().ModifyPermissions {
			e.refreshPermissions(ctx, repo)
		}
	}

	return blockers
}

// Release is Claim's mirror: for each repository reached by paths it
// republishes our records with no claims at all, so every claim this clone
// published for that repository is withdrawn, not only those of paths.
// Paths with uncommitted working-tree changes stay in the synthetic
// uncommitted record. Under modify_permissions, the write bit of every file
// tracked at HEAD is then recomputed from its spread.
func (e *Engine) Release(ctx context.Context, paths []string) []commit.Commit {
	lastCommits := e.LastCommits(ctx, paths, true)
	blockers := make([]commit.Commit, len(paths))

	reposByRoot := map[string]*repository.Repository{}
	for i, path := range paths {
		repo, ok := e.candidate(path)
		if !ok {
			blockers[i] = commit.Empty
			continue
		}
		blockers[i] = lastCommits[i]
		reposByRoot[repo.Root()] = repo
	}

	for _, repo := range reposByRoot {
		if err := repo.RecomputeTrackedCommits(ctx, nil); err != nil {
			continue
		}
		if repo.Config().ModifyPermissions {
			e.refreshPermissions(ctx, repo)
		}
	}

	return blockers
}

// writableSpread reports whether spread s means "safe to edit": ours and
// in sync, per spec.md §4.5's update_permissions rule. This is not a subset
// test against spread.Writable: it also admits
// MINE_ACTIVE_BRANCH+REMOTE_MATCHING_BRANCH, and it rejects the empty spread
// and MINE_UNCOMMITTED+MINE_ACTIVE_BRANCH together. MINE_CLAIMED is cleared
// before the comparison: an explicit claim always sets it alongside
// MINE_UNCOMMITTED (commit.Commit.Spread never sets it alone), and it
// marks how the record was produced, not a different ownership fact.
func writableSpread(s spread.Spread) bool {
	bare := s.Clear(spread.MineClaimed)
	if bare == spread.MineUncommitted || bare == spread.MineActiveBranch {
		return true
	}
	return s.Has(spread.MineActiveBranch) && s.Has(spread.RemoteMatchingBranch)
}

// UpdatePermissions recomputes the write bit for every path, concurrently
// and unordered: writable iff its spread means "ours and in sync" per
// writableSpread, read-only otherwise. Missing files are skipped.
func (e *Engine) UpdatePermissions(ctx context.Context, paths []string) {
	lastCommits := e.LastCommits(ctx, paths, true)
	fanOut(len(paths), func(i int) {
		repo, ok := e.candidate(paths[i])
		if !ok {
			return
		}
		activeBranch, err := repo.VCS().ActiveBranch(ctx)
		if err != nil {
			return
		}
		s := lastCommits[i].Spread(activeBranch, repo.Identity())
		_, _ = permissions.SetWritable(paths[i], writableSpread(s), true)
	})
}

// refreshPermissions flips every tracked file in repo's working tree to
// the write state its current spread implies, used after Claim/Release
// republish the store under modify_permissions.
func (e *Engine) refreshPermissions(ctx context.Context, repo *repository.Repository) {
	paths, err := repo.TrackedPaths(ctx)
	if err != nil {
		return
	}
	e.UpdatePermissions(ctx, paths)
}
