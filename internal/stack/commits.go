package stack

import (
	"context"
	"fmt"

	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
)

// PopulateCommits fills each entry's commit list with <remote>/<base>..<remote>/<head>.
// The first failure triggers one fetch and a retry; an entry that still fails keeps an
// empty list and produces a warning. It never aborts.
func (c *Client) PopulateCommits(ctx context.Context, chain *model.Chain) []string {
	var warnings []string
	fetched := false
	for i := range chain.Entries {
		entry := &chain.Entries[i]
		commits, err := c.entryCommits(ctx, entry)
		if err != nil && !fetched {
			fetched = true
			c.logger(ctx).V(1).Info("refetching remote refs", "entry", entry.Number, "error", err.Error())
			if fetchErr := c.git.Fetch(ctx); fetchErr != nil {
				c.logger(ctx).Info("fetch failed", "error", fetchErr.Error())
			}
			commits, err = c.entryCommits(ctx, entry)
		}
		if err != nil {
			warning := fmt.Sprintf("could not list commits of #%d (%s): %v", entry.Number, entry.Head, err)
			c.logger(ctx).Info("populate failed", "entry", entry.Number, "reason", warning)
			warnings = append(warnings, warning)
			entry.Commits = nil
			continue
		}
		entry.Commits = commits
	}
	return warnings
}

func (c *Client) entryCommits(ctx context.Context, entry *model.StackEntry) ([]git.Commit, error) {
	return c.git.GetCommits(ctx, c.git.RemoteRef(entry.Base), c.git.RemoteRef(entry.Head))
}

// FindUnstackedCommits returns the commits on HEAD that no chain entry carries yet.
//
// Candidate bases are <remote>/<trunk> followed by <remote>/<head> of every entry.
// The candidate leaving the fewest commits in candidate..HEAD wins, ties going to
// the earlier candidate. An empty result is accepted as is: HEAD sitting exactly on an
// entry's head means there is nothing new. Without any usable candidate it falls back
// to <trunk>..HEAD and finally to every commit reachable from HEAD.
func (c *Client) FindUnstackedCommits(ctx context.Context, chain *model.Chain) ([]git.Commit, error) {
	candidates := make([]string, 0, len(chain.Entries)+1)
	candidates = append(candidates, c.git.RemoteRef(c.opts.Trunk))
	for _, entry := range chain.Entries {
		candidates = append(candidates, c.git.RemoteRef(entry.Head))
	}

	var best []git.Commit
	found := false
	for _, candidate := range candidates {
		if _, err := c.git.GetCommitHash(ctx, candidate); err != nil {
			continue
		}
		commits, err := c.git.GetCommits(ctx, candidate, "HEAD")
		if err != nil {
			c.logger(ctx).V(1).Info("skipping candidate", "candidate", candidate, "error", err.Error())
			continue
		}
		if !found || len(commits) < len(best) {
			best, found = commits, true
		}
		if len(best) == 0 {
			break
		}
	}
	if found {
		return best, nil
	}

	c.logger(ctx).V(1).Info("no upstream candidate available, falling back to local trunk")
	if commits, err := c.git.GetCommits(ctx, c.opts.Trunk, "HEAD"); err == nil {
		return commits, nil
	}
	commits, err := c.git.GetAllCommits(ctx, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("failed to list commits from HEAD: %w", err)
	}
	return commits, nil
}

// dedupeUnstacked drops every commit some entry already carries
func dedupeUnstacked(chain *model.Chain, unstacked []git.Commit) []git.Commit {
	attributed := chain.CommitSet()
	result := make([]git.Commit, 0, len(unstacked))
	for _, commit := range unstacked {
		if _, ok := attributed[commit.Hash]; ok {
			continue
		}
		result = append(result, commit)
	}
	return result
}
