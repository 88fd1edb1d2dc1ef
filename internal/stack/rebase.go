package stack

import (
	"context"
	"fmt"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/state"
)

// RebaseResult describes the outcome of ManuallyRebase
type RebaseResult struct {
	// Rebased lists the branches rebased and force-pushed, bottom first
	Rebased []string
	// Retargeted is set when the first rebased entry was re-pointed to trunk
	Retargeted *BaseUpdate
}

// ManuallyRebase replays the entries stacked on a merged request onto upstream trunk,
// dropping the merged commits from their history. The first entry is rebased with
// `rebase --onto <remote>/<trunk> <merged head>`, every later one onto its rebased
// parent. Local branches behind upstream are reset to it first and a local branch with
// unpushed commits is refused. Rebased branches are force-pushed with lease and the
// first is re-pointed to trunk. A conflict aborts that rebase and stops the cascade; the starting branch is
// checked out again in every case.
func (c *Client) ManuallyRebase(ctx context.Context, mergedNumber int) (*RebaseResult, error) {
	ctx = c.withRun(ctx)
	log := c.logger(ctx)

	lock, err := c.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	merged, err := c.gh.GetPR(ctx, mergedNumber)
	if err != nil {
		return nil, err
	}
	if merged.State != gh.StateMerged {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("#%d is %s, not merged", mergedNumber, merged.State),
			Hint:   "only entries stacked on a merged request can be rebased",
		}
	}
	if err := c.requireCleanTree(ctx); err != nil {
		return nil, err
	}

	start, err := c.git.GetCurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.git.Fetch(ctx); err != nil {
		log.Info("could not fetch, using the last known remote state", "error", err.Error())
	}

	hint, err := c.store.Load()
	if err != nil {
		hint = &state.State{}
	}
	chain, err := c.DiscoverChain(ctx, hint)
	if err != nil {
		return nil, err
	}
	upstream := merged.HeadOID
	if upstream == "" {
		if upstream, err = c.git.GetCommitHash(ctx, c.git.RemoteRef(merged.Head)); err != nil {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("cannot tell which commits #%d merged", mergedNumber),
				Hint:   "fetch the merged branch or rebase by hand",
			}
		}
	}

	stacked := c.stackedOn(ctx, chain, merged.Head, upstream)
	if len(stacked) == 0 {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("no open entry is stacked on #%d (%s)", mergedNumber, merged.Head),
			Hint:   "run 'stackpr status' to see the stack",
		}
	}

	stale, err := c.staleLocalBranches(ctx, stacked)
	if err != nil {
		return nil, err
	}
	for _, branch := range stale {
		log.Info("resetting stale local branch to upstream", "branch", branch)
		if err := c.git.ResetBranch(ctx, branch, c.git.RemoteRef(branch)); err != nil {
			return nil, &MutationError{Op: "reset", Target: branch, Err: err}
		}
	}

	result := &RebaseResult{}
	cascadeErr := c.cascadeRebase(ctx, stacked, upstream, result)
	if err := c.ensureOnBranch(ctx, start); err != nil {
		log.Info("could not return to starting branch", "branch", start, "error", err.Error())
	}
	if cascadeErr != nil {
		return result, cascadeErr
	}

	for _, branch := range result.Rebased {
		if err := c.git.Push(ctx, branch, git.PushOptions{ForceWithLease: true}); err != nil {
			return result, &MutationError{Op: "force-push", Target: branch, Err: err}
		}
	}

	first := stacked[0]
	if first.Base != c.opts.Trunk {
		if err := c.gh.UpdatePRBase(ctx, first.Number, c.opts.Trunk); err != nil {
			return result, &MutationError{Op: "re-point", Target: fmt.Sprintf("#%d", first.Number), Err: err}
		}
		result.Retargeted = &BaseUpdate{Number: first.Number, From: first.Base, To: c.opts.Trunk}
	}
	return result, nil
}

// cascadeRebase rebases each entry onto the one below it, recording rebased branches
func (c *Client) cascadeRebase(ctx context.Context, stacked []model.StackEntry, mergedHead string, result *RebaseResult) error {
	onto := c.git.RemoteRef(c.opts.Trunk)
	upstream := mergedHead
	for _, entry := range stacked {
		if !c.git.BranchExists(ctx, entry.Head) {
			if err := c.git.CreateBranch(ctx, entry.Head, c.git.RemoteRef(entry.Head)); err != nil {
				return &MutationError{Op: "check out", Target: entry.Head, Err: err}
			}
		}
		oldHead, err := c.git.GetCommitHash(ctx, entry.Head)
		if err != nil {
			return err
		}

		c.logger(ctx).Info("rebasing entry", "entry", entry.Number, "branch", entry.Head, "onto", onto)
		if err := c.git.RebaseOnto(ctx, onto, upstream, entry.Head); err != nil {
			return err
		}
		result.Rebased = append(result.Rebased, entry.Head)

		onto = entry.Head
		upstream = oldHead
	}
	return nil
}

// staleLocalBranches compares each entry's local branch with its upstream. It returns
// the branches that are strictly behind upstream and refuses when a local branch has
// commits upstream does not.
func (c *Client) staleLocalBranches(ctx context.Context, entries []model.StackEntry) ([]string, error) {
	var stale []string
	for _, entry := range entries {
		if !c.git.BranchExists(ctx, entry.Head) {
			continue
		}
		remoteRef := c.git.RemoteRef(entry.Head)
		remote, err := c.git.GetCommitHash(ctx, remoteRef)
		if err != nil {
			continue
		}
		local, err := c.git.GetCommitHash(ctx, entry.Head)
		if err != nil {
			return nil, err
		}
		if local == remote {
			continue
		}
		if !c.git.IsAncestor(ctx, local, remoteRef) {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("local branch %s has commits that are not on %s", entry.Head, remoteRef),
				Hint:   fmt.Sprintf("push them or run 'git branch --force %s %s' to drop them", entry.Head, remoteRef),
			}
		}
		stale = append(stale, entry.Head)
	}
	return stale, nil
}

// stackedOn returns the run of chain entries built on the merged branch. The bottom of
// the run is the first entry still based on that branch or, when a repair already moved
// it to trunk, the first entry whose upstream head contains the merged commit.
func (c *Client) stackedOn(ctx context.Context, chain *model.Chain, branch string, mergedHead string) []model.StackEntry {
	for i, entry := range chain.Entries {
		if entry.Base != branch && !c.git.IsAncestor(ctx, mergedHead, c.git.RemoteRef(entry.Head)) {
			continue
		}
		run := []model.StackEntry{entry}
		for _, next := range chain.Entries[i+1:] {
			if next.Base != run[len(run)-1].Head {
				break
			}
			run = append(run, next)
		}
		return run
	}
	return nil
}
