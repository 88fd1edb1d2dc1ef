package stack

import (
	"context"
	"fmt"

	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/state"
)

// SyncOptions controls Sync
type SyncOptions struct {
	// DryRun plans base repairs without applying them and does not persist state
	DryRun bool
	// SkipFetch reuses the remote refs from a fetch the caller already did
	SkipFetch bool
}

// SyncResult is the reconciled view of the stack
type SyncResult struct {
	Chain     *model.Chain
	Unstacked []git.Commit
	Repair    *RepairResult
	// Warnings collects every transient failure that was tolerated along the way
	Warnings []string
	// Head is the commit HEAD pointed at during the sync
	Head string
}

// Sync discovers the chain, repairs it after merges, attributes commits to entries,
// and computes the commits on HEAD not yet in any entry. Unless DryRun is set the
// resulting chain is persisted and the state lock is held for the duration.
func (c *Client) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if !opts.DryRun {
		lock, err := c.lock()
		if err != nil {
			return nil, err
		}
		defer lock.Unlock()
	}
	return c.sync(ctx, opts)
}

// sync is Sync without taking the lock, for operations that already hold it
func (c *Client) sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	ctx = c.withRun(ctx)
	log := c.logger(ctx)
	log.V(1).Info("sync started", "trunk", c.opts.Trunk, "dryRun", opts.DryRun)

	result := &SyncResult{}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Info("warning", "message", msg)
		result.Warnings = append(result.Warnings, msg)
	}

	if !opts.SkipFetch {
		if err := c.git.Fetch(ctx); err != nil {
			warn("could not fetch, using the last known remote state: %v", err)
		}
	}

	hint, err := c.store.Load()
	if err != nil {
		warn("ignoring unreadable state: %v", err)
		hint = &state.State{}
	}

	chain, err := c.DiscoverChain(ctx, hint)
	if err != nil {
		return nil, err
	}
	mergeTracked(chain, hint)

	repair, err := c.RepairChain(ctx, chain, RepairOptions{DryRun: opts.DryRun})
	if err != nil {
		return nil, err
	}
	result.Repair = repair
	result.Warnings = append(result.Warnings, repair.Warnings...)

	result.Warnings = append(result.Warnings, c.PopulateCommits(ctx, chain)...)

	unstacked, err := c.FindUnstackedCommits(ctx, chain)
	if err != nil {
		return nil, err
	}
	result.Unstacked = dedupeUnstacked(chain, unstacked)
	result.Chain = chain

	if err := chain.Validate(); err != nil {
		warn("stack is still inconsistent after repair: %v", err)
	}

	head, err := c.git.GetCommitHash(ctx, "HEAD")
	if err != nil {
		return nil, err
	}
	result.Head = head

	if !opts.DryRun {
		if err := c.persist(log, hint, state.FromChain(chain, head)); err != nil {
			warn("%v", err)
		}
	}

	log.V(1).Info("sync finished",
		"entries", chain.Len(),
		"unstacked", len(result.Unstacked),
		"merged", len(repair.Merged),
		"closed", len(repair.Closed),
		"updated", len(repair.Updated))
	return result, nil
}

// StatusOptions controls GetStatus
type StatusOptions struct {
	// NoRepair reports what repair would do without changing anything
	NoRepair bool
}

// GetStatus syncs and returns the chain and the unstacked commits
func (c *Client) GetStatus(ctx context.Context, opts StatusOptions) (*SyncResult, error) {
	return c.Sync(ctx, SyncOptions{DryRun: opts.NoRepair})
}
