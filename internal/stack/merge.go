package stack

import (
	"context"
	"fmt"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/state"
)

// MergeOptions controls MergeEntry
type MergeOptions struct {
	// Number selects the entry to merge; zero means the bottom entry
	Number       int
	Method       gh.MergeMethod
	DeleteBranch bool
}

// MergeResult describes the outcome of MergeEntry
type MergeResult struct {
	Merged model.StackEntry
	// Retargeted is set when the next entry was moved to trunk before merging
	Retargeted *BaseUpdate
	Repair     *RepairResult
	Chain      *model.Chain
	Warnings   []string
}

// MergeEntry merges the bottom entry of the chain. Merging any other entry is refused
// because its base is not trunk. Drafts are marked ready first. When the merged branch
// is deleted the next entry is re-pointed to trunk beforehand so the service does not
// close it along with its base.
func (c *Client) MergeEntry(ctx context.Context, opts MergeOptions) (*MergeResult, error) {
	ctx = c.withRun(ctx)
	log := c.logger(ctx)

	lock, err := c.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	synced, err := c.sync(ctx, SyncOptions{})
	if err != nil {
		return nil, err
	}
	chain := synced.Chain
	result := &MergeResult{Chain: chain, Warnings: synced.Warnings}

	target, err := mergeTarget(chain, opts.Number)
	if err != nil {
		return nil, err
	}
	result.Merged = *target

	if target.IsDraft() {
		log.Info("marking draft ready", "entry", target.Number)
		if err := c.gh.MarkPRReady(ctx, target.Number); err != nil {
			return nil, &MutationError{Op: "mark ready", Target: fmt.Sprintf("#%d", target.Number), Err: err}
		}
	}

	if opts.DeleteBranch && chain.Len() > 1 {
		next := &chain.Entries[1]
		log.Info("re-pointing next entry to trunk", "entry", next.Number, "from", next.Base)
		if err := c.gh.UpdatePRBase(ctx, next.Number, c.opts.Trunk); err != nil {
			return nil, &MutationError{Op: "re-point", Target: fmt.Sprintf("#%d", next.Number), Err: err}
		}
		result.Retargeted = &BaseUpdate{Number: next.Number, From: next.Base, To: c.opts.Trunk}
		next.Base = c.opts.Trunk
	}

	log.Info("merging entry", "entry", target.Number, "method", opts.Method, "deleteBranch", opts.DeleteBranch)
	if err := c.gh.MergePR(ctx, target.Number, gh.MergeOptions{Method: opts.Method, DeleteBranch: opts.DeleteBranch}); err != nil {
		return nil, &MutationError{Op: "merge", Target: fmt.Sprintf("#%d", target.Number), Err: err}
	}

	if err := c.git.Fetch(ctx); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not fetch after merge: %v", err))
	}

	repair, err := c.RepairChain(ctx, chain, RepairOptions{})
	if err != nil {
		return nil, err
	}
	result.Repair = repair
	result.Warnings = append(result.Warnings, repair.Warnings...)

	if err := c.persist(log, nil, state.FromChain(chain, synced.Head)); err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	return result, nil
}

// mergeTarget picks the entry to merge: the bottom one, which number must name if set
func mergeTarget(chain *model.Chain, number int) (*model.StackEntry, error) {
	if chain.IsEmpty() {
		return nil, &PreconditionError{
			Reason: "the stack has no open entries",
			Hint:   "run 'stackpr next' to create one",
		}
	}
	bottom := chain.Bottom()
	if number == 0 || number == bottom.Number {
		if bottom.Unverified {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("the status of #%d could not be read", bottom.Number),
				Hint:   "run 'stackpr sync' and retry",
			}
		}
		return bottom, nil
	}
	pos := chain.Position(number)
	if pos == 0 {
		return nil, &PreconditionError{
			Reason: fmt.Sprintf("#%d is not an open entry of the stack", number),
			Hint:   "run 'stackpr status' to list the entries",
		}
	}
	return nil, &PreconditionError{
		Reason: fmt.Sprintf("#%d is entry %d of %d; only the bottom entry can be merged", number, pos, chain.Len()),
		Hint:   fmt.Sprintf("merge #%d first", bottom.Number),
	}
}

// MarkReady takes an entry out of draft. It reports false if the entry was already ready.
func (c *Client) MarkReady(ctx context.Context, number int) (bool, error) {
	ctx = c.withRun(ctx)

	pr, err := c.gh.GetPR(ctx, number)
	if err != nil {
		return false, err
	}
	if !pr.State.IsOpen() {
		return false, &PreconditionError{
			Reason: fmt.Sprintf("#%d is %s", number, pr.State),
			Hint:   "only open entries can be marked ready",
		}
	}
	if pr.State != gh.StateDraft {
		return false, nil
	}
	if err := c.gh.MarkPRReady(ctx, number); err != nil {
		return false, &MutationError{Op: "mark ready", Target: fmt.Sprintf("#%d", number), Err: err}
	}
	c.logger(ctx).Info("marked ready", "entry", number)
	return true, nil
}
