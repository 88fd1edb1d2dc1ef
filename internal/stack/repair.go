package stack

import (
	"context"
	"fmt"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/model"
)

// RepairOptions controls RepairChain
type RepairOptions struct {
	// DryRun computes the base updates without applying them
	DryRun bool
}

// BaseUpdate is a change of an entry's base branch
type BaseUpdate struct {
	Number int
	From   string
	To     string
}

// RepairResult describes what a repair pass observed and changed
type RepairResult struct {
	Merged []model.StackEntry
	Closed []model.StackEntry
	// Dropped holds the entries whose status query or base update failed. They stay in
	// the chain, marked unverified, so the entries above them keep their bases.
	Dropped []model.StackEntry
	Updated []BaseUpdate
	Planned []BaseUpdate
	// Warnings holds the query and update failures behind Dropped
	Warnings []string
}

// Changed reports whether the pass removed or re-pointed anything
func (r *RepairResult) Changed() bool {
	return len(r.Merged)+len(r.Closed)+len(r.Dropped)+len(r.Updated)+len(r.Planned) > 0
}

// RepairChain refreshes the status of every entry, removes merged and closed ones, and
// re-points each survivor at the survivor below it (trunk for the first). Entries are
// processed bottom-up in chain order.
//
// A failed status query or base update leaves that entry unverified with a warning and
// the pass continues. An unverified entry keeps its position and its base is not
// touched; the entry above it is still expected to be based on its head, so one
// transient failure never re-points the rest of the stack.
//
// Running it twice without external changes issues no updates the second time.
func (c *Client) RepairChain(ctx context.Context, chain *model.Chain, opts RepairOptions) (*RepairResult, error) {
	result := &RepairResult{}

	survivors := make([]model.StackEntry, 0, len(chain.Entries))
	for _, entry := range chain.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry.Unverified = false
		pr, err := c.gh.GetPR(ctx, entry.Number)
		if err != nil {
			c.leaveUnverified(ctx, result, &entry, fmt.Sprintf("could not query #%d, leaving it as it is: %v", entry.Number, err))
			survivors = append(survivors, entry)
			continue
		}
		entry.UpdateFromPR(pr)

		switch pr.State {
		case gh.StateMerged:
			c.logger(ctx).Info("entry merged", "entry", entry.Number, "head", entry.Head)
			result.Merged = append(result.Merged, entry)
		case gh.StateClosed:
			c.logger(ctx).Info("entry closed", "entry", entry.Number, "head", entry.Head)
			result.Closed = append(result.Closed, entry)
		default:
			survivors = append(survivors, entry)
		}
	}

	repaired := make([]model.StackEntry, 0, len(survivors))
	for _, entry := range survivors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		expected := c.opts.Trunk
		if len(repaired) > 0 {
			expected = repaired[len(repaired)-1].Head
		}

		if !entry.Unverified && entry.Base != expected {
			if entry.NeedsBaseRepair {
				c.logger(ctx).V(1).Info("restitching entry with a missing base", "entry", entry.Number, "base", entry.Base, "onto", expected)
			}
			update := BaseUpdate{Number: entry.Number, From: entry.Base, To: expected}
			switch {
			case opts.DryRun:
				result.Planned = append(result.Planned, update)
				entry.Base = expected
			default:
				if err := c.gh.UpdatePRBase(ctx, entry.Number, expected); err != nil {
					c.leaveUnverified(ctx, result, &entry, fmt.Sprintf("could not re-point #%d from %s to %s, leaving it as it is: %v",
						entry.Number, entry.Base, expected, err))
					break
				}
				c.logger(ctx).Info("re-pointed entry", "entry", entry.Number, "from", entry.Base, "to", expected)
				result.Updated = append(result.Updated, update)
				entry.Base = expected
			}
		}
		entry.NeedsBaseRepair = false
		repaired = append(repaired, entry)
	}

	chain.Entries = repaired
	return result, nil
}

func (c *Client) leaveUnverified(ctx context.Context, result *RepairResult, entry *model.StackEntry, warning string) {
	c.logger(ctx).Info("entry left unverified", "entry", entry.Number, "reason", warning)
	entry.Unverified = true
	result.Dropped = append(result.Dropped, *entry)
	result.Warnings = append(result.Warnings, warning)
}
