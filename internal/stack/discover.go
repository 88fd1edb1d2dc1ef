package stack

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/state"
)

// DiscoverChain lists the user's open requests and orders them into a chain by
// following base pointers from trunk. hint (may be nil) is the last persisted state
// and only influences the order of siblings.
//
// The result is linearized but not necessarily linear: a sibling placed after its
// brother still points at their shared parent until RepairChain re-points it.
func (c *Client) DiscoverChain(ctx context.Context, hint *state.State) (*model.Chain, error) {
	prs, err := c.gh.ListOpenPRs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover stack: %w", err)
	}

	slices.SortFunc(prs, func(a, b *gh.PR) int { return cmp.Compare(a.Number, b.Number) })

	var entries []model.StackEntry
	seen := make(map[string]int)
	for _, pr := range prs {
		if !pr.State.IsOpen() || pr.Head == c.opts.Trunk || !c.ownsBranch(pr.Head) {
			continue
		}
		// one entry per head branch; the oldest request wins
		if first, dup := seen[pr.Head]; dup {
			c.logger(ctx).Info("ignoring duplicate request for branch", "entry", pr.Number, "branch", pr.Head, "kept", first)
			continue
		}
		seen[pr.Head] = pr.Number
		entries = append(entries, model.EntryFromPR(pr))
	}

	chain := &model.Chain{
		Trunk:   c.opts.Trunk,
		Entries: linearize(c.opts.Trunk, entries, hint),
	}

	for i := range chain.Entries {
		entry := &chain.Entries[i]
		if entry.Base != c.opts.Trunk && !c.git.RemoteBranchExists(ctx, entry.Base) {
			c.logger(ctx).V(1).Info("base branch missing upstream", "entry", entry.Number, "base", entry.Base)
			entry.NeedsBaseRepair = true
		}
	}
	return chain, nil
}

// ownsBranch reports whether a head branch was created under the configured prefix
func (c *Client) ownsBranch(head string) bool {
	if c.opts.BranchPrefix == "" {
		return true
	}
	return strings.HasPrefix(head, c.opts.BranchPrefix+"/")
}

// linearize orders entries depth-first from trunk. Roots are entries based on trunk
// or on a branch that is not another entry's head. Siblings are ordered by their
// position in hint, then by request number. Entries only reachable through a cycle
// of base pointers are appended last and flagged for base repair.
func linearize(trunk string, entries []model.StackEntry, hint *state.State) []model.StackEntry {
	byHead := make(map[string]int, len(entries))
	for i, e := range entries {
		byHead[e.Head] = i
	}

	rank := func(a, b int) int {
		ra, rb := hint.IndexOf(entries[a].Number), hint.IndexOf(entries[b].Number)
		if ra != rb {
			// unknown entries (-1) sort after every known one
			if ra < 0 {
				return 1
			}
			if rb < 0 {
				return -1
			}
			return cmp.Compare(ra, rb)
		}
		return cmp.Compare(entries[a].Number, entries[b].Number)
	}

	children := make(map[string][]int)
	var roots []int
	for i, e := range entries {
		if _, isEntry := byHead[e.Base]; e.Base == trunk || !isEntry {
			roots = append(roots, i)
			continue
		}
		children[e.Base] = append(children[e.Base], i)
	}
	slices.SortFunc(roots, rank)
	for _, kids := range children {
		slices.SortFunc(kids, rank)
	}

	ordered := make([]model.StackEntry, 0, len(entries))
	visited := make(map[int]bool, len(entries))
	var visit func(i int, cyclic bool)
	visit = func(i int, cyclic bool) {
		if visited[i] {
			return
		}
		visited[i] = true
		entry := entries[i]
		if cyclic {
			entry.NeedsBaseRepair = true
		}
		ordered = append(ordered, entry)
		for _, child := range children[entry.Head] {
			visit(child, cyclic)
		}
	}

	for _, root := range roots {
		visit(root, false)
	}

	if len(ordered) < len(entries) {
		rest := make([]int, 0, len(entries)-len(ordered))
		for i := range entries {
			if !visited[i] {
				rest = append(rest, i)
			}
		}
		slices.SortFunc(rest, rank)
		for _, i := range rest {
			visit(i, true)
		}
	}
	return ordered
}

// mergeTracked inserts entries recorded in hint that are no longer listed as open at
// their recorded positions, so the repair pass observes merges and closes that happened
// since the last run
func mergeTracked(chain *model.Chain, hint *state.State) {
	if hint == nil {
		return
	}
	heads := make(map[string]bool, len(chain.Entries))
	for _, e := range chain.Entries {
		heads[e.Head] = true
	}

	for i := 0; i < hint.Len(); i++ {
		number, head := hint.PullRequests[i], hint.Branches[i]
		if chain.Find(number) != nil || heads[head] {
			continue
		}

		pos := len(chain.Entries)
		for j, e := range chain.Entries {
			if hint.IndexOf(e.Number) > i {
				pos = j
				break
			}
		}
		chain.Entries = slices.Insert(chain.Entries, pos, model.StackEntry{Number: number, Head: head})
		heads[head] = true
	}
}
