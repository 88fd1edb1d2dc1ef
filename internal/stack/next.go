package stack

import (
	"context"
	"fmt"
	"strings"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/naming"
	"github.com/bjulian5/stackpr/internal/state"
)

// NextResult describes the outcome of CreateNextEntry
type NextResult struct {
	// NothingToDo is set when HEAD carries no commits outside the chain
	NothingToDo bool
	Entry       *model.StackEntry
	Sync        *SyncResult
	// Rebased is set when local trunk was rebased onto its upstream first
	Rebased bool
}

// CreateNextEntry turns the unstacked commits on trunk into a new entry on top of the
// chain: it names and pushes a branch at HEAD and opens a request based on the chain's
// tail (or trunk). Trunk stays checked out. Preconditions, including the upstream
// check, are evaluated before the chain is synced and repaired.
func (c *Client) CreateNextEntry(ctx context.Context) (*NextResult, error) {
	ctx = c.withRun(ctx)
	lock, err := c.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if err := c.requireOnTrunk(ctx); err != nil {
		return nil, err
	}
	if err := c.requireCleanTree(ctx); err != nil {
		return nil, err
	}

	var fetchWarning string
	if err := c.git.Fetch(ctx); err != nil {
		fetchWarning = fmt.Sprintf("could not fetch, using the last known remote state: %v", err)
		c.logger(ctx).Info("warning", "message", fetchWarning)
	}

	// every precondition is settled before sync re-points anything
	rebased, err := c.catchUpTrunk(ctx)
	if err != nil {
		return nil, err
	}

	synced, err := c.sync(ctx, SyncOptions{SkipFetch: true})
	if err != nil {
		return nil, err
	}
	if fetchWarning != "" {
		synced.Warnings = append([]string{fetchWarning}, synced.Warnings...)
	}
	result := &NextResult{Rebased: rebased, Sync: synced}

	if len(synced.Unstacked) == 0 {
		result.NothingToDo = true
		return result, nil
	}

	entry, err := c.submitEntry(ctx, synced.Chain, synced.Unstacked)
	if err != nil {
		return nil, err
	}
	result.Entry = entry

	if err := c.ensureOnBranch(ctx, c.opts.Trunk); err != nil {
		return nil, err
	}

	if err := c.persist(c.logger(ctx), nil, state.FromChain(synced.Chain, synced.Head)); err != nil {
		synced.Warnings = append(synced.Warnings, err.Error())
	}
	return result, nil
}

// submitEntry creates, pushes and opens the request for a new entry and appends it to chain
func (c *Client) submitEntry(ctx context.Context, chain *model.Chain, commits []git.Commit) (*model.StackEntry, error) {
	log := c.logger(ctx)

	branch, err := naming.BranchName(commits, c.opts.BranchPrefix, c.opts.NamingStrategy, c.now())
	if err != nil {
		return nil, err
	}
	if err := naming.Validate(branch); err != nil {
		return nil, &PreconditionError{Reason: err.Error(), Hint: "set a shorter branch-prefix"}
	}
	base := chain.TailHead()
	resume := false
	if c.git.BranchExists(ctx, branch) || c.git.RemoteBranchExists(ctx, branch) {
		if !c.isUnopenedBranch(ctx, chain, branch) {
			return nil, &MutationError{Op: "create branch", Target: branch, Err: ErrBranchExists}
		}
		log.Info("branch already pushed without a pull request, opening one", "branch", branch)
		resume = true
	}

	if !resume {
		log.Info("creating entry", "branch", branch, "base", base, "commits", len(commits))
		if err := c.git.CreateBranch(ctx, branch, "HEAD"); err != nil {
			return nil, &MutationError{Op: "create branch", Target: branch, Err: err}
		}
		if err := c.git.Push(ctx, branch, git.PushOptions{SetUpstream: true}); err != nil {
			if delErr := c.git.DeleteBranch(ctx, branch, true); delErr != nil {
				log.Info("could not remove local branch after failed push", "branch", branch, "error", delErr.Error())
			}
			return nil, &MutationError{Op: "push", Target: branch, Err: err}
		}
	}

	template, err := c.git.FindPRTemplate()
	if err != nil {
		log.V(1).Info("ignoring unreadable pull request template", "error", err.Error())
		template = ""
	}
	title, body := describeEntry(commits, chain, template)

	pr, err := c.gh.CreatePR(ctx, gh.PRSpec{
		Title: title,
		Body:  body,
		Base:  base,
		Head:  branch,
		Draft: c.opts.Draft,
	})
	if err != nil {
		return nil, &MutationError{
			Op:     "open pull request for",
			Target: branch,
			Err:    fmt.Errorf("%w; the branch is pushed, run 'stackpr next' again to retry", err),
		}
	}

	entry := model.EntryFromPR(pr)
	if entry.Head == "" {
		entry.Head = branch
	}
	if entry.Base == "" {
		entry.Base = base
	}
	entry.Commits = commits
	chain.Entries = append(chain.Entries, entry)
	return chain.Tail(), nil
}

// isUnopenedBranch reports whether branch is left over from an earlier attempt whose
// pull request was never opened: no entry uses it and both the local branch and its
// upstream point at HEAD
func (c *Client) isUnopenedBranch(ctx context.Context, chain *model.Chain, branch string) bool {
	for _, e := range chain.Entries {
		if e.Head == branch {
			return false
		}
	}
	if !c.git.BranchExists(ctx, branch) {
		return false
	}
	head, err := c.git.GetCommitHash(ctx, "HEAD")
	if err != nil {
		return false
	}
	for _, ref := range []string{branch, c.git.RemoteRef(branch)} {
		if hash, err := c.git.GetCommitHash(ctx, ref); err != nil || hash != head {
			return false
		}
	}
	return true
}

// describeEntry derives a request title and body from its commits (oldest first)
func describeEntry(commits []git.Commit, chain *model.Chain, template string) (title, body string) {
	var sb strings.Builder
	title = commits[0].Title
	if len(commits) == 1 {
		sb.WriteString(commits[0].Body)
	} else {
		fmt.Fprintf(&sb, "This change contains %d commits:\n\n", len(commits))
		for _, commit := range commits {
			fmt.Fprintf(&sb, "- %s %s\n", commit.ShortHash(), commit.Title)
		}
	}

	if template = strings.TrimSpace(template); template != "" {
		sb.WriteString("\n\n" + template)
	}
	sb.WriteString("\n\n" + generateStackMap(chain, title))
	return title, strings.TrimLeft(sb.String(), "\n")
}

// catchUpTrunk checks how far local trunk is behind its upstream. Within the
// auto-rebase limit it rebases and reports true; beyond it, when in sync is required,
// it refuses.
func (c *Client) catchUpTrunk(ctx context.Context) (bool, error) {
	upstream := c.git.RemoteRef(c.opts.Trunk)
	status, err := c.git.Status(ctx, upstream)
	if err != nil {
		return false, err
	}
	if status.Behind == 0 {
		return false, nil
	}

	if status.Behind <= c.opts.AutoRebaseLimit {
		c.logger(ctx).Info("rebasing trunk onto upstream", "behind", status.Behind)
		if err := c.git.Rebase(ctx, upstream); err != nil {
			return false, &MutationError{Op: "rebase", Target: c.opts.Trunk, Err: err}
		}
		return true, nil
	}
	if !c.opts.RequireSynced {
		return false, nil
	}
	return false, &PreconditionError{
		Reason: fmt.Sprintf("%s is %d commit(s) behind %s", c.opts.Trunk, status.Behind, upstream),
		Hint:   fmt.Sprintf("run 'git pull --rebase' or raise auto-rebase-limit to %d", status.Behind),
	}
}

// requireOnTrunk fails unless trunk is checked out
func (c *Client) requireOnTrunk(ctx context.Context) error {
	current, err := c.git.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current != c.opts.Trunk {
		return &PreconditionError{
			Reason: fmt.Sprintf("on branch %s, new entries are created from %s", current, c.opts.Trunk),
			Hint:   fmt.Sprintf("run 'git checkout %s'", c.opts.Trunk),
		}
	}
	return nil
}

// ensureOnBranch checks out branch if it is not already checked out
func (c *Client) ensureOnBranch(ctx context.Context, branch string) error {
	current, err := c.git.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}
	return c.git.CheckoutBranch(ctx, branch)
}
